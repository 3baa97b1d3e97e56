// Copyright (c) 2026 The sbus-go Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package bustransport is the thin façade the dispatch layer talks to: it
// hides the wire transport's message marshaling and low-level path
// registration API behind a handful of operations (reply, register-path,
// register-fallback, unregister, registration check) plus asynchronous
// caller-identity resolution. There is no operation for sending a message
// other than a reply to an inbound call.
//
// The wire protocol and its Go binding are kept out of the dispatch
// layer: this package is the only place that imports
// github.com/godbus/dbus/v5.
package bustransport

import (
	"context"
	"errors"
)

// ErrObjectPathInUse is returned by RegisterObject when the path is already
// covered by an ancestor fallback registration. Callers are expected to
// treat this as success, mirroring D-Bus's own
// org.freedesktop.DBus.Error.ObjectPathInUse.
var ErrObjectPathInUse = errors.New("bustransport: object path in use")

// Message is an inbound method-call message, already demultiplexed down to
// the fields the dispatcher and request context need.
type Message struct {
	Path      string
	Interface string
	Member    string
	Sender    string
	Serial    uint32

	// decode unmarshals the message body into dest, in the underlying
	// wire encoding's native way.
	decode func(dest ...interface{}) error
}

// NewMessage builds a Message. decode may be nil for messages with no body.
func NewMessage(path, iface, member, sender string, serial uint32, decode func(dest ...interface{}) error) *Message {
	return &Message{Path: path, Interface: iface, Member: member, Sender: sender, Serial: serial, decode: decode}
}

// Unmarshal decodes the message body into dest. It is a no-op returning nil
// if the message carries no body.
func (m *Message) Unmarshal(dest ...interface{}) error {
	if m.decode == nil {
		return nil
	}
	return m.decode(dest...)
}

// CallerID is the opaque, transport-resolved identity of the process that
// sent a message.
type CallerID struct {
	UID uint32
	PID uint32
}

// Handler receives every message routed to a path this connection has
// registered with the transport, whether through RegisterObject or
// RegisterFallback. It never blocks; anything slow (identity-store
// queries, caller-ID resolution) runs on a continuation.
type Handler func(msg *Message)

// Transport is the façade the connection-binding layer (busconn) drives.
// A concrete implementation wraps a single live bus connection.
type Transport interface {
	// RegisterObject registers an exact-match object path. Returns
	// ErrObjectPathInUse if an ancestor fallback already covers path.
	RegisterObject(path string, handler Handler) error

	// RegisterFallback registers a subtree fallback rooted at path (path
	// must not itself end in "/*"; callers pass the already-reduced base).
	RegisterFallback(path string, handler Handler) error

	// Unregister removes any registration (object or fallback) at path.
	// It must not fail merely because path was never registered.
	Unregister(path string) error

	// IsRegistered reports whether path currently has a live
	// registration with the transport.
	IsRegistered(path string) bool

	// Reply enqueues a raw outbound message (a method return or an error)
	// on the connection, associated with the in-flight call it answers.
	Reply(ctx context.Context, call *Message, reply *Reply) error

	// ResolveCallerID asynchronously resolves the bus-assigned unique name
	// of sender to an opaque CallerID. It is the single suspension point
	// between a message arriving and its handler running.
	ResolveCallerID(ctx context.Context, sender string) (CallerID, error)
}

// Reply is either a successful method return (ErrorName == "") carrying Args,
// or an error reply naming an error and a human-readable message.
type Reply struct {
	Args         []interface{}
	ErrorName    string
	ErrorMessage string
}

// NewReturn builds a successful Reply.
func NewReturn(args ...interface{}) *Reply {
	return &Reply{Args: args}
}

// NewErrorReply builds an error Reply.
func NewErrorReply(name, message string) *Reply {
	return &Reply{ErrorName: name, ErrorMessage: message}
}
