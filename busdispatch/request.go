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

package busdispatch

import (
	"context"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/sssd-project/sbus-go/bustransport"
	"github.com/sssd-project/sbus-go/sbuserrors"
)

// RequestContext is the per-call object handed to a method invoker or
// property getter. It carries the originating message, the resolved
// interface and method metadata, the caller identity once resolved, and
// the single terminal reply operation. Anything a handler allocates off a
// RequestContext dies with it; there is no separate scope to release.
type RequestContext struct {
	Message *bustransport.Message
	Iface   Interface
	Method  MethodMeta

	// Caller is populated once caller-identity resolution completes,
	// strictly before the method invoker runs (step 6 of the dispatch
	// pipeline).
	Caller bustransport.CallerID

	transport bustransport.Transport
	logger    *zap.Logger

	finished atomic.Bool
}

func newRequestContext(msg *bustransport.Message, iface Interface, method MethodMeta, t bustransport.Transport, logger *zap.Logger) *RequestContext {
	return &RequestContext{
		Message:   msg,
		Iface:     iface,
		Method:    method,
		transport: t,
		logger:    logger,
	}
}

// Finish serializes args as the method return and queues the reply. It is
// a programming error to call Finish or FailAndFinish more than once per
// RequestContext; a second call is logged and ignored rather than sent,
// since a duplicate reply on the wire is worse than a missing log line.
func (r *RequestContext) Finish(ctx context.Context, args ...interface{}) error {
	if !r.finished.CompareAndSwap(false, true) {
		r.logger.Error("duplicate terminal call on request context",
			zap.String("path", r.Message.Path), zap.String("member", r.Message.Member))
		return nil
	}
	return r.transport.Reply(ctx, r.Message, bustransport.NewReturn(args...))
}

// FailAndFinish queues an error reply built from err (via sbuserrors.Status
// when possible, otherwise a generic Failed) and releases the context.
func (r *RequestContext) FailAndFinish(ctx context.Context, err error) error {
	if !r.finished.CompareAndSwap(false, true) {
		r.logger.Error("duplicate terminal call on request context",
			zap.String("path", r.Message.Path), zap.String("member", r.Message.Member))
		return nil
	}

	name, message := errorReply(r.Iface.Name, err)
	return r.transport.Reply(ctx, r.Message, bustransport.NewErrorReply(name, message))
}

// errorReply maps err to a stable D-Bus error name scoped to ifaceName and
// a human-readable message, per the error-kind taxonomy in sbuserrors.
func errorReply(ifaceName string, err error) (name, message string) {
	status, ok := err.(*sbuserrors.Status)
	if !ok {
		return ifaceName + ".Failed", err.Error()
	}
	return status.Code.DBusName(ifaceName), status.Message
}
