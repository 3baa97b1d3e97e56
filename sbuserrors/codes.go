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

// Package sbuserrors defines the stable set of error kinds the dispatcher
// and its handlers can raise, and the D-Bus error names they are surfaced
// as to clients.
package sbuserrors

import "strconv"

// Code classifies an error raised inside the dispatch pipeline.
type Code int

const (
	// CodeOK is never attached to an error; it exists so the zero Code is
	// distinguishable from a real error code.
	CodeOK Code = iota
	// CodeNotFound is an expected absence: no such user, group, or method.
	CodeNotFound
	// CodeDomainNotFound means the domain segment of an object path is unknown.
	CodeDomainNotFound
	// CodeInvalidArgument means path decomposition or argument parsing failed.
	CodeInvalidArgument
	// CodeAccessDenied means a policy predicate rejected the attribute or call.
	CodeAccessDenied
	// CodeInternal means an invariant violation, OOM, or other programmer bug.
	CodeInternal
	// CodeFailed is a generic transient/IO failure (identity store or transport).
	CodeFailed
	// CodeUnknownMethod means the dispatcher found no handler for (path, interface, member).
	CodeUnknownMethod
	// CodeConflict means a duplicate interface registration; never sent to a client.
	CodeConflict
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeNotFound:
		return "not-found"
	case CodeDomainNotFound:
		return "domain-not-found"
	case CodeInvalidArgument:
		return "invalid-argument"
	case CodeAccessDenied:
		return "access-denied"
	case CodeInternal:
		return "internal"
	case CodeFailed:
		return "failed"
	case CodeUnknownMethod:
		return "unknown-method"
	case CodeConflict:
		return "conflict"
	default:
		return "code(" + strconv.Itoa(int(c)) + ")"
	}
}

// DBusName returns the stable D-Bus error name clients match on. Codes
// without a dedicated name (CodeFailed, CodeConflict, CodeOK) map to
// interfacePrefix + ".Failed".
func (c Code) DBusName(interfacePrefix string) string {
	switch c {
	case CodeNotFound:
		return interfacePrefix + ".NotFound"
	case CodeDomainNotFound:
		return interfacePrefix + ".DomainNotFound"
	case CodeInvalidArgument:
		return interfacePrefix + ".InvalidArgument"
	case CodeAccessDenied:
		return interfacePrefix + ".AccessDenied"
	case CodeInternal:
		return interfacePrefix + ".Internal"
	case CodeUnknownMethod:
		return interfacePrefix + ".UnknownMethod"
	default:
		return interfacePrefix + ".Failed"
	}
}

