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

package sbuserrors

import (
	"bytes"
	"fmt"
)

// Status is the concrete error type produced by this package's constructors.
// It carries a Code, an optional numeric cause (for CodeFailed), and a
// human-readable message.
type Status struct {
	Code    Code
	Cause   int
	Message string
}

// Error implements the error interface.
func (e *Status) Error() string {
	buffer := bytes.NewBuffer(nil)
	buffer.WriteString("code:")
	buffer.WriteString(e.Code.String())
	if e.Cause != 0 {
		fmt.Fprintf(buffer, " cause:%d", e.Cause)
	}
	if e.Message != "" {
		buffer.WriteString(" message:")
		buffer.WriteString(e.Message)
	}
	return buffer.String()
}

// IsStatus reports whether err is a non-nil *Status.
func IsStatus(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*Status)
	return ok
}

// ErrorCode returns the Code for err, or CodeOK if err is not a *Status.
func ErrorCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	status, ok := err.(*Status)
	if !ok {
		return CodeOK
	}
	return status.Code
}

// NotFoundErrorf builds a CodeNotFound error.
func NotFoundErrorf(format string, args ...interface{}) error {
	return &Status{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// DomainNotFoundErrorf builds a CodeDomainNotFound error.
func DomainNotFoundErrorf(format string, args ...interface{}) error {
	return &Status{Code: CodeDomainNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgumentErrorf builds a CodeInvalidArgument error.
func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return &Status{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// AccessDeniedErrorf builds a CodeAccessDenied error.
func AccessDeniedErrorf(format string, args ...interface{}) error {
	return &Status{Code: CodeAccessDenied, Message: fmt.Sprintf(format, args...)}
}

// InternalErrorf builds a CodeInternal error.
func InternalErrorf(format string, args ...interface{}) error {
	return &Status{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// FailedErrorf builds a CodeFailed error carrying the errno-like numeric
// cause that triggered it.
func FailedErrorf(cause int, format string, args ...interface{}) error {
	return &Status{Code: CodeFailed, Cause: cause, Message: fmt.Sprintf(format, args...)}
}

// UnknownMethodErrorf builds a CodeUnknownMethod error.
func UnknownMethodErrorf(format string, args ...interface{}) error {
	return &Status{Code: CodeUnknownMethod, Message: fmt.Sprintf(format, args...)}
}

// ConflictErrorf builds a CodeConflict error. This never crosses the wire;
// it is returned to the registering code, not to bus clients.
func ConflictErrorf(format string, args ...interface{}) error {
	return &Status{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}
