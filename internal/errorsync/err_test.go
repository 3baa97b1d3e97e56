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

package errorsync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func TestWaitCollectsOnlyFailures(t *testing.T) {
	one := errors.New("register /a failed")
	two := errors.New("register /b failed")

	var ew ErrorWaiter
	for _, err := range []error{nil, one, nil, two, nil} {
		errLocal := err
		ew.Submit(func() error { return errLocal })
	}

	got := make(map[error]struct{})
	for _, err := range ew.Wait() {
		got[err] = struct{}{}
	}
	assert.Equal(t, map[error]struct{}{one: {}, two: {}}, got)
}

func TestWaitCombinedFoldsIntoOneError(t *testing.T) {
	one := errors.New("unregister /a failed")
	two := errors.New("unregister /b failed")

	var ew ErrorWaiter
	for _, err := range []error{one, two} {
		errLocal := err
		ew.Submit(func() error { return errLocal })
	}

	combined := ew.WaitCombined()
	assert.Len(t, multierr.Errors(combined), 2)
}

func TestWaitCombinedNilWhenAllSucceed(t *testing.T) {
	var ew ErrorWaiter
	for i := 0; i < 8; i++ {
		ew.Submit(func() error { return nil })
	}
	assert.NoError(t, ew.WaitCombined())
}

func TestWaitWithNoTasks(t *testing.T) {
	var ew ErrorWaiter
	assert.Empty(t, ew.Wait())
	assert.NoError(t, ew.WaitCombined())
}
