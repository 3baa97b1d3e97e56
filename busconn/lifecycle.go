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

package busconn

import (
	"sync"

	"go.uber.org/atomic"
)

// lifecycleState is the phase a Conn is in. A connection binding only
// ever moves forward through these states, and Start/Stop each run their
// action exactly once regardless of how many goroutines call them
// concurrently.
type lifecycleState int32

const (
	lifecycleIdle lifecycleState = iota
	lifecycleStarting
	lifecycleRunning
	lifecycleStopping
	lifecycleStopped
	lifecycleErrored
)

// lifecycleOnce guards a start action and a stop action so that each runs
// at most once and every caller observes the same result.
type lifecycleOnce struct {
	lock     sync.Mutex
	state    atomic.Int32
	startErr error
	stopErr  error
}

func (l *lifecycleOnce) Start(f func() error) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if lifecycleState(l.state.Load()) != lifecycleIdle {
		return l.startErr
	}
	if f == nil {
		f = func() error { return nil }
	}

	l.state.Store(int32(lifecycleStarting))
	l.startErr = f()
	if l.startErr == nil {
		l.state.Store(int32(lifecycleRunning))
	} else {
		l.state.Store(int32(lifecycleErrored))
	}
	return l.startErr
}

func (l *lifecycleOnce) Stop(f func() error) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	state := lifecycleState(l.state.Load())
	if state == lifecycleStopped || state == lifecycleErrored {
		return l.stopErr
	}
	if f == nil {
		f = func() error { return nil }
	}

	l.state.Store(int32(lifecycleStopping))
	l.stopErr = f()
	if l.stopErr == nil {
		l.state.Store(int32(lifecycleStopped))
	} else {
		l.state.Store(int32(lifecycleErrored))
	}
	return l.stopErr
}

// IsRunning reports whether the binding is up and accepting registrations.
func (l *lifecycleOnce) IsRunning() bool {
	state := lifecycleState(l.state.Load())
	return state == lifecycleStarting || state == lifecycleRunning || state == lifecycleStopping
}
