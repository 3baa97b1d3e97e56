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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/sssd-project/sbus-go/bustransport"
)

// fakeTransport is an in-memory bustransport.Transport stand-in,
// hand-written since no mock generator runs here.
type fakeTransport struct {
	mu        sync.Mutex
	objects   map[string]bustransport.Handler
	callerIDs map[string]bustransport.CallerID
	replyCh   chan *bustransport.Reply
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		objects:   make(map[string]bustransport.Handler),
		callerIDs: make(map[string]bustransport.CallerID),
		replyCh:   make(chan *bustransport.Reply, 8),
	}
}

func (f *fakeTransport) RegisterObject(path string, h bustransport.Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[path] = h
	return nil
}

func (f *fakeTransport) RegisterFallback(path string, h bustransport.Handler) error {
	return f.RegisterObject(path, h)
}

func (f *fakeTransport) Unregister(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, path)
	return nil
}

func (f *fakeTransport) IsRegistered(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[path]
	return ok
}

func (f *fakeTransport) Reply(ctx context.Context, call *bustransport.Message, reply *bustransport.Reply) error {
	f.replyCh <- reply
	return nil
}

func (f *fakeTransport) ResolveCallerID(ctx context.Context, sender string) (bustransport.CallerID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callerIDs[sender], nil
}

func (f *fakeTransport) waitReply(t *testing.T) *bustransport.Reply {
	t.Helper()
	select {
	case r := <-f.replyCh:
		return r
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
		return nil
	}
}

func TestDispatcherUnknownMethod(t *testing.T) {
	defer goleak.VerifyNone(t)

	registry := NewRegistry()
	ft := newFakeTransport()
	d := NewDispatcher(registry, ft, zap.NewNop(), nil, nil)

	d.HandleMessage(bustransport.NewMessage("/org/example/Users", "org.example.Users", "FindByName", ":1.1", 1, nil))

	reply := ft.waitReply(t)
	assert.Equal(t, "org.example.Users.UnknownMethod", reply.ErrorName)
}

func TestDispatcherInvokesRegisteredMethod(t *testing.T) {
	defer goleak.VerifyNone(t)

	registry := NewRegistry()
	ft := newFakeTransport()
	ft.callerIDs[":1.1"] = bustransport.CallerID{UID: 1000}

	var gotCaller bustransport.CallerID
	iface := Interface{
		Name: "org.example.Users",
		Methods: []MethodMeta{{
			Name: "FindByName",
			Invoke: func(ctx context.Context, req *RequestContext) {
				gotCaller = req.Caller
				require.NoError(t, req.Finish(ctx, "/org/example/Users/dom/1000"))
			},
		}},
	}
	registry.Insert("/org/example/Users", iface)

	d := NewDispatcher(registry, ft, zap.NewNop(), nil, nil)
	d.HandleMessage(bustransport.NewMessage("/org/example/Users", "org.example.Users", "FindByName", ":1.1", 1, nil))

	reply := ft.waitReply(t)
	assert.Empty(t, reply.ErrorName)
	assert.Equal(t, []interface{}{"/org/example/Users/dom/1000"}, reply.Args)
	assert.Equal(t, uint32(1000), gotCaller.UID)
}

func TestRequestContextFinishIsSingleShot(t *testing.T) {
	ft := newFakeTransport()
	req := newRequestContext(
		bustransport.NewMessage("/p", "org.example.Users", "FindByName", ":1.1", 1, nil),
		Interface{Name: "org.example.Users"},
		MethodMeta{Name: "FindByName"},
		ft,
		zap.NewNop(),
	)

	require.NoError(t, req.Finish(context.Background(), "ok"))
	require.NoError(t, req.Finish(context.Background(), "ignored"))

	select {
	case r := <-ft.replyCh:
		assert.Equal(t, []interface{}{"ok"}, r.Args)
	default:
		t.Fatal("expected exactly one reply to have been queued")
	}
	assert.Len(t, ft.replyCh, 0)
}
