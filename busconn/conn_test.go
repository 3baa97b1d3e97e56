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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sssd-project/sbus-go/busdispatch"
	"github.com/sssd-project/sbus-go/bustransport"
)

type fakeTransport struct {
	objects   map[string]bool
	fallbacks map[string]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{objects: map[string]bool{}, fallbacks: map[string]bool{}}
}

func (f *fakeTransport) RegisterObject(path string, h bustransport.Handler) error {
	for base := range f.fallbacks {
		if base == "/" || path == base {
			return bustransport.ErrObjectPathInUse
		}
	}
	if f.objects[path] {
		return bustransport.ErrObjectPathInUse
	}
	f.objects[path] = true
	return nil
}

func (f *fakeTransport) RegisterFallback(path string, h bustransport.Handler) error {
	if f.fallbacks[path] {
		return bustransport.ErrObjectPathInUse
	}
	f.fallbacks[path] = true
	return nil
}

func (f *fakeTransport) Unregister(path string) error {
	delete(f.objects, path)
	delete(f.fallbacks, path)
	return nil
}

func (f *fakeTransport) IsRegistered(path string) bool {
	return f.objects[path] || f.fallbacks[path]
}

func (f *fakeTransport) Reply(ctx context.Context, call *bustransport.Message, reply *bustransport.Reply) error {
	return nil
}

func (f *fakeTransport) ResolveCallerID(ctx context.Context, sender string) (bustransport.CallerID, error) {
	return bustransport.CallerID{}, nil
}

func newTestConn() (*Conn, *fakeTransport, *busdispatch.Registry) {
	registry := busdispatch.NewRegistry()
	ft := newFakeTransport()
	logger := zap.NewNop()
	dispatcher := busdispatch.NewDispatcher(registry, ft, logger, nil, nil)
	return New(registry, ft, dispatcher, logger), ft, registry
}

func TestRegisterInterfaceExactPath(t *testing.T) {
	conn, ft, _ := newTestConn()

	require.NoError(t, conn.RegisterInterface("/org/example/Users/dom/1000", busdispatch.Interface{Name: "org.example.Users.User"}))
	assert.True(t, ft.IsRegistered("/org/example/Users/dom/1000"))
}

func TestRegisterInterfaceSubtreeReplacesExactRegistration(t *testing.T) {
	conn, ft, _ := newTestConn()

	require.NoError(t, conn.RegisterInterface("/org/example/Users", busdispatch.Interface{Name: "org.example.Users"}))
	assert.True(t, ft.IsRegistered("/org/example/Users"))

	require.NoError(t, conn.RegisterInterface("/org/example/Users/*", busdispatch.Interface{Name: "org.example.Users"}))
	assert.True(t, ft.fallbacks["/org/example/Users"])
}

func TestRegisterInterfaceDuplicateIsConflict(t *testing.T) {
	conn, _, _ := newTestConn()

	iface := busdispatch.Interface{Name: "org.example.Users"}
	require.NoError(t, conn.RegisterInterface("/org/example/Users", iface))
	err := conn.RegisterInterface("/org/example/Users", iface)
	assert.Error(t, err)
}

func TestReregisterAllReinstatesEveryPath(t *testing.T) {
	conn, ft, _ := newTestConn()

	require.NoError(t, conn.RegisterInterface("/org/example/Users", busdispatch.Interface{Name: "org.example.Users"}))
	require.NoError(t, conn.RegisterInterface("/org/example/Groups", busdispatch.Interface{Name: "org.example.Groups"}))

	// simulate a reconnect: the transport forgets everything, the registry
	// does not.
	ft.objects = map[string]bool{}
	ft.fallbacks = map[string]bool{}

	require.NoError(t, conn.ReregisterAll(context.Background()))
	assert.True(t, ft.IsRegistered("/org/example/Users"))
	assert.True(t, ft.IsRegistered("/org/example/Groups"))
}

func TestCloseUnregistersEveryPath(t *testing.T) {
	conn, ft, _ := newTestConn()

	require.NoError(t, conn.RegisterInterface("/org/example/Users/*", busdispatch.Interface{Name: "org.example.Users"}))
	require.NoError(t, conn.RegisterInterface("/org/example/Groups", busdispatch.Interface{Name: "org.example.Groups"}))

	require.NoError(t, conn.Close())
	assert.False(t, ft.IsRegistered("/org/example/Users"))
	assert.False(t, ft.IsRegistered("/org/example/Groups"))

	err := conn.RegisterInterface("/org/example/Domains", busdispatch.Interface{Name: "org.example.Domains"})
	assert.Error(t, err)

	// Close is idempotent.
	require.NoError(t, conn.Close())
}
