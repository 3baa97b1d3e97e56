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

package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sssd-project/sbus-go/busdispatch"
	"github.com/sssd-project/sbus-go/bustransport"
	"github.com/sssd-project/sbus-go/domain"
	"github.com/sssd-project/sbus-go/identitystore"
	"github.com/sssd-project/sbus-go/identitystore/identitystoretest"
	"github.com/sssd-project/sbus-go/sbuserrors"
)

func newTestFacade() (*Facade, *identitystoretest.Fake) {
	store := identitystoretest.New()
	store.AddUser("dom", identitystore.User{
		UID: 1000, GID: 2000, Name: "alice", Gecos: "Alice Smith",
		HomeDir: "/home/alice", Shell: "/bin/bash",
		ExtraAttrs: map[string][]string{"phone": {"555-1000"}},
	})
	store.AddGroups("dom", "alice", []identitystore.Group{
		{GID: 2000, Name: "alice"},
		{GID: 0, Name: "nogroup"},
		{GID: 3000, Name: "wheel"},
	})

	facade := NewFacade(Config{
		Domains:        domain.NewList("dom"),
		Store:          store,
		AllowedAttrs:   map[string]bool{"name": true, "groups": true, "extraAttributes": true},
		ExtraAttrNames: []string{"phone"},
	})
	return facade, store
}

// capturingTransport is a tiny bustransport.Transport that records the
// single Reply it expects to receive.
type capturingTransport struct {
	reply chan *bustransport.Reply
}

func newCapturingTransport() *capturingTransport {
	return &capturingTransport{reply: make(chan *bustransport.Reply, 1)}
}

func (c *capturingTransport) RegisterObject(string, bustransport.Handler) error   { return nil }
func (c *capturingTransport) RegisterFallback(string, bustransport.Handler) error { return nil }
func (c *capturingTransport) Unregister(string) error                            { return nil }
func (c *capturingTransport) IsRegistered(string) bool                           { return false }
func (c *capturingTransport) Reply(ctx context.Context, call *bustransport.Message, reply *bustransport.Reply) error {
	c.reply <- reply
	return nil
}
func (c *capturingTransport) ResolveCallerID(ctx context.Context, sender string) (bustransport.CallerID, error) {
	return bustransport.CallerID{}, nil
}

// dispatchSync registers iface at path, dispatches a single message naming
// member, and blocks until the asynchronous caller-ID/invoke chain
// produces a reply.
func dispatchSync(t *testing.T, iface busdispatch.Interface, path, member string, decode func(dest ...interface{}) error) *bustransport.Reply {
	t.Helper()

	registry := busdispatch.NewRegistry()
	registry.Insert(path, iface)

	ft := newCapturingTransport()
	dispatcher := busdispatch.NewDispatcher(registry, ft, zap.NewNop(), nil, nil)

	dispatcher.HandleMessage(bustransport.NewMessage(path, iface.Name, member, ":1.1", 1, decode))

	select {
	case reply := <-ft.reply:
		return reply
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
		return nil
	}
}

// testRequest builds a RequestContext suitable for calling a property
// getter directly, bypassing the dispatcher.
func testRequest(iface busdispatch.Interface, member, path string) *busdispatch.RequestContext {
	method, _ := iface.MethodByName(member)
	return &busdispatch.RequestContext{
		Message: bustransport.NewMessage(path, iface.Name, member, ":1.1", 1, nil),
		Iface:   iface,
		Method:  method,
	}
}

func TestFindByNameRepliesWithUserObjectPath(t *testing.T) {
	facade, _ := newTestFacade()

	reply := dispatchSync(t, facade.CollectionInterface(), BasePath, "FindByName", func(dest ...interface{}) error {
		*(dest[0].(*string)) = "alice"
		return nil
	})

	require.Empty(t, reply.ErrorName)
	require.Equal(t, []interface{}{"/org/freedesktop/sssd/infopipe/Users/dom/1000"}, reply.Args)
}

func TestFindByIDMissingUserRepliesNotFound(t *testing.T) {
	facade, _ := newTestFacade()

	reply := dispatchSync(t, facade.CollectionInterface(), BasePath, "FindByID", func(dest ...interface{}) error {
		*(dest[0].(*uint32)) = 9999
		return nil
	})

	assert.Equal(t, CollectionInterfaceName+".NotFound", reply.ErrorName)
	assert.Equal(t, "User not found", reply.ErrorMessage)
}

func TestGetNameOnUserObject(t *testing.T) {
	facade, _ := newTestFacade()
	path, err := BuildPath("dom", 1000)
	require.NoError(t, err)

	reply := dispatchSync(t, facade.UserInterface(), path, "GetName", nil)
	require.Empty(t, reply.ErrorName)
	assert.Equal(t, []interface{}{"alice"}, reply.Args)
}

func TestPropertyAccessDeniedReturnsZeroValueNotError(t *testing.T) {
	facade, _ := newTestFacade() // AllowedAttrs does not include "gecos"
	path, err := BuildPath("dom", 1000)
	require.NoError(t, err)

	req := testRequest(facade.UserInterface(), "GetGecos", path)
	value, callErr := facade.getProperty("gecos")(context.Background(), req)
	assert.NoError(t, callErr)
	assert.Nil(t, value)
}

func TestGroupsPropertySkipsZeroGID(t *testing.T) {
	facade, _ := newTestFacade()
	path, err := BuildPath("dom", 1000)
	require.NoError(t, err)

	req := testRequest(facade.UserInterface(), "GetGroups", path)
	value, callErr := facade.getProperty("groups")(context.Background(), req)
	require.NoError(t, callErr)

	paths := value.([]string)
	assert.Len(t, paths, 2)
	assert.Contains(t, paths, "/org/freedesktop/sssd/infopipe/Groups/dom/2000")
	assert.Contains(t, paths, "/org/freedesktop/sssd/infopipe/Groups/dom/3000")
}

func TestUpdateGroupsListNotFound(t *testing.T) {
	facade, _ := newTestFacade()
	path, err := BuildPath("dom", 4242)
	require.NoError(t, err)

	reply := dispatchSync(t, facade.UserInterface(), path, "UpdateGroupsList", nil)
	assert.Equal(t, UserInterfaceName+".NotFound", reply.ErrorName)
}

func TestDecomposePathDomainNotFound(t *testing.T) {
	facade, _ := newTestFacade()
	_, _, err := facade.decomposePath("/org/freedesktop/sssd/infopipe/Users/other/1000")
	require.Error(t, err)
	assert.Equal(t, sbuserrors.CodeDomainNotFound, sbuserrors.ErrorCode(err))
}
