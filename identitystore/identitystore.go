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

// Package identitystore declares the consumed surface of the external
// identity store: the backing user/group cache, used here only through
// the queries the users façade needs. The store's own internals live
// elsewhere.
package identitystore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by UserByName/UserByID when no matching record
// exists in the store.
var ErrNotFound = errors.New("identitystore: not found")

// User is the subset of a cached identity record the users façade exposes.
// ExtraAttrs holds any further attributes the store keeps for the user;
// SearchUserAttrs returns a projection of them as a separate map.
type User struct {
	UID        uint32
	GID        uint32
	Name       string
	Gecos      string
	HomeDir    string
	Shell      string
	ExtraAttrs map[string][]string
}

// Group is the subset of a cached group record InitGroups returns.
type Group struct {
	GID  uint32
	Name string
}

// Store is the identity store's consumed surface. A concrete
// implementation wraps whatever cache backs it; this package only fixes
// the shape handlers in package users are written against.
type Store interface {
	// UserByName resolves name within domain. Returns ErrNotFound if no
	// such user exists.
	UserByName(ctx context.Context, domain, name string) (User, error)

	// UserByID resolves uid within domain. Returns ErrNotFound if no such
	// user exists.
	UserByID(ctx context.Context, domain string, uid uint32) (User, error)

	// InitGroups returns every group username belongs to within domain.
	InitGroups(ctx context.Context, domain, username string) ([]Group, error)

	// SearchUserAttrs looks up uid within domain projected down to attrs.
	SearchUserAttrs(ctx context.Context, domain string, uid uint32, attrs []string) (map[string][]string, error)

	// RefreshUser forces a cache refresh of uid within domain, the store
	// side of UpdateGroupsList.
	RefreshUser(ctx context.Context, domain string, uid uint32) error
}

// Unavailable returns a Store whose every query fails with reason. It is
// the placeholder a deployment runs with until a concrete store is wired
// in: handlers still dispatch, reply, and surface a clean failure instead
// of dereferencing a nil collaborator.
func Unavailable(reason string) Store {
	return unavailable{reason: reason}
}

type unavailable struct {
	reason string
}

func (u unavailable) err() error {
	return errors.New("identitystore: " + u.reason)
}

func (u unavailable) UserByName(context.Context, string, string) (User, error) {
	return User{}, u.err()
}

func (u unavailable) UserByID(context.Context, string, uint32) (User, error) {
	return User{}, u.err()
}

func (u unavailable) InitGroups(context.Context, string, string) ([]Group, error) {
	return nil, u.err()
}

func (u unavailable) SearchUserAttrs(context.Context, string, uint32, []string) (map[string][]string, error) {
	return nil, u.err()
}

func (u unavailable) RefreshUser(context.Context, string, uint32) error {
	return u.err()
}
