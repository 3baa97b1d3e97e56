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

// Package identitystoretest provides an in-memory identitystore.Store
// for tests.
package identitystoretest

import (
	"context"

	"github.com/sssd-project/sbus-go/identitystore"
)

// Fake is an in-memory identitystore.Store.
type Fake struct {
	Users      map[string]map[uint32]identitystore.User // domain -> uid -> User
	Groups     map[string]map[string][]identitystore.Group
	RefreshErr error
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		Users:  make(map[string]map[uint32]identitystore.User),
		Groups: make(map[string]map[string][]identitystore.Group),
	}
}

// AddUser registers u under domain, indexed by UID.
func (f *Fake) AddUser(domain string, u identitystore.User) {
	if f.Users[domain] == nil {
		f.Users[domain] = make(map[uint32]identitystore.User)
	}
	f.Users[domain][u.UID] = u
}

// AddGroups registers the groups username belongs to in domain.
func (f *Fake) AddGroups(domain, username string, groups []identitystore.Group) {
	if f.Groups[domain] == nil {
		f.Groups[domain] = make(map[string][]identitystore.Group)
	}
	f.Groups[domain][username] = groups
}

func (f *Fake) UserByName(ctx context.Context, domain, name string) (identitystore.User, error) {
	for _, u := range f.Users[domain] {
		if u.Name == name {
			return u, nil
		}
	}
	return identitystore.User{}, identitystore.ErrNotFound
}

func (f *Fake) UserByID(ctx context.Context, domain string, uid uint32) (identitystore.User, error) {
	u, ok := f.Users[domain][uid]
	if !ok {
		return identitystore.User{}, identitystore.ErrNotFound
	}
	return u, nil
}

func (f *Fake) InitGroups(ctx context.Context, domain, username string) ([]identitystore.Group, error) {
	return f.Groups[domain][username], nil
}

func (f *Fake) SearchUserAttrs(ctx context.Context, domain string, uid uint32, attrs []string) (map[string][]string, error) {
	u, ok := f.Users[domain][uid]
	if !ok {
		return nil, identitystore.ErrNotFound
	}
	out := make(map[string][]string)
	for _, a := range attrs {
		if v, ok := u.ExtraAttrs[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (f *Fake) RefreshUser(ctx context.Context, domain string, uid uint32) error {
	if f.RefreshErr != nil {
		return f.RefreshErr
	}
	if _, ok := f.Users[domain][uid]; !ok {
		return identitystore.ErrNotFound
	}
	return nil
}

var _ identitystore.Store = (*Fake)(nil)
