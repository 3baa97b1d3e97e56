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

// Package users exposes user accounts on the bus: a collection interface
// for find-by-name/find-by-id lookups that answer with per-user object
// paths, and a per-user interface whose methods and properties read
// account attributes out of the identity store, gated by an
// attribute-visibility policy.
package users

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/sssd-project/sbus-go/busdispatch"
	"github.com/sssd-project/sbus-go/domain"
	"github.com/sssd-project/sbus-go/groups"
	"github.com/sssd-project/sbus-go/identitystore"
	"github.com/sssd-project/sbus-go/opath"
	"github.com/sssd-project/sbus-go/sbuserrors"
)

// BasePath is the object-path prefix every user object and the
// collection interface live under.
const BasePath = "/org/freedesktop/sssd/infopipe/Users"

// CollectionInterfaceName names the interface exposing FindByName,
// FindByID, and the ListBy* stubs.
const CollectionInterfaceName = "org.freedesktop.sssd.infopipe.Users"

// UserInterfaceName names the per-object interface exposing
// UpdateGroupsList and the property getters.
const UserInterfaceName = "org.freedesktop.sssd.infopipe.Users.User"

// Config wires a Facade to its collaborators.
type Config struct {
	Domains *domain.List
	Store   identitystore.Store

	// AllowedAttrs gates every property getter. A nil map allows
	// nothing; an empty, non-nil map likewise allows nothing (fail
	// closed).
	AllowedAttrs map[string]bool

	// ExtraAttrNames is the configured projection for the
	// extraAttributes property.
	ExtraAttrNames []string

	Logger *zap.Logger
}

// Facade builds the Users collection and per-user interfaces against a
// single Config.
type Facade struct {
	cfg Config
}

// NewFacade builds a Facade. cfg.Logger defaults to a no-op logger if nil.
func NewFacade(cfg Config) *Facade {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Facade{cfg: cfg}
}

// BuildPath composes the object path for uid within domainName.
func BuildPath(domainName string, uid uint32) (string, error) {
	return opath.Compose(BasePath, domainName, strconv.FormatUint(uint64(uid), 10))
}

// decomposePath strips BasePath from path and resolves its two segments
// to a configured domain and a numeric uid.
func (f *Facade) decomposePath(path string) (domain.Info, uint32, error) {
	parts, err := opath.DecomposeExact(path, BasePath, 2)
	if err != nil {
		return domain.Info{}, 0, sbuserrors.InvalidArgumentErrorf("users: %v", err)
	}

	dom, ok := f.cfg.Domains.FindByName(parts[0])
	if !ok {
		return domain.Info{}, 0, sbuserrors.DomainNotFoundErrorf("domain %q not found", parts[0])
	}

	uid, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return domain.Info{}, 0, sbuserrors.InvalidArgumentErrorf("users: invalid uid %q: %v", parts[1], err)
	}

	return dom, uint32(uid), nil
}

// resolveUser decomposes path and loads the identity-store record for it.
// It is the single path-to-entity step every per-user method and property
// getter starts with.
func (f *Facade) resolveUser(ctx context.Context, path string) (domain.Info, identitystore.User, error) {
	dom, uid, err := f.decomposePath(path)
	if err != nil {
		return domain.Info{}, identitystore.User{}, err
	}

	user, err := f.cfg.Store.UserByID(ctx, dom.Name, uid)
	if err == identitystore.ErrNotFound {
		return domain.Info{}, identitystore.User{}, sbuserrors.NotFoundErrorf("User not found")
	}
	if err != nil {
		return domain.Info{}, identitystore.User{}, sbuserrors.FailedErrorf(0, "Failed to fetch user: %v", err)
	}
	return dom, user, nil
}

func (f *Facade) isAttributeAllowed(attr string) bool {
	return f.cfg.AllowedAttrs[attr]
}

// CollectionInterface builds the Users interface: FindByName, FindByID,
// and the two ListBy* stubs.
func (f *Facade) CollectionInterface() busdispatch.Interface {
	return busdispatch.Interface{
		Name: CollectionInterfaceName,
		Methods: []busdispatch.MethodMeta{
			{Name: "FindByName", Invoke: f.findByName},
			{Name: "FindByID", Invoke: f.findByID},
			{Name: "ListByName", Invoke: f.listByName},
			{Name: "ListByDomainAndName", Invoke: f.listByDomainAndName},
		},
	}
}

func (f *Facade) findByName(ctx context.Context, req *busdispatch.RequestContext) {
	var name string
	if err := req.Message.Unmarshal(&name); err != nil {
		_ = req.FailAndFinish(ctx, sbuserrors.InvalidArgumentErrorf("FindByName: %v", err))
		return
	}

	// Every configured domain is tried in order; first match wins.
	for _, domName := range f.cfg.Domains.Names() {
		user, err := f.cfg.Store.UserByName(ctx, domName, name)
		if err == identitystore.ErrNotFound {
			continue
		}
		if err != nil {
			_ = req.FailAndFinish(ctx, sbuserrors.FailedErrorf(0, "Failed to fetch user: %v", err))
			return
		}

		path, err := BuildPath(domName, user.UID)
		if err != nil {
			_ = req.FailAndFinish(ctx, sbuserrors.InternalErrorf("Failed to compose object path"))
			return
		}
		_ = req.Finish(ctx, path)
		return
	}

	_ = req.FailAndFinish(ctx, sbuserrors.NotFoundErrorf("User not found"))
}

func (f *Facade) findByID(ctx context.Context, req *busdispatch.RequestContext) {
	var uid uint32
	if err := req.Message.Unmarshal(&uid); err != nil {
		_ = req.FailAndFinish(ctx, sbuserrors.InvalidArgumentErrorf("FindByID: %v", err))
		return
	}

	for _, domName := range f.cfg.Domains.Names() {
		user, err := f.cfg.Store.UserByID(ctx, domName, uid)
		if err == identitystore.ErrNotFound {
			continue
		}
		if err != nil {
			_ = req.FailAndFinish(ctx, sbuserrors.FailedErrorf(0, "Failed to fetch user: %v", err))
			return
		}

		path, err := BuildPath(domName, user.UID)
		if err != nil {
			_ = req.FailAndFinish(ctx, sbuserrors.InternalErrorf("Failed to compose object path"))
			return
		}
		_ = req.Finish(ctx, path)
		return
	}

	_ = req.FailAndFinish(ctx, sbuserrors.NotFoundErrorf("User not found"))
}

// listByName and listByDomainAndName reply with an empty list.
// TODO: implement bulk listing once the identity-store query that would
// back it exists.
func (f *Facade) listByName(ctx context.Context, req *busdispatch.RequestContext) {
	_ = req.Finish(ctx, []string{})
}

func (f *Facade) listByDomainAndName(ctx context.Context, req *busdispatch.RequestContext) {
	_ = req.Finish(ctx, []string{})
}

// UserInterface builds the per-user object interface: UpdateGroupsList plus
// every property getter.
func (f *Facade) UserInterface() busdispatch.Interface {
	return busdispatch.Interface{
		Name: UserInterfaceName,
		Methods: []busdispatch.MethodMeta{
			{Name: "UpdateGroupsList", Invoke: f.updateGroupsList},
			{Name: "GetName", Invoke: f.getterMethod("name")},
			{Name: "GetUidNumber", Invoke: f.getterMethod("uidNumber")},
			{Name: "GetGidNumber", Invoke: f.getterMethod("gidNumber")},
			{Name: "GetGecos", Invoke: f.getterMethod("gecos")},
			{Name: "GetHomeDirectory", Invoke: f.getterMethod("homeDirectory")},
			{Name: "GetLoginShell", Invoke: f.getterMethod("loginShell")},
			{Name: "GetGroups", Invoke: f.getterMethod("groups")},
			{Name: "GetExtraAttributes", Invoke: f.getterMethod("extraAttributes")},
		},
		Properties: []busdispatch.PropertyMeta{
			{Name: "name", Get: f.getProperty("name")},
			{Name: "uidNumber", Get: f.getProperty("uidNumber")},
			{Name: "gidNumber", Get: f.getProperty("gidNumber")},
			{Name: "gecos", Get: f.getProperty("gecos")},
			{Name: "homeDirectory", Get: f.getProperty("homeDirectory")},
			{Name: "loginShell", Get: f.getProperty("loginShell")},
			{Name: "groups", Get: f.getProperty("groups")},
			{Name: "extraAttributes", Get: f.getProperty("extraAttributes")},
		},
	}
}

// getterMethod adapts a property getter into a MethodMeta invoker, so a
// direct Get* method call and the standard property-access path share one
// implementation.
func (f *Facade) getterMethod(attr string) func(context.Context, *busdispatch.RequestContext) {
	get := f.getProperty(attr)
	return func(ctx context.Context, req *busdispatch.RequestContext) {
		value, err := get(ctx, req)
		if err != nil {
			_ = req.FailAndFinish(ctx, err)
			return
		}
		if value == nil {
			// Denied attribute: reply with no payload, the way the
			// property surface leaves its out-parameter untouched.
			_ = req.Finish(ctx)
			return
		}
		_ = req.Finish(ctx, value)
	}
}

// getProperty returns the PropertyMeta.Get closure for attr. A disallowed
// attribute returns (nil, nil): the zero value, not an error, so
// GetAll-style enumeration can silently elide it instead of failing the
// whole call.
func (f *Facade) getProperty(attr string) func(context.Context, *busdispatch.RequestContext) (interface{}, error) {
	return func(ctx context.Context, req *busdispatch.RequestContext) (interface{}, error) {
		if !f.isAttributeAllowed(attr) {
			f.cfg.Logger.Debug("attribute not allowed", zap.String("attr", attr))
			return nil, nil
		}

		switch attr {
		case "groups":
			return f.getGroups(ctx, req.Message.Path)
		case "extraAttributes":
			return f.getExtraAttributes(ctx, req.Message.Path)
		}

		_, user, err := f.resolveUser(ctx, req.Message.Path)
		if err != nil {
			return nil, err
		}

		switch attr {
		case "name":
			return user.Name, nil
		case "uidNumber":
			return user.UID, nil
		case "gidNumber":
			return user.GID, nil
		case "gecos":
			return user.Gecos, nil
		case "homeDirectory":
			return user.HomeDir, nil
		case "loginShell":
			return user.Shell, nil
		default:
			return nil, sbuserrors.InternalErrorf("users: unknown attribute %q", attr)
		}
	}
}

// getGroups runs the initgroups query and builds a group object path per
// result, skipping gid == 0 entries.
func (f *Facade) getGroups(ctx context.Context, path string) (interface{}, error) {
	dom, user, err := f.resolveUser(ctx, path)
	if err != nil {
		return nil, err
	}

	memberships, err := f.cfg.Store.InitGroups(ctx, dom.Name, user.Name)
	if err != nil {
		return nil, sbuserrors.FailedErrorf(0, "Unable to get groups for %s@%s: %v", user.Name, dom.Name, err)
	}

	paths := make([]string, 0, len(memberships))
	for _, g := range memberships {
		if g.GID == 0 {
			continue
		}
		p, err := groups.BuildPath(dom.Name, g.GID)
		if err != nil {
			return nil, sbuserrors.InternalErrorf("users: failed to compose group path: %v", err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// getExtraAttributes projects the configured extra-attribute list against
// the identity store and packages the hits as attribute-name to
// list-of-strings.
func (f *Facade) getExtraAttributes(ctx context.Context, path string) (interface{}, error) {
	dom, user, err := f.resolveUser(ctx, path)
	if err != nil {
		return nil, err
	}

	if len(f.cfg.ExtraAttrNames) == 0 {
		return map[string][]string{}, nil
	}

	values, err := f.cfg.Store.SearchUserAttrs(ctx, dom.Name, user.UID, f.cfg.ExtraAttrNames)
	if err == identitystore.ErrNotFound {
		return map[string][]string{}, nil
	}
	if err != nil {
		return nil, sbuserrors.FailedErrorf(0, "Unable to lookup user: %v", err)
	}
	return values, nil
}

// updateGroupsList kicks a refresh of the user's group memberships in
// the identity store.
func (f *Facade) updateGroupsList(ctx context.Context, req *busdispatch.RequestContext) {
	dom, user, err := f.resolveUser(ctx, req.Message.Path)
	if err != nil {
		_ = req.FailAndFinish(ctx, err)
		return
	}

	if err := f.cfg.Store.RefreshUser(ctx, dom.Name, user.UID); err != nil {
		if err == identitystore.ErrNotFound {
			_ = req.FailAndFinish(ctx, sbuserrors.NotFoundErrorf("User not found"))
			return
		}
		_ = req.FailAndFinish(ctx, sbuserrors.FailedErrorf(0, "Failed to fetch user: %v", err))
		return
	}

	_ = req.Finish(ctx)
}
