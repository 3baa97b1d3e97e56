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

// Package busconn bridges a busdispatch.Registry to a live
// bustransport.Transport: it translates registry mutations into the
// transport's object/fallback/unregister calls and re-registers
// everything after a reconnect.
package busconn

import (
	"context"

	"go.uber.org/zap"

	"github.com/sssd-project/sbus-go/busdispatch"
	"github.com/sssd-project/sbus-go/bustransport"
	"github.com/sssd-project/sbus-go/internal/errorsync"
	"github.com/sssd-project/sbus-go/introspect"
	"github.com/sssd-project/sbus-go/opath"
	"github.com/sssd-project/sbus-go/sbuserrors"
)

// Conn binds a Registry to a Transport. It owns neither; both are expected
// to outlive a single reconnect cycle.
type Conn struct {
	registry  *busdispatch.Registry
	transport bustransport.Transport
	dispatch  *busdispatch.Dispatcher
	logger    *zap.Logger

	life lifecycleOnce
}

// New builds a Conn and starts it immediately: a binding with no
// registrations yet is still "running" and ready to accept them.
func New(registry *busdispatch.Registry, transport bustransport.Transport, dispatcher *busdispatch.Dispatcher, logger *zap.Logger) *Conn {
	c := &Conn{registry: registry, transport: transport, dispatch: dispatcher, logger: logger}
	c.life.Start(nil)
	return c
}

// RegisterInterface inserts iface into the registry and, if that is the
// first interface at path, pushes a corresponding registration down to
// the transport.
func (c *Conn) RegisterInterface(path string, iface busdispatch.Interface) error {
	if !c.life.IsRunning() {
		return sbuserrors.FailedErrorf(0, "busconn: RegisterInterface called on a closed connection")
	}

	result := c.registry.Insert(path, iface)
	switch result {
	case busdispatch.Duplicate:
		return sbuserrors.ConflictErrorf("interface %s already registered at %s", iface.Name, path)
	case busdispatch.Extended:
		// The path is already live at the transport; nothing more to do.
		return c.attachIntrospection(path)
	case busdispatch.Fresh:
		if err := c.registerPath(path); err != nil {
			// Leave the in-memory registry intact: the caller may retry via
			// ReregisterAll once the transport is healthy again.
			return err
		}
		return c.attachIntrospection(path)
	default:
		return sbuserrors.InternalErrorf("busconn: unexpected insert result %v", result)
	}
}

// attachIntrospection registers the standard introspection interface at
// path, so every registered path can be enumerated. The second Insert is
// Extended or Duplicate at worst, so this never recurses.
func (c *Conn) attachIntrospection(path string) error {
	iface := introspect.Interface(c.registry)
	result := c.registry.Insert(path, iface)
	if result == busdispatch.Duplicate {
		return nil
	}
	if result == busdispatch.Fresh {
		return c.registerPath(path)
	}
	return nil
}

// registerPath pushes a single path's registration down to the transport.
// A subtree path replaces any exact registration on its base with a
// fallback, since the transport cannot hold both.
func (c *Conn) registerPath(path string) error {
	handler := bustransport.Handler(c.dispatch.HandleMessage)

	if opath.IsSubtree(path) {
		base := opath.BaseOf(path)
		if c.transport.IsRegistered(base) {
			if err := c.transport.Unregister(base); err != nil {
				c.logger.Warn("failed to unregister exact path before installing fallback",
					zap.String("path", base), zap.Error(err))
			}
		}
		if err := c.transport.RegisterFallback(base, handler); err != nil {
			return sbuserrors.FailedErrorf(0, "register fallback at %s: %v", base, err)
		}
		return nil
	}

	err := c.transport.RegisterObject(path, handler)
	if err == nil {
		return nil
	}
	if err == bustransport.ErrObjectPathInUse {
		// An ancestor fallback already covers path; that's success.
		return nil
	}
	return sbuserrors.FailedErrorf(0, "register object at %s: %v", path, err)
}

// ReregisterAll re-pushes every registry key to the transport, used after
// a reconnect. Failures are collected and returned together; the registry
// itself is never mutated by a failed attempt.
func (c *Conn) ReregisterAll(ctx context.Context) error {
	waiter := &errorsync.ErrorWaiter{}
	for _, path := range c.registry.Keys() {
		path := path
		waiter.Submit(func() error {
			return c.registerPath(path)
		})
	}
	return waiter.WaitCombined()
}

// Close unregisters every path this Conn installed and marks it closed.
// Calling RegisterInterface after Close is a programming error.
func (c *Conn) Close() error {
	return c.life.Stop(func() error {
		waiter := &errorsync.ErrorWaiter{}
		for _, path := range c.registry.Keys() {
			path := path
			waiter.Submit(func() error {
				base := opath.BaseOf(path)
				if err := c.transport.Unregister(base); err != nil {
					c.logger.Error("failed to unregister path on close", zap.String("path", base), zap.Error(err))
					return err
				}
				return nil
			})
		}
		return waiter.WaitCombined()
	})
}
