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

// Package busdispatch implements the bus-facing half of the object
// framework: an in-process registry of interfaces keyed by object path,
// the lookup that picks the nearest-registered interface for an inbound
// call, and the request-context lifecycle each dispatched call is handed.
package busdispatch

import "context"

// MethodMeta describes a single method of an Interface: its name, the
// typed invoker that runs it, and whether it is fire-and-forget.
type MethodMeta struct {
	// Name is the D-Bus member name, e.g. "UpdateGroupsList".
	Name string

	// Invoke runs the method against a dispatched request. It must call
	// exactly one of RequestContext.Finish or RequestContext.FailAndFinish
	// (or neither, for Oneway methods).
	Invoke func(ctx context.Context, req *RequestContext)

	// Oneway methods never send a method return; callers are expected
	// to fire and forget.
	Oneway bool
}

// PropertyMeta describes a single readable (and optionally writable)
// property of an Interface.
type PropertyMeta struct {
	Name string

	// Get returns the property's current value, or an error. Returning
	// (nil, nil) signals access-denial: the property is silently omitted
	// from GetAll-style results without failing the whole call.
	Get func(ctx context.Context, req *RequestContext) (interface{}, error)

	// Set is nil for read-only properties.
	Set func(ctx context.Context, req *RequestContext, value interface{}) error
}

// Interface is one named vtable an object path can expose. A single path
// may have many Interfaces registered against it; the registry enumerates
// the union via LookupSupported.
type Interface struct {
	// Name is the D-Bus interface name, e.g.
	// "org.freedesktop.sssd.infopipe.Users.User".
	Name string

	Methods    []MethodMeta
	Properties []PropertyMeta
}

// MethodByName returns the MethodMeta for name, or false.
func (i Interface) MethodByName(name string) (MethodMeta, bool) {
	for _, m := range i.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodMeta{}, false
}

// PropertyByName returns the PropertyMeta for name, or false.
func (i Interface) PropertyByName(name string) (PropertyMeta, bool) {
	for _, p := range i.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyMeta{}, false
}
