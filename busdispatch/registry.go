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
	"sort"
	"sync"

	"github.com/sssd-project/sbus-go/opath"
	"github.com/sssd-project/sbus-go/sbuserrors"
)

// InsertResult reports what Insert did.
type InsertResult int

const (
	// Fresh means path had no entry before this call.
	Fresh InsertResult = iota
	// Extended means path already had an entry and this interface was
	// appended to it.
	Extended
	// Duplicate means the interface's name was already present at path;
	// nothing was changed.
	Duplicate
)

func (r InsertResult) String() string {
	switch r {
	case Fresh:
		return "fresh"
	case Extended:
		return "extended"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// entry is one registry slot: the ordered, name-unique list of interfaces
// registered at a single path.
type entry struct {
	path       string
	interfaces []Interface
}

func (e *entry) indexOf(name string) int {
	for i, iface := range e.interfaces {
		if iface.Name == name {
			return i
		}
	}
	return -1
}

// Registry is the keyed mapping from object path to interface set.
// Registration and dispatch touch it from different goroutines, so it is
// guarded by a mutex.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Insert adds iface to path's interface list, per the fresh/extended/
// duplicate rules in the data model.
func (r *Registry) Insert(path string, iface Interface) InsertResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[path]
	if !ok {
		r.entries[path] = &entry{path: path, interfaces: []Interface{iface}}
		return Fresh
	}

	if e.indexOf(iface.Name) >= 0 {
		return Duplicate
	}

	e.interfaces = append(e.interfaces, iface)
	return Extended
}

// Has reports exact-key existence, ignoring ancestor subtrees.
func (r *Registry) Has(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[path]
	return ok
}

// LookupIface tries path, then each ancestor subtree in order, and
// returns the first interface on that path whose name matches ifaceName.
// An interface registered exactly on a path preempts the same interface
// registered on an ancestor subtree.
func (r *Registry) LookupIface(path, ifaceName string) (Interface, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, candidate := range opath.Ancestors(path) {
		e, ok := r.entries[candidate]
		if !ok {
			continue
		}
		if idx := e.indexOf(ifaceName); idx >= 0 {
			return e.interfaces[idx], true
		}
	}
	return Interface{}, false
}

// LookupSupported unions every interface registered on path or any ancestor
// subtree, nearest-wins on name collisions, preserving each entry's
// insertion order and listing the nearest path's interfaces first.
func (r *Registry) LookupSupported(path string) []Interface {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool)
	var out []Interface
	for _, candidate := range opath.Ancestors(path) {
		e, ok := r.entries[candidate]
		if !ok {
			continue
		}
		for _, iface := range e.interfaces {
			if seen[iface.Name] {
				continue
			}
			seen[iface.Name] = true
			out = append(out, iface)
		}
	}
	return out
}

// Keys returns every registered path, sorted for deterministic
// reregistration order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Remove deletes path's entry entirely. The caller is responsible for
// unregistering the path from the transport; the registry itself makes no
// transport calls and owns only the in-memory state.
func (r *Registry) Remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, path)
}

// RemoveInterface deletes a single named interface from path's entry,
// removing the entry itself if it becomes empty. Returns an Internal error
// if path has no such interface; this only happens on a programming error
// since callers only ever remove what they successfully inserted.
func (r *Registry) RemoveInterface(path, ifaceName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[path]
	if !ok {
		return sbuserrors.InternalErrorf("busdispatch: remove %s from %s: no such entry", ifaceName, path)
	}
	idx := e.indexOf(ifaceName)
	if idx < 0 {
		return sbuserrors.InternalErrorf("busdispatch: remove %s from %s: not registered", ifaceName, path)
	}
	e.interfaces = append(e.interfaces[:idx], e.interfaces[idx+1:]...)
	if len(e.interfaces) == 0 {
		delete(r.entries, path)
	}
	return nil
}
