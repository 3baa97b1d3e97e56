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

// Package opath implements the object-path utilities the bus registry and
// dispatcher are built on: recognizing subtree paths, composing a path
// from a base and parts, and decomposing a path back into its parts. A
// trailing "/*" marks a subtree; a path may never end in a bare "/".
package opath

import (
	"strings"

	"github.com/sssd-project/sbus-go/sbuserrors"
)

// IsSubtree reports whether p is a subtree path, i.e. ends in "/*".
func IsSubtree(p string) bool {
	return len(p) >= 2 && p[len(p)-2:] == "/*"
}

// BaseOf returns p with a trailing "/*" removed. The degenerate subtree
// "/*" reduces to the root path "/". A non-subtree path is returned
// unchanged.
func BaseOf(p string) string {
	if !IsSubtree(p) {
		return p
	}
	if len(p) == 2 {
		// "/*" -> "/"
		return "/"
	}
	return p[:len(p)-2]
}

// ParentSubtree steps one segment up in the subtree address space. It
// returns "", false once the root is reached, or if p is malformed (ends
// in "/").
func ParentSubtree(p string) (string, bool) {
	base := BaseOf(p)
	if base == "/" {
		return "", false
	}

	slash := strings.LastIndexByte(base, '/')
	if slash < 0 {
		return "", false
	}
	if slash == len(base)-1 {
		// base cannot legally end in "/"; the path was malformed.
		return "", false
	}

	return base[:slash+1] + "*", true
}

// Ancestors returns the finite ordered sequence of ancestor subtree paths
// for p, starting with p itself exactly as given and walking up to the
// root subtree "/*", which is the last element; the bare root "/" is never
// included. The sequence is used by nearest-wins interface lookup.
func Ancestors(p string) []string {
	paths := []string{p}
	cur := p
	for {
		next, ok := ParentSubtree(cur)
		if !ok {
			break
		}
		paths = append(paths, next)
		cur = next
	}
	return paths
}

// Compose joins a base path with one or more path-safe segments to produce
// a well-formed object path, e.g. Compose("/org/example/Users", "dom",
// "1000") -> "/org/example/Users/dom/1000". Segments may not be empty or
// contain "/".
func Compose(base string, parts ...string) (string, error) {
	if base == "" || base[0] != '/' {
		return "", sbuserrors.InvalidArgumentErrorf("opath: base %q must be an absolute path", base)
	}
	if len(parts) == 0 {
		return "", sbuserrors.InvalidArgumentErrorf("opath: compose requires at least one part")
	}

	var b strings.Builder
	b.WriteString(strings.TrimSuffix(base, "/"))
	for _, part := range parts {
		if part == "" || strings.ContainsRune(part, '/') {
			return "", sbuserrors.InvalidArgumentErrorf("opath: invalid path segment %q", part)
		}
		b.WriteByte('/')
		b.WriteString(part)
	}
	return b.String(), nil
}

// DecomposeExact strips the known prefix base from p and returns exactly n
// remaining segments. It is an error if p does not start with base, or if
// the remainder does not split into exactly n non-empty segments.
func DecomposeExact(p, base string, n int) ([]string, error) {
	prefix := strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(p, prefix+"/") {
		return nil, sbuserrors.InvalidArgumentErrorf("opath: path %q does not start with %q", p, base)
	}

	rest := p[len(prefix)+1:]
	if rest == "" {
		return nil, sbuserrors.InvalidArgumentErrorf("opath: path %q has no segments after %q", p, base)
	}

	parts := strings.Split(rest, "/")
	if len(parts) != n {
		return nil, sbuserrors.InvalidArgumentErrorf(
			"opath: path %q has %d segments after %q, expected %d", p, len(parts), base, n)
	}
	for _, part := range parts {
		if part == "" {
			return nil, sbuserrors.InvalidArgumentErrorf("opath: path %q contains an empty segment", p)
		}
	}
	return parts, nil
}
