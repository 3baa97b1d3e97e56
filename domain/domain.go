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

// Package domain is the small domain-list lookup helper the users façade
// needs to validate the domain segment of a decomposed object path and to
// scope identity-store queries.
package domain

import "strings"

// Info is the minimal domain record the users façade consults: just
// enough to validate a path segment and qualify identity-store calls.
type Info struct {
	Name string
}

// List is a fixed, case-sensitive set of configured domains.
type List struct {
	domains []Info
}

// NewList builds a List from the given domain names, in configured order.
func NewList(names ...string) *List {
	l := &List{}
	for _, n := range names {
		l.domains = append(l.domains, Info{Name: n})
	}
	return l
}

// FindByName returns the domain named name, or false if no domain with
// that exact name is configured.
func (l *List) FindByName(name string) (Info, bool) {
	for _, d := range l.domains {
		if d.Name == name {
			return d, true
		}
	}
	return Info{}, false
}

// Names returns every configured domain name, in configured order.
func (l *List) Names() []string {
	names := make([]string, len(l.domains))
	for i, d := range l.domains {
		names[i] = d.Name
	}
	return names
}

// String renders the configured domain list for logging.
func (l *List) String() string {
	return strings.Join(l.Names(), ",")
}
