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

// Package introspect implements the standard introspection interface
// every registered path carries alongside its domain interfaces. It is
// deliberately minimal: it reports method and property names, not full
// argument signatures, since busdispatch's MethodMeta carries no
// signature metadata.
package introspect

import (
	"context"
	"strings"

	"github.com/sssd-project/sbus-go/busdispatch"
)

// InterfaceName is the standard introspection interface name, matching the
// well-known org.freedesktop.DBus.Introspectable interface this mirrors.
const InterfaceName = "org.freedesktop.DBus.Introspectable"

// registry is the minimal surface introspect needs out of
// *busdispatch.Registry, kept as an interface so this package does not
// require a concrete Registry in tests.
type registry interface {
	LookupSupported(path string) []busdispatch.Interface
}

// Interface builds the introspection Interface bound to reg. It is
// inserted into the registry alongside every domain interface so any
// client can enumerate what a path supports regardless of which interface
// it otherwise came to use.
func Interface(reg registry) busdispatch.Interface {
	return busdispatch.Interface{
		Name: InterfaceName,
		Methods: []busdispatch.MethodMeta{{
			Name: "Introspect",
			Invoke: func(ctx context.Context, req *busdispatch.RequestContext) {
				xml := renderXML(reg.LookupSupported(req.Message.Path))
				_ = req.Finish(ctx, xml)
			},
		}},
	}
}

func renderXML(ifaces []busdispatch.Interface) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE node PUBLIC "-//freedesktop//DTD D-BUS Object Introspection 1.0//EN"` + "\n")
	b.WriteString(`"http://www.freedesktop.org/standards/dbus/1.0/introspect.dtd">` + "\n")
	b.WriteString("<node>\n")
	b.WriteString("  <interface name=\"" + InterfaceName + "\">\n")
	b.WriteString("    <method name=\"Introspect\">\n")
	b.WriteString("      <arg name=\"data\" direction=\"out\" type=\"s\"/>\n")
	b.WriteString("    </method>\n")
	b.WriteString("  </interface>\n")

	for _, iface := range ifaces {
		if iface.Name == InterfaceName {
			// Already rendered above with its full signature.
			continue
		}
		b.WriteString("  <interface name=\"" + iface.Name + "\">\n")
		for _, m := range iface.Methods {
			if m.Oneway {
				b.WriteString("    <method name=\"" + m.Name + "\">\n")
				b.WriteString("      <annotation name=\"org.freedesktop.DBus.Method.NoReply\" value=\"true\"/>\n")
				b.WriteString("    </method>\n")
				continue
			}
			b.WriteString("    <method name=\"" + m.Name + "\"/>\n")
		}
		for _, p := range iface.Properties {
			access := "read"
			if p.Set != nil {
				access = "readwrite"
			}
			b.WriteString("    <property name=\"" + p.Name + "\" access=\"" + access + "\"/>\n")
		}
		b.WriteString("  </interface>\n")
	}

	b.WriteString("</node>\n")
	return b.String()
}
