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

// Package groups provides the group-object-path builder the users
// façade's "groups" property needs. A full group object family does not
// exist yet; only path construction is needed here.
package groups

import (
	"strconv"

	"github.com/sssd-project/sbus-go/opath"
)

// BasePath is the object-path prefix group objects live under.
const BasePath = "/org/freedesktop/sssd/infopipe/Groups"

// BuildPath composes the object path for gid within domain.
// opath.Compose's segment validation is the single place that guards
// against malformed domain names.
func BuildPath(domainName string, gid uint32) (string, error) {
	return opath.Compose(BasePath, domainName, strconv.FormatUint(uint64(gid), 10))
}
