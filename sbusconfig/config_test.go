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

package sbusconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
bus_address: "unix:path=/var/run/sssd.sock"
domains:
  - dom1
  - dom2
users:
  allowed_attributes:
    - name
    - groups
  extra_attributes:
    - phone
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sbus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "unix:path=/var/run/sssd.sock", cfg.BusAddress)
	assert.Equal(t, DefaultBusName, cfg.BusName)
	assert.Equal(t, []string{"dom1", "dom2"}, cfg.Domains)
	assert.Equal(t, []string{"name", "groups"}, cfg.Users.AllowedAttrs)
	assert.True(t, cfg.Users.AllowedAttrsSet()["name"])
	assert.False(t, cfg.Users.AllowedAttrsSet()["gecos"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/sbus.yaml")
	assert.Error(t, err)
}
