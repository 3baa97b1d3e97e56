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

// Package sbusconfig loads process configuration: the bus address and
// well-known name, the configured domain list, and the attribute
// allow-lists the users façade consults.
package sbusconfig

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/sssd-project/sbus-go/sbuserrors"
)

// DefaultBusName is the well-known bus name claimed when the config file
// does not override it.
const DefaultBusName = "org.freedesktop.sssd.infopipe"

// Config is the root on-disk configuration document.
type Config struct {
	// BusAddress is the local message-bus address to connect to, e.g.
	// "unix:path=/var/run/sssd.sock". Empty means use the platform
	// default system bus.
	BusAddress string `yaml:"bus_address"`

	// BusName is the well-known name to claim on the bus. Empty means
	// DefaultBusName.
	BusName string `yaml:"bus_name"`

	// Domains lists the configured identity domains, in lookup-priority
	// order.
	Domains []string `yaml:"domains"`

	// Users configures the users façade.
	Users UsersConfig `yaml:"users"`
}

// UsersConfig configures the attribute-visibility policy for the Users.User
// interface.
type UsersConfig struct {
	// AllowedAttrs lists the property names ordinary callers may read
	// (name, uidNumber, gidNumber, gecos, homeDirectory, loginShell,
	// groups, extraAttributes).
	AllowedAttrs []string `yaml:"allowed_attributes"`

	// ExtraAttrs lists the identity-store attribute names projected into
	// the extraAttributes property.
	ExtraAttrs []string `yaml:"extra_attributes"`
}

// AllowedAttrsSet returns UsersConfig.AllowedAttrs as a lookup set, the
// shape package users.Config wants.
func (u UsersConfig) AllowedAttrsSet() map[string]bool {
	set := make(map[string]bool, len(u.AllowedAttrs))
	for _, a := range u.AllowedAttrs {
		set[a] = true
	}
	return set
}

// Load reads and parses the YAML document at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, sbuserrors.FailedErrorf(0, "sbusconfig: read %s: %v", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, sbuserrors.InvalidArgumentErrorf("sbusconfig: parse %s: %v", path, err)
	}
	if cfg.BusName == "" {
		cfg.BusName = DefaultBusName
	}
	return cfg, nil
}
