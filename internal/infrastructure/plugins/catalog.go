// Package plugins provides the catalog of built-in capability plugins.
package plugins

import (
	"sort"

	"github.com/reglet-dev/capbridge/internal/application/ports"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins/calc"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins/counter"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins/digest"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins/echo"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins/ident"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins/kv"
)

// Catalog implements ports.PluginCatalog over a fixed plugin set.
type Catalog struct {
	plugins map[string]ports.Plugin
	names   []string
}

// NewCatalog creates a catalog. A later plugin with the same name replaces
// an earlier one.
func NewCatalog(plugins ...ports.Plugin) *Catalog {
	c := &Catalog{plugins: make(map[string]ports.Plugin, len(plugins))}
	for _, p := range plugins {
		if _, exists := c.plugins[p.Name()]; !exists {
			c.names = append(c.names, p.Name())
		}
		c.plugins[p.Name()] = p
	}
	sort.Strings(c.names)
	return c
}

// Builtin returns the catalog of plugins compiled into the binary.
func Builtin() *Catalog {
	return NewCatalog(
		calc.New(),
		counter.New(),
		digest.New(),
		echo.New(),
		ident.New(),
		kv.New(),
	)
}

// Lookup resolves a plugin by name.
func (c *Catalog) Lookup(name string) (ports.Plugin, bool) {
	p, ok := c.plugins[name]
	return p, ok
}

// List returns every plugin sorted by name.
func (c *Catalog) List() []ports.Plugin {
	out := make([]ports.Plugin, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.plugins[name])
	}
	return out
}
