// Package registry keeps the set of table plugins and adapts them to the engine's virtual table protocol.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/umputun/hostql/pkg/table"
)

// ErrUnknownTable returned by Lookup for names without a plugin
var ErrUnknownTable = errors.New("unknown table")

// Registry maps table names to plugins. It is read-only after New and safe for concurrent use.
type Registry struct {
	plugins map[string]table.Plugin
	names   []string
}

// New makes a registry from plugins. All problems, duplicate names and invalid schemas,
// are reported together.
func New(plugins ...table.Plugin) (*Registry, error) {
	res := &Registry{plugins: make(map[string]table.Plugin, len(plugins))}
	errs := new(multierror.Error)
	for i, p := range plugins {
		if p == nil {
			errs = multierror.Append(errs, fmt.Errorf("plugin %d is nil", i))
			continue
		}
		name := p.Name()
		if name == "" {
			errs = multierror.Append(errs, fmt.Errorf("plugin %d has no name", i))
			continue
		}
		if _, ok := res.plugins[name]; ok {
			errs = multierror.Append(errs, fmt.Errorf("table %q already registered", name))
			continue
		}
		if err := p.Schema().Validate(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("invalid schema of table %q: %w", name, err))
			continue
		}
		res.plugins[name] = p
		res.names = append(res.names, name)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	sort.Strings(res.names)
	return res, nil
}

// Lookup returns plugin by table name
func (r *Registry) Lookup(name string) (table.Plugin, error) {
	p, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return p, nil
}

// Names returns sorted names of all registered tables
func (r *Registry) Names() []string { return append([]string{}, r.names...) }

// Schema returns schema of the table
func (r *Registry) Schema(name string) (table.Schema, error) {
	p, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return p.Schema(), nil
}
