// Package process holds per-rule processing plugins: collaborators that
// enrich a matched transaction instead of a plain allocation split.
package process

import (
	"strings"

	"github.com/ledgertools-dev/ledgertools/internal/accounts"
	"github.com/ledgertools-dev/ledgertools/internal/model"
)

// Plugin mutates a transaction according to per-rule arguments. The plugin
// must leave the transaction summing to zero.
type Plugin interface {
	Name() string
	Process(t *model.Transaction, acct accounts.Account, args map[string]string) error
}

// Registry holds named plugins.
type Registry struct {
	plugins map[string]Plugin
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds a plugin. Panics on duplicate name.
func (r *Registry) Register(p Plugin) {
	key := strings.ToLower(p.Name())
	if _, ok := r.plugins[key]; ok {
		panic("duplicate process plugin: " + key)
	}
	r.plugins[key] = p
}

// Get returns the plugin for name, or nil.
func (r *Registry) Get(name string) Plugin {
	return r.plugins[strings.ToLower(name)]
}

// DefaultRegistry returns a registry with all built-in plugins.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&AmortSchedule{})
	return r
}
