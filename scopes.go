package powerjoins

import (
	"sync"
)

// ScopeFunc a named scope applied to a join fragment of its model
type ScopeFunc func(join *JoinClause, args ...interface{})

type scopeRegistry struct {
	mu     sync.RWMutex
	scopes map[string]map[string]ScopeFunc
}

func newScopeRegistry() *scopeRegistry {
	return &scopeRegistry{scopes: map[string]map[string]ScopeFunc{}}
}

func (r *scopeRegistry) register(model, name string, fn ScopeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scopes[model] == nil {
		r.scopes[model] = map[string]ScopeFunc{}
	}
	r.scopes[model][name] = fn
}

func (r *scopeRegistry) lookup(model, name string) ScopeFunc {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scopes[model][name]
}

// RegisterScope makes fn callable as JoinClause.Scope(name) on joins of model
func (config *Config) RegisterScope(model, name string, fn ScopeFunc) {
	if config.scopes == nil {
		config.scopes = newScopeRegistry()
	}
	config.scopes.register(model, name, fn)
}

// Scopes pass current database connection to arguments `func(*DB) *DB`,
// which could be used to add conditions dynamically
func (db *DB) Scopes(funcs ...func(*DB) *DB) (tx *DB) {
	tx = db.getInstance()
	for _, fc := range funcs {
		tx = fc(tx)
	}
	return tx
}
