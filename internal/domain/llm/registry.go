package llm

import (
	"fmt"
	"sync"

	"github.com/aryanarora07/podlyze/internal/domain/llm/inter"
	"github.com/aryanarora07/podlyze/internal/utils"
)

// Factory builds a provider from resolved configuration.
type Factory func(cfg *inter.Config, logger *utils.Logger) (inter.Provider, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a provider factory under a type name. Adapters call
// this from init().
func Register(name string, factory Factory) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		return fmt.Errorf("llm: factory for %q is nil", name)
	}
	if _, exists := registry[name]; exists {
		return fmt.Errorf("llm: provider %q already registered", name)
	}
	registry[name] = factory
	return nil
}

// Create instantiates the provider registered under name.
func Create(name string, cfg *inter.Config, logger *utils.Logger) (inter.Provider, error) {
	registryMu.RLock()
	factory, exists := registry[name]
	registryMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("llm: unknown provider %q", name)
	}
	return factory(cfg, logger)
}
