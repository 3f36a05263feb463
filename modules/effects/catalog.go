package effects

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog maps effects names to factories. The router resolves route
// effects through it.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewCatalog creates a catalog holding factories.
func NewCatalog(factories ...Factory) *Catalog {
	c := &Catalog{factories: make(map[string]Factory, len(factories))}
	for _, f := range factories {
		_ = c.Add(f)
	}
	return c
}

// Add registers f, replacing any factory with the same name.
func (c *Catalog) Add(f Factory) error {
	if f.Name == "" || f.New == nil {
		return ErrFactoryInvalid
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[f.Name] = f
	return nil
}

// Lookup returns the factory registered under name.
func (c *Catalog) Lookup(name string) (Factory, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.factories[name]
	if !ok {
		return Factory{}, fmt.Errorf("%w: %s", ErrUnknownEffects, name)
	}
	return f, nil
}

// Names returns the registered names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
