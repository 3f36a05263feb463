// Package store provides the state container: a pure reducer over AppState,
// a FIFO dispatcher and a publish/subscribe stream of applied actions.
package store

import (
	"context"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
)

// ModuleName is the name of this module
const ModuleName = "store"

// ServiceName is the name of the service provided by this module
const ServiceName = "store"

// Module constructs the Store during phase 2.
type Module struct {
	store  *Store
	logger initorder.Logger
}

// NewModule creates a new instance of the store module
func NewModule() *Module {
	return &Module{}
}

// Name returns the name of the module
func (m *Module) Name() string {
	return ModuleName
}

// Init creates the store and records store.ready.
func (m *Module) Init(app initorder.Application) error {
	m.logger = app.Logger()
	m.store = New(app.Milestones(), m.logger)

	lifecycle.NewEmitter(app.Milestones(), MilestoneSource).Emit(context.Background(),
		lifecycle.EventTypeStoreReady, "Store initialized", "state", m.store.State())
	m.logger.Info("Store module initialized")
	return nil
}

// ProvidesServices returns the store itself.
func (m *Module) ProvidesServices() []initorder.ServiceProvider {
	return []initorder.ServiceProvider{
		{
			Name:        ServiceName,
			Description: "Application state container",
			Instance:    m.store,
		},
	}
}

// Store returns the store created in Init.
func (m *Module) Store() *Store {
	return m.store
}
