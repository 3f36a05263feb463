package effects

import (
	"context"
	"time"

	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/store"
)

// AppEffectsName is the name of the root effects.
const AppEffectsName = "AppEffects"

// AppEffects answers LoadData with LoadDataSuccess after a delay and logs
// InitApp.
type AppEffects struct {
	deps  Deps
	delay time.Duration
}

// NewAppEffectsFactory returns the factory for AppEffects. delay is how
// long LoadData takes to produce LoadDataSuccess.
func NewAppEffectsFactory(delay time.Duration) Factory {
	return Factory{
		Name: AppEffectsName,
		New: func(deps Deps) (Effects, error) {
			return &AppEffects{deps: deps, delay: delay}, nil
		},
	}
}

// Name implements Effects.
func (e *AppEffects) Name() string { return AppEffectsName }

// Rules implements Effects.
func (e *AppEffects) Rules() []Rule {
	return []Rule{
		{
			Name:  "loadData$",
			Match: OfType(store.TypeLoadData),
			Delay: e.delay,
			Run:   e.loadData,
		},
		{
			Name:  "initApp$",
			Match: OfType(store.TypeInitApp),
			Run:   e.initApp,
		},
	}
}

// OnInit implements OnInitEffects.
func (e *AppEffects) OnInit() store.Action {
	return initialized(AppEffectsName)
}

func (e *AppEffects) loadData(ctx context.Context, _ store.Action) (store.Action, bool) {
	cfg, _ := e.deps.Config.GetConfig()
	e.deps.Milestone.Emit(ctx, lifecycle.EventTypeEffectLog, "Load data effect triggered", "apiUrl", cfg.APIURL)
	return store.LoadDataSuccess{Data: "Data loaded from " + cfg.APIURL}, true
}

func (e *AppEffects) initApp(ctx context.Context, action store.Action) (store.Action, bool) {
	initApp, _ := action.(store.InitApp)
	e.deps.Milestone.Emit(ctx, lifecycle.EventTypeEffectLog, "App initialized at "+initApp.Timestamp,
		"timestamp", initApp.Timestamp)
	return nil, false
}
