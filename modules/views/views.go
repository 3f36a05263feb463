package views

import (
	"context"
	"time"

	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/router"
	"github.com/GoCodeAlone/initorder/modules/store"
)

// Actionable views dispatch an action on user request.
type Actionable interface {
	TriggerAction(ctx context.Context) store.Action
}

// ConfigModel is the configuration as views render it.
type ConfigModel struct {
	Loaded      bool   `json:"loaded"`
	APIURL      string `json:"apiUrl,omitempty"`
	Environment string `json:"environment,omitempty"`
	LoadedAt    string `json:"loadedAt,omitempty"`
}

func configModel(deps router.ViewDeps) ConfigModel {
	cfg, ok := deps.Config.GetConfig()
	if !ok {
		return ConfigModel{}
	}
	return ConfigModel{
		Loaded:      true,
		APIURL:      cfg.APIURL,
		Environment: cfg.Environment,
		LoadedAt:    cfg.LoadedAt.Format(time.RFC3339Nano),
	}
}

func constructed(deps router.ViewDeps, name string) {
	_, visible := deps.Config.GetConfig()
	deps.Milestone.Emit(context.Background(), lifecycle.EventTypeComponentConstructed,
		"CONSTRUCTOR - "+name+" instantiated", "configVisible", visible)
}

// HomeView shows the state and the configuration.
type HomeView struct {
	deps router.ViewDeps
}

// NewHomeView is the view factory for the home route.
func NewHomeView(deps router.ViewDeps) router.View {
	constructed(deps, "HomeView")
	return &HomeView{deps: deps}
}

// Name implements router.View.
func (v *HomeView) Name() string { return "HomeView" }

// OnInit implements router.View.
func (v *HomeView) OnInit(ctx context.Context) {
	v.deps.Milestone.Emit(ctx, lifecycle.EventTypeComponentInitialized, "OnInit - HomeView",
		"state", v.deps.Store.State())
}

// Render implements router.View.
func (v *HomeView) Render() any {
	return map[string]any{
		"title":  "Home",
		"state":  v.deps.Store.State(),
		"config": configModel(v.deps),
	}
}

// PageView is a route page that announces itself with a "Loaded" action
// and dispatches an "Action Triggered" action on request.
type PageView struct {
	deps       router.ViewDeps
	name       string
	title      string
	loadedType string
	actionType string
}

// NewUserView is the view factory for the user route.
func NewUserView(deps router.ViewDeps) router.View {
	constructed(deps, "UserView")
	return &PageView{
		deps:       deps,
		name:       "UserView",
		title:      "User",
		loadedType: store.TypeUserPageLoaded,
		actionType: store.TypeUserPageActionTriggered,
	}
}

// NewProductView is the view factory for the product route.
func NewProductView(deps router.ViewDeps) router.View {
	constructed(deps, "ProductView")
	return &PageView{
		deps:       deps,
		name:       "ProductView",
		title:      "Product",
		loadedType: store.TypeProductPageLoaded,
		actionType: store.TypeProductPageActionTriggered,
	}
}

// Name implements router.View.
func (v *PageView) Name() string { return v.name }

// OnInit implements router.View. It dispatches the page's Loaded action
// with a millisecond timestamp payload.
func (v *PageView) OnInit(ctx context.Context) {
	v.deps.Milestone.Emit(ctx, lifecycle.EventTypeComponentInitialized, "OnInit - "+v.name)
	v.deps.Store.Dispatch(ctx, store.Generic{Kind: v.loadedType, Payload: time.Now().UnixMilli()})
}

// TriggerAction implements Actionable.
func (v *PageView) TriggerAction(ctx context.Context) store.Action {
	action := store.Generic{Kind: v.actionType, Payload: time.Now().UnixMilli()}
	v.deps.Milestone.Emit(ctx, lifecycle.EventTypeComponentAction, "Dispatching "+action.Kind)
	v.deps.Store.Dispatch(ctx, action)
	return action
}

// Render implements router.View.
func (v *PageView) Render() any {
	return map[string]any{
		"title":  v.title,
		"config": configModel(v.deps),
	}
}
