// Package effects runs effect registrations: components that react to
// applied actions by producing further actions. A registration can only be
// created after the application's ready barrier has fired, which is what
// guarantees every effect sees a loaded configuration.
package effects

import (
	"context"
	"net/http"
	"time"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/configloader"
	"github.com/GoCodeAlone/initorder/modules/store"
)

// Effects is a set of rules registered together and disposed together.
type Effects interface {
	Name() string
	Rules() []Rule
}

// OnInitEffects is implemented by effects that dispatch an action once,
// right after their rules are subscribed.
type OnInitEffects interface {
	OnInit() store.Action
}

// Rule reacts to matching actions. Run returns the action to dispatch and
// true, or false to dispatch nothing.
//
// With Delay set, Run is called that long after the match. With Async set,
// Run is called on its own goroutine. Otherwise Run is called synchronously
// while the store delivers the action. Delayed and async runs receive the
// registration's context, which is cancelled by Dispose.
type Rule struct {
	Name  string
	Match store.Predicate
	Delay time.Duration
	Async bool
	Run   func(ctx context.Context, action store.Action) (store.Action, bool)
}

// Deps is what an effects constructor receives.
type Deps struct {
	Store     *store.Store
	Config    configloader.Provider
	Client    *http.Client
	Logger    initorder.Logger
	Milestone *lifecycle.Emitter
}

// Factory constructs one kind of effects. Name doubles as the milestone
// source for everything the effects record.
type Factory struct {
	Name string
	New  func(deps Deps) (Effects, error)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// initialized builds the action every effects instance dispatches on init.
func initialized(name string) store.Action {
	return store.EffectInitialized{EffectName: name, Timestamp: timestamp()}
}
