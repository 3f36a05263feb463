package effects

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/store"
)

const (
	// UserEffectsName is the name of the user route effects.
	UserEffectsName = "UserEffects"
	// UsersPath is requested, relative to the API base URL, when the user
	// page loads.
	UsersPath = "/api/users"
)

// UserEffects logs user actions and requests the user list when the user
// page loads. The request is expected to fail without a backend; the
// failure is recorded and discarded.
type UserEffects struct {
	deps       Deps
	userAction store.Predicate
}

// NewUserEffectsFactory returns the factory for UserEffects.
func NewUserEffectsFactory() Factory {
	return Factory{
		Name: UserEffectsName,
		New: func(deps Deps) (Effects, error) {
			pred, err := Expr(`action contains "User"`)
			if err != nil {
				return nil, err
			}
			return &UserEffects{deps: deps, userAction: pred}, nil
		},
	}
}

// Name implements Effects.
func (e *UserEffects) Name() string { return UserEffectsName }

// Rules implements Effects.
func (e *UserEffects) Rules() []Rule {
	return []Rule{
		{
			Name:  "logUserActions$",
			Match: e.userAction,
			Run: func(ctx context.Context, action store.Action) (store.Action, bool) {
				e.deps.Milestone.Emit(ctx, lifecycle.EventTypeEffectLog, "User action: "+action.Type(),
					"action", action.Type(), "payload", store.PayloadOf(action))
				return nil, false
			},
		},
		{
			Name:  "loadUsers$",
			Match: OfType(store.TypeUserPageLoaded),
			Async: true,
			Run:   e.loadUsers,
		},
	}
}

// OnInit implements OnInitEffects.
func (e *UserEffects) OnInit() store.Action {
	return initialized(UserEffectsName)
}

func (e *UserEffects) loadUsers(ctx context.Context, _ store.Action) (store.Action, bool) {
	if e.deps.Client == nil {
		return nil, false
	}
	if err := e.fetchUsers(ctx); err != nil {
		e.deps.Milestone.EmitStatus(ctx, lifecycle.EventTypeEffectLog, lifecycle.EventStatusFailed,
			"Example HTTP call failed (expected)", "path", UsersPath, "error", err.Error())
		e.deps.Logger.Debug("Example request failed", "path", UsersPath, "error", err)
	}
	return nil, false
}

func (e *UserEffects) fetchUsers(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, UsersPath, nil)
	if err != nil {
		return err
	}
	resp, err := e.deps.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	e.deps.Milestone.EmitStatus(ctx, lifecycle.EventTypeEffectLog, lifecycle.EventStatusCompleted,
		"Users loaded", "path", UsersPath, "status", resp.StatusCode)
	return nil
}
