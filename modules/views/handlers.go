package views

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/effects"
	"github.com/GoCodeAlone/initorder/modules/router"
	"github.com/GoCodeAlone/initorder/modules/store"
)

// maxActionBody bounds POST /actions/dispatch bodies.
const maxActionBody = 64 << 10

var (
	// ErrRouteNotActive is returned when acting on a route that is not current.
	ErrRouteNotActive = errors.New("route is not active")
	// ErrNotActionable is returned when the current view has no action.
	ErrNotActionable = errors.New("view has no action")
	// ErrHistoryDisabled is returned when no milestone store is available.
	ErrHistoryDisabled = errors.New("milestone history is not enabled")
)

// Handlers is the HTTP surface: state, milestones, user commands and
// navigation.
type Handlers struct {
	Store      *store.Store
	Router     *router.Router
	Registrar  *effects.Registrar
	Milestones *lifecycle.MemoryStore
	Phase      func() initorder.Phase
	Logger     initorder.Logger

	shell atomic.Pointer[Shell]
}

// SetShell makes GET /state report the state seen by shell.
func (h *Handlers) SetShell(shell *Shell) {
	h.shell.Store(shell)
}

// StateResponse is returned by GET /state and the action endpoints.
type StateResponse struct {
	Phase         string                     `json:"phase,omitempty"`
	Route         string                     `json:"route,omitempty"`
	State         store.AppState             `json:"state"`
	Registrations []effects.RegistrationInfo `json:"registrations"`
}

// NavResponse is returned by the navigation endpoints.
type NavResponse struct {
	Route         string `json:"route"`
	Path          string `json:"path"`
	View          string `json:"view"`
	Activation    string `json:"activation"`
	Phase         string `json:"phase"`
	Registrations int    `json:"registrations"`
	Model         any    `json:"model"`
}

// Mount registers every endpoint on r.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/state", h.getState)
	r.Get("/milestones", h.getMilestones)
	r.Route("/actions", func(r chi.Router) {
		r.Post("/load", h.postLoad)
		r.Post("/init", h.postInit)
		r.Post("/dispatch", h.postDispatch)
	})
	r.Route("/nav", func(r chi.Router) {
		r.Post("/back", h.postBack)
		r.Post("/{route}/action", h.postRouteAction)
		r.Get("/*", h.getNavigate)
	})
}

func (h *Handlers) stateResponse() StateResponse {
	resp := StateResponse{
		State:         h.Store.State(),
		Registrations: []effects.RegistrationInfo{},
	}
	if shell := h.shell.Load(); shell != nil {
		resp.State = shell.State()
	}
	if h.Phase != nil {
		resp.Phase = string(h.Phase())
	}
	if h.Router != nil {
		if act := h.Router.Current(); act != nil {
			resp.Route = act.Route().Path
		}
	}
	if h.Registrar != nil {
		resp.Registrations = h.Registrar.Active()
	}
	return resp
}

func (h *Handlers) getState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.stateResponse())
}

func (h *Handlers) getMilestones(w http.ResponseWriter, r *http.Request) {
	if h.Milestones == nil {
		writeError(w, http.StatusNotFound, ErrHistoryDisabled)
		return
	}

	q := r.URL.Query()
	criteria := &lifecycle.QueryCriteria{Sources: q["source"]}
	for _, t := range q["type"] {
		criteria.EventTypes = append(criteria.EventTypes, lifecycle.EventType(t))
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		criteria.Limit = n
	}

	events := h.Milestones.Query(criteria)
	if events == nil {
		events = []*lifecycle.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handlers) postLoad(w http.ResponseWriter, r *http.Request) {
	h.Store.Dispatch(r.Context(), store.LoadData{})
	writeJSON(w, http.StatusAccepted, h.stateResponse())
}

func (h *Handlers) postInit(w http.ResponseWriter, r *http.Request) {
	h.Store.Dispatch(r.Context(), store.InitApp{Timestamp: now()})
	writeJSON(w, http.StatusAccepted, h.stateResponse())
}

func (h *Handlers) postDispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxActionBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	action, err := DecodeAction(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.Store.Dispatch(r.Context(), action)
	writeJSON(w, http.StatusAccepted, h.stateResponse())
}

func (h *Handlers) getNavigate(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, "/"+chi.URLParam(r, "*"))
}

func (h *Handlers) postBack(w http.ResponseWriter, r *http.Request) {
	act, err := h.Router.Back(r.Context())
	h.respondActivation(w, act, err)
}

func (h *Handlers) navigate(w http.ResponseWriter, r *http.Request, path string) {
	act, err := h.Router.Navigate(r.Context(), path)
	h.respondActivation(w, act, err)
}

func (h *Handlers) respondActivation(w http.ResponseWriter, act *router.Activation, err error) {
	switch {
	case errors.Is(err, router.ErrRouteNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		h.Logger.Error("Navigation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	view := act.View()
	writeJSON(w, http.StatusOK, NavResponse{
		Route:         act.Route().Path,
		Path:          act.Path(),
		View:          view.Name(),
		Activation:    act.ID(),
		Phase:         string(act.Phase()),
		Registrations: len(act.Registrations()),
		Model:         view.Render(),
	})
}

func (h *Handlers) postRouteAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "route")
	act := h.Router.Current()
	if act == nil || act.Route().Name != name {
		writeError(w, http.StatusConflict, ErrRouteNotActive)
		return
	}
	view, ok := act.View().(Actionable)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrNotActionable)
		return
	}

	action := view.TriggerAction(r.Context())
	writeJSON(w, http.StatusAccepted, map[string]any{
		"action":  action.Type(),
		"payload": store.PayloadOf(action),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
