package store

import "slices"

// AppState is the application state. Values are replaced, never mutated:
// Reduce always returns a fresh value and never touches the slice it was
// given.
type AppState struct {
	Initialized        bool     `json:"initialized"`
	Data               *string  `json:"data"`
	EffectsInitialized []string `json:"effectsInitialized"`
}

// InitialState returns the default-valued state.
func InitialState() AppState {
	return AppState{EffectsInitialized: []string{}}
}

// Reduce applies action to state. Unhandled kinds return state unchanged.
func Reduce(state AppState, action Action) AppState {
	next, _ := reduce(state, action)
	return next
}

func reduce(state AppState, action Action) (AppState, bool) {
	switch a := action.(type) {
	case InitApp:
		state.Initialized = true
		return state, true
	case LoadDataSuccess:
		data := a.Data
		state.Data = &data
		return state, true
	case EffectInitialized:
		effects := make([]string, len(state.EffectsInitialized), len(state.EffectsInitialized)+1)
		copy(effects, state.EffectsInitialized)
		state.EffectsInitialized = append(effects, a.EffectName)
		return state, true
	default:
		return state, false
	}
}

// Clone returns a deep copy of s.
func (s AppState) Clone() AppState {
	out := s
	if s.Data != nil {
		d := *s.Data
		out.Data = &d
	}
	out.EffectsInitialized = slices.Clone(s.EffectsInitialized)
	if out.EffectsInitialized == nil {
		out.EffectsInitialized = []string{}
	}
	return out
}
