package store

// Action is a tagged transition. Type identifies the variant.
type Action interface {
	Type() string
}

const (
	TypeInitApp           = "[App] Init"
	TypeLoadData          = "[App] Load Data"
	TypeLoadDataSuccess   = "[App] Load Data Success"
	TypeEffectInitialized = "[Effect] Initialized"

	TypeUserPageLoaded             = "[User Page] Loaded"
	TypeUserPageActionTriggered    = "[User Page] Action Triggered"
	TypeProductPageLoaded          = "[Product Page] Loaded"
	TypeProductPageActionTriggered = "[Product Page] Action Triggered"
)

// InitApp marks the application initialized. Timestamp is RFC 3339.
type InitApp struct {
	Timestamp string `json:"timestamp"`
}

func (InitApp) Type() string { return TypeInitApp }

// LoadData requests a data load.
type LoadData struct{}

func (LoadData) Type() string { return TypeLoadData }

// LoadDataSuccess carries the loaded data.
type LoadDataSuccess struct {
	Data string `json:"data"`
}

func (LoadDataSuccess) Type() string { return TypeLoadDataSuccess }

// EffectInitialized is dispatched once by every effects instance when it is
// registered.
type EffectInitialized struct {
	EffectName string `json:"effectName"`
	Timestamp  string `json:"timestamp"`
}

func (EffectInitialized) Type() string { return TypeEffectInitialized }

// Generic is a free-form action. It never changes AppState; only effects
// observe it.
type Generic struct {
	Kind    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

func (g Generic) Type() string { return g.Kind }

// PayloadOf returns the action's payload in a form suitable for logging and
// predicate evaluation: a map of the variant's fields, or the free-form
// payload for Generic actions.
func PayloadOf(a Action) any {
	switch v := a.(type) {
	case InitApp:
		return map[string]any{"timestamp": v.Timestamp}
	case LoadDataSuccess:
		return map[string]any{"data": v.Data}
	case EffectInitialized:
		return map[string]any{"effectName": v.EffectName, "timestamp": v.Timestamp}
	case Generic:
		return v.Payload
	default:
		return nil
	}
}
