package views

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/GoCodeAlone/initorder/modules/store"
)

var (
	// ErrMalformedAction is returned for a request body that is not JSON.
	ErrMalformedAction = errors.New("action body is not valid JSON")
	// ErrMissingActionType is returned when the body has no string "type".
	ErrMissingActionType = errors.New("action type is required")
	// ErrMissingEffectName is returned for an effect action without effectName.
	ErrMissingEffectName = errors.New("payload.effectName is required")
)

// DecodeAction turns a free-form JSON body of the shape
//
//	{"type": "[App] Load Data Success", "payload": {"data": "x"}}
//
// into an action. Known types become their typed variant; anything else
// becomes a Generic action carrying the raw payload.
func DecodeAction(body []byte) (store.Action, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedAction
	}

	kind := gjson.GetBytes(body, "type")
	if kind.Type != gjson.String || kind.String() == "" {
		return nil, ErrMissingActionType
	}
	payload := gjson.GetBytes(body, "payload")

	switch kind.String() {
	case store.TypeInitApp:
		return store.InitApp{Timestamp: stringOr(payload.Get("timestamp"), now())}, nil
	case store.TypeLoadData:
		return store.LoadData{}, nil
	case store.TypeLoadDataSuccess:
		return store.LoadDataSuccess{Data: payload.Get("data").String()}, nil
	case store.TypeEffectInitialized:
		name := payload.Get("effectName").String()
		if name == "" {
			return nil, fmt.Errorf("%s: %w", kind.String(), ErrMissingEffectName)
		}
		return store.EffectInitialized{EffectName: name, Timestamp: stringOr(payload.Get("timestamp"), now())}, nil
	default:
		var value any
		if payload.Exists() {
			value = payload.Value()
		}
		return store.Generic{Kind: kind.String(), Payload: value}, nil
	}
}

func stringOr(r gjson.Result, fallback string) string {
	if s := r.String(); s != "" {
		return s
	}
	return fallback
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
