package effects

import (
	"context"

	"github.com/GoCodeAlone/initorder/lifecycle"
	"github.com/GoCodeAlone/initorder/modules/store"
)

// ProductEffectsName is the name of the product route effects.
const ProductEffectsName = "ProductEffects"

// ProductEffects logs product actions.
type ProductEffects struct {
	deps Deps
}

// NewProductEffectsFactory returns the factory for ProductEffects.
func NewProductEffectsFactory() Factory {
	return Factory{
		Name: ProductEffectsName,
		New: func(deps Deps) (Effects, error) {
			return &ProductEffects{deps: deps}, nil
		},
	}
}

// Name implements Effects.
func (e *ProductEffects) Name() string { return ProductEffectsName }

// Rules implements Effects.
func (e *ProductEffects) Rules() []Rule {
	return []Rule{{
		Name:  "logProductActions$",
		Match: TypeContains("Product"),
		Run: func(ctx context.Context, action store.Action) (store.Action, bool) {
			e.deps.Milestone.Emit(ctx, lifecycle.EventTypeEffectLog, "Product action: "+action.Type(),
				"action", action.Type(), "payload", store.PayloadOf(action))
			return nil, false
		},
	}}
}

// OnInit implements OnInitEffects.
func (e *ProductEffects) OnInit() store.Action {
	return initialized(ProductEffectsName)
}
