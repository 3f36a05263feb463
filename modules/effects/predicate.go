package effects

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/GoCodeAlone/initorder/modules/store"
)

// OfType matches actions whose type is one of types.
func OfType(types ...string) store.Predicate {
	return func(a store.Action) bool {
		for _, t := range types {
			if a.Type() == t {
				return true
			}
		}
		return false
	}
}

// TypeContains matches actions whose type contains substr.
func TypeContains(substr string) store.Predicate {
	return func(a store.Action) bool {
		return strings.Contains(a.Type(), substr)
	}
}

// Any matches when at least one of preds does.
func Any(preds ...store.Predicate) store.Predicate {
	return func(a store.Action) bool {
		for _, p := range preds {
			if p != nil && p(a) {
				return true
			}
		}
		return false
	}
}

// Expr compiles an expression evaluated against each action. The
// environment exposes the action type as `action` and its payload as
// `payload`, for example:
//
//	action contains "User" && payload != nil
//
// An expression that fails at runtime or does not produce a bool does not
// match.
func Expr(expression string) (store.Predicate, error) {
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling predicate %q: %w", expression, err)
	}
	return exprPredicate(program), nil
}

// MustExpr is Expr for expressions known at compile time.
func MustExpr(expression string) store.Predicate {
	p, err := Expr(expression)
	if err != nil {
		panic(err)
	}
	return p
}

func exprPredicate(program *vm.Program) store.Predicate {
	return func(a store.Action) bool {
		env := map[string]any{
			"action":  a.Type(),
			"payload": store.PayloadOf(a),
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return false
		}
		matched, ok := result.(bool)
		return ok && matched
	}
}
