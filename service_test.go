package initorder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter interface {
	Greet() string
}

type englishGreeter struct{ name string }

func (g *englishGreeter) Greet() string { return "hello " + g.name }

func TestServiceRegistry_RegisterAndGet(t *testing.T) {
	app := NewStdApplication(nil, nil)
	svc := &englishGreeter{name: "world"}
	require.NoError(t, app.RegisterService("greeter", svc))

	t.Run("interface target", func(t *testing.T) {
		var g greeter
		require.NoError(t, app.GetService("greeter", &g))
		assert.Equal(t, "hello world", g.Greet())
	})

	t.Run("pointer target", func(t *testing.T) {
		var g *englishGreeter
		require.NoError(t, app.GetService("greeter", &g))
		assert.Same(t, svc, g)
	})

	t.Run("value target dereferences", func(t *testing.T) {
		var g englishGreeter
		require.NoError(t, app.GetService("greeter", &g))
		assert.Equal(t, "world", g.name)
	})

	t.Run("incompatible target", func(t *testing.T) {
		var s fmt.Stringer
		assert.ErrorIs(t, app.GetService("greeter", &s), ErrServiceIncompatible)
	})

	t.Run("non-pointer target", func(t *testing.T) {
		var g greeter
		assert.ErrorIs(t, app.GetService("greeter", g), ErrTargetNotPointer)
	})
}

func TestServiceRegistry_Errors(t *testing.T) {
	app := NewStdApplication(nil, nil)
	require.NoError(t, app.RegisterService("svc", 1))
	assert.ErrorIs(t, app.RegisterService("svc", 2), ErrServiceAlreadyRegistered)

	var n int
	assert.ErrorIs(t, app.GetService("missing", &n), ErrServiceNotFound)

	require.NoError(t, app.RegisterService("nil", nil))
	assert.ErrorIs(t, app.GetService("nil", &n), ErrServiceNil)
}
