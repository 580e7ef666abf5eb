package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type holdCmd struct{ Day string }

func (holdCmd) Key() string { return "test.hold" }

type otherCmd struct{}

func (otherCmd) Key() string { return "test.other" }

func TestDispatchRoutesByKey(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[holdCmd, string](bus, HandlerFunc[holdCmd, string](func(_ context.Context, cmd holdCmd) (string, error) {
		return "held " + cmd.Day, nil
	}))

	res, err := Dispatch[holdCmd, string](context.Background(), bus, holdCmd{Day: "2026-03-12"})
	require.NoError(t, err)
	assert.Equal(t, "held 2026-03-12", res)
	assert.Equal(t, []string{"test.hold"}, bus.Keys())

	_, err = Dispatch[otherCmd, string](context.Background(), bus, otherCmd{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	_, err = Dispatch[holdCmd, int](context.Background(), bus, holdCmd{})
	assert.ErrorIs(t, err, ErrResultType)
	assert.Contains(t, err.Error(), "test.hold returned string, want int")

	_, err = Dispatch[holdCmd, string](context.Background(), nil, holdCmd{})
	assert.ErrorIs(t, err, ErrNilBus)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	bus := NewInMemoryBus()
	handler := HandlerFunc[holdCmd, string](func(context.Context, holdCmd) (string, error) { return "", nil })
	RegisterHandler[holdCmd, string](bus, handler)
	assert.Panics(t, func() { RegisterHandler[holdCmd, string](bus, handler) })
}
