package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nightsQuery struct{ Start, End int }

func (nightsQuery) Key() string { return "test.nights" }

func TestAskReturnsTypedResult(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[nightsQuery, int](bus, HandlerFunc[nightsQuery, int](func(_ context.Context, q nightsQuery) (int, error) {
		if q.End < q.Start {
			return 0, errors.New("inverted")
		}
		return q.End - q.Start, nil
	}))

	n, err := Ask[nightsQuery, int](context.Background(), bus, nightsQuery{Start: 10, End: 14})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = Ask[nightsQuery, int](context.Background(), bus, nightsQuery{Start: 14, End: 10})
	assert.EqualError(t, err, "inverted")

	_, err = Ask[nightsQuery, string](context.Background(), bus, nightsQuery{})
	assert.ErrorIs(t, err, ErrResultType)

	_, err = Ask[nightsQuery, int](context.Background(), NewInMemoryBus(), nightsQuery{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}
