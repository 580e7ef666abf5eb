package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripdesk/internal/app/middleware"
)

func TestIdempotencyStoreMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(db, time.Hour)

	mock.ExpectGet(keyPrefix + "booking.request:u1:k1").RedisNil()

	_, found, err := store.Get(context.Background(), "booking.request:u1:k1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStoreSaveAndGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(db, 2*time.Hour)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := middleware.IdempotencyRecord{Key: "k", Payload: []byte(`{"booking_id":"b1"}`), OccurredAt: at}

	data, err := json.Marshal(entry{Payload: rec.Payload, OccurredAt: at})
	require.NoError(t, err)
	mock.ExpectSet(keyPrefix+"k", data, 2*time.Hour).SetVal("OK")
	mock.ExpectGet(keyPrefix + "k").SetVal(string(data))

	require.NoError(t, store.Save(context.Background(), rec))
	got, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, rec.Payload, got.Payload)
	assert.True(t, at.Equal(got.OccurredAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStorePropagatesErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(db, time.Hour)

	mock.ExpectGet(keyPrefix + "k").SetErr(errors.New("connection refused"))

	_, _, err := store.Get(context.Background(), "k")
	assert.EqualError(t, err, "connection refused")
}
