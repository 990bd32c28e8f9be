package service

import (
	"testing"
	"time"

	d "github.com/bakehouse/storefront/internal/checkout/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *AttemptStore {
	store := NewAttemptStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAttemptStore_StartAndGet(t *testing.T) {
	store := setupStore(t)

	require.NoError(t, store.Start(d.NewAttempt("ORD-1", "sess-1", d.PaymentMethodCOP)))

	got, err := store.Get("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, d.StateIdle, got.State)

	_, err = store.Get("ORD-404")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestAttemptStore_OneUnfinishedAttemptPerSession(t *testing.T) {
	store := setupStore(t)

	require.NoError(t, store.Start(d.NewAttempt("ORD-1", "sess-1", d.PaymentMethodCOP)))
	assert.ErrorIs(t, store.Start(d.NewAttempt("ORD-2", "sess-1", d.PaymentMethodCOP)), ErrSubmissionInFlight)
	assert.NoError(t, store.Start(d.NewAttempt("ORD-3", "sess-2", d.PaymentMethodCOP)))

	_, err := store.Apply("ORD-1", func(a *d.Attempt) error {
		a.State = d.StateCancelled
		return nil
	})
	require.NoError(t, err)

	assert.NoError(t, store.Start(d.NewAttempt("ORD-2", "sess-1", d.PaymentMethodCOP)))
}

func TestAttemptStore_ApplyReturnsCopy(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.Start(d.NewAttempt("ORD-1", "sess-1", d.PaymentMethodCOP)))

	got, err := store.Apply("ORD-1", func(a *d.Attempt) error {
		return a.Transition(d.StateAwaitingSubmission)
	})
	require.NoError(t, err)
	got.State = d.StateFailed

	stored, err := store.Get("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, d.StateAwaitingSubmission, stored.State)

	_, err = store.Apply("ORD-1", func(a *d.Attempt) error {
		return a.Transition(d.StateCompleted)
	})
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = store.Apply("ORD-404", func(*d.Attempt) error { return nil })
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestAttemptStore_ExpireDropsOnlyOldFinishedAttempts(t *testing.T) {
	store := setupStore(t)

	require.NoError(t, store.Start(d.NewAttempt("ORD-done", "sess-1", d.PaymentMethodCOP)))
	_, err := store.Apply("ORD-done", func(a *d.Attempt) error {
		a.State = d.StateCompleted
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, store.Start(d.NewAttempt("ORD-open", "sess-2", d.PaymentMethodGateway)))

	store.expire(time.Now())
	_, err = store.Get("ORD-done")
	assert.NoError(t, err, "recent attempts are kept")

	store.expire(time.Now().Add(2 * time.Hour))
	_, err = store.Get("ORD-done")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
	_, err = store.Get("ORD-open")
	assert.NoError(t, err, "unfinished attempts are never swept")
}
