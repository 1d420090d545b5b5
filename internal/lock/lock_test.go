package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerExclusive(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	first, err := l.Obtain(ctx, "negotiation:session:a", time.Minute)
	require.NoError(t, err)

	_, err = l.Obtain(ctx, "negotiation:session:a", time.Minute)
	assert.ErrorIs(t, err, ErrNotObtained)

	other, err := l.Obtain(ctx, "negotiation:session:b", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, first.Release(ctx))
	again, err := l.Obtain(ctx, "negotiation:session:a", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestLocalLockerExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.now = func() time.Time { return now }

	stale, err := l.Obtain(ctx, "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := l.Obtain(ctx, "k", time.Second)
	require.NoError(t, err)

	// releasing the stale holder must not free the new holder's lock
	require.NoError(t, stale.Release(ctx))
	_, err = l.Obtain(ctx, "k", time.Second)
	assert.ErrorIs(t, err, ErrNotObtained)

	require.NoError(t, fresh.Release(ctx))
}
