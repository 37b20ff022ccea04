package cryptox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(2)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "gate-password")
	require.NoError(t, err)

	require.NoError(t, h.Verify(ctx, "gate-password", hash))
	require.ErrorIs(t, h.Verify(ctx, "wrong", hash), ErrPasswordMismatch)
}

func TestHasher_DefaultLimit(t *testing.T) {
	h := NewHasher(0)
	require.NotZero(t, cap(h.gate), "limit <= 0 should fall back to GOMAXPROCS")
}

func TestHasher_CancelledContext(t *testing.T) {
	// Fill the single gate slot so the next caller has to wait, then cancel.
	h := NewHasher(1)
	h.gate <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "blocked")
	require.ErrorIs(t, err, context.Canceled)

	require.ErrorIs(t, h.Verify(ctx, "blocked", "$argon2id$..."), context.Canceled)
}
