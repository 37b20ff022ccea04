package cryptox

import (
	"context"
	"runtime"
)

// Hasher serializes access to the Argon2id key-derivation functions through a
// bounded concurrency gate. Argon2 is deliberately CPU- and memory-expensive,
// so an unbounded burst of logins would otherwise pin every scheduler thread
// on hashing work and starve request handling.
type Hasher struct {
	gate chan struct{}
}

// NewHasher returns a Hasher that allows at most limit concurrent
// derivations. A limit <= 0 defaults to GOMAXPROCS.
func NewHasher(limit int) *Hasher {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &Hasher{gate: make(chan struct{}, limit)}
}

// Hash derives a PHC-encoded Argon2id hash for password, waiting for a gate
// slot first. The wait honours ctx cancellation; the derivation itself does
// not, since argon2 has no interruption points.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()
	return HashPassword(password)
}

// Verify checks password against a PHC-encoded hash under the same gate.
// It returns ErrPasswordMismatch on a clean mismatch.
func (h *Hasher) Verify(ctx context.Context, password, encodedHash string) error {
	if err := h.acquire(ctx); err != nil {
		return err
	}
	defer h.release()
	return VerifyPassword(password, encodedHash)
}

func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case h.gate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hasher) release() { <-h.gate }
