package blacklist

import (
	"context"
	"log/slog"
	"time"
)

// Backend is a key-existence store with per-entry TTL. The redis backend is
// shared across nodes; the memory backend is process-local.
type Backend interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
	Remove(ctx context.Context, token string) error
}

// Store answers "was this exact token invalidated before its natural
// expiry?". It fronts a shared backend with a process-local fallback: when
// the shared backend is unreachable, revocations still take effect on this
// node. Entries blacklisted on other nodes during a partition are invisible
// here until the shared backend recovers; that consistency gap is accepted
// in exchange for availability.
type Store struct {
	Primary    Backend
	Local      *Memory
	PeekExpiry func(token string) (time.Time, error)
	DefaultTTL time.Duration
	Buffer     time.Duration
	Timeout    time.Duration
	Log        *slog.Logger

	// Now is overridable in tests; zero value means time.Now.
	Now func() time.Time
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Store) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// TTLFor derives an entry lifetime from the token's own expiry claim plus a
// small buffer, falling back to the default window when the expiry cannot
// be read or is already past.
func (s *Store) TTLFor(token string) time.Duration {
	if s.PeekExpiry != nil {
		if exp, err := s.PeekExpiry(token); err == nil {
			if remaining := exp.Sub(s.now()); remaining > 0 {
				return remaining + s.Buffer
			}
		}
	}
	return s.DefaultTTL
}

// Add blacklists a token. Backend failure is absorbed: the entry lands in
// the local fallback instead and the caller never sees an error.
func (s *Store) Add(ctx context.Context, token string) {
	ttl := s.TTLFor(token)
	cctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := s.Primary.Add(cctx, token, ttl); err != nil {
		s.log().Warn("blacklist_degraded", "op", "add", "error", err)
		_ = s.Local.Add(ctx, token, ttl)
	}
}

// IsBlacklisted checks the local fallback first (no I/O), then the shared
// backend under a timeout. A backend failure is treated as "consult the
// fallback", never as an automatic pass and never as a caller-visible error.
func (s *Store) IsBlacklisted(ctx context.Context, token string) bool {
	if found, _ := s.Local.Contains(ctx, token); found {
		return true
	}
	cctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	found, err := s.Primary.Contains(cctx, token)
	if err != nil {
		s.log().Warn("blacklist_degraded", "op", "check", "error", err)
		return false
	}
	return found
}

// Remove un-blacklists a token in both stores. Administrative use only.
func (s *Store) Remove(ctx context.Context, token string) {
	_ = s.Local.Remove(ctx, token)
	cctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := s.Primary.Remove(cctx, token); err != nil {
		s.log().Warn("blacklist_degraded", "op", "remove", "error", err)
	}
}
