package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/quickbite/food_delivery/internal/hash"
	"github.com/quickbite/food_delivery/internal/models"
	"github.com/quickbite/food_delivery/internal/repo"
)

// ErrInvalidRefreshToken covers every failure shape: unknown, expired,
// revoked and garbage input all look the same to the caller, so a probe
// cannot learn whether a token ever existed.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

const rawTokenBytes = 48

// Metadata is advisory client context recorded with a session.
type Metadata struct {
	UserAgent string
	IP        string
}

// Manager issues and redeems opaque refresh tokens. Tokens are random hex
// with no embedded claims; the database row, keyed by the token's SHA-256,
// is the only source of truth.
type Manager struct {
	Repo *repo.GormRepo
	TTL  time.Duration

	// Now is overridable in tests; zero value means time.Now.
	Now func() time.Time
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// Issue creates a session and returns the raw token with its absolute
// expiry. The raw value is never stored.
func (m *Manager) Issue(ctx context.Context, accountID uuid.UUID, meta Metadata) (string, time.Time, error) {
	raw, err := hash.RandomHex(rawTokenBytes)
	if err != nil {
		return "", time.Time{}, err
	}
	exp := m.now().Add(m.TTL)
	s := &models.RefreshSession{
		TokenHash: hash.Sha256Hex(raw),
		AccountID: accountID,
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
		ExpiresAt: exp,
	}
	if err := m.Repo.CreateSession(ctx, s); err != nil {
		return "", time.Time{}, err
	}
	return raw, exp, nil
}

// Redeem resolves a live session to its account. The revoked/expiry checks
// run inside the lookup itself, so a revoke that already committed can never
// be redeemed.
func (m *Manager) Redeem(ctx context.Context, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	s, err := m.Repo.LiveSessionByHash(ctx, hash.Sha256Hex(raw), m.now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return uuid.Nil, ErrInvalidRefreshToken
		}
		return uuid.Nil, err
	}
	return s.AccountID, nil
}

// Revoke marks one session revoked. Idempotent; unknown tokens are ignored.
func (m *Manager) Revoke(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return m.Repo.RevokeSessionByHash(ctx, hash.Sha256Hex(raw))
}

// RevokeAll revokes every active session of the account.
func (m *Manager) RevokeAll(ctx context.Context, accountID uuid.UUID) error {
	return m.Repo.RevokeAllSessions(ctx, accountID)
}
