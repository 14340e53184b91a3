package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quickbite/food_delivery/internal/models"
)

func (r *GormRepo) CreateSession(ctx context.Context, s *models.RefreshSession) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

// LiveSessionByHash returns the session only if it is neither revoked nor
// expired. The predicates run in a single statement so a concurrent revoke
// that committed first is always observed.
func (r *GormRepo) LiveSessionByHash(ctx context.Context, tokenHash string, now time.Time) (*models.RefreshSession, error) {
	var s models.RefreshSession
	err := r.DB.WithContext(ctx).
		Where("token_hash = ? AND revoked = ? AND expires_at > ?", tokenHash, false, now).
		First(&s).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// RevokeSessionByHash marks one session revoked. Unknown or already-revoked
// hashes are not errors.
func (r *GormRepo) RevokeSessionByHash(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshSession{}).
		Where("token_hash = ? AND revoked = ?", tokenHash, false).
		Update("revoked", true).Error
}

// RevokeAllSessions revokes every active session of an account in one
// statement ("sign out everywhere", forced logout on deactivation).
func (r *GormRepo) RevokeAllSessions(ctx context.Context, accountID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshSession{}).
		Where("account_id = ? AND revoked = ?", accountID, false).
		Update("revoked", true).Error
}
