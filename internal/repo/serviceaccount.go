package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quickbite/food_delivery/internal/models"
)

func (r *GormRepo) CreateServiceAccount(ctx context.Context, sa *models.ServiceAccount) error {
	if sa.ID == uuid.Nil {
		sa.ID = uuid.New()
	}
	tx := r.DB.WithContext(ctx).Where("name = ?", sa.Name).FirstOrCreate(sa)
	if tx.Error != nil {
		return conflict(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *GormRepo) ServiceAccountByClientID(ctx context.Context, clientID string) (*models.ServiceAccount, error) {
	var sa models.ServiceAccount
	if err := r.DB.WithContext(ctx).Where("client_id = ?", clientID).First(&sa).Error; err != nil {
		return nil, notFound(err)
	}
	return &sa, nil
}

func (r *GormRepo) ServiceAccountByID(ctx context.Context, id uuid.UUID) (*models.ServiceAccount, error) {
	var sa models.ServiceAccount
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&sa).Error; err != nil {
		return nil, notFound(err)
	}
	return &sa, nil
}

func (r *GormRepo) ListServiceAccounts(ctx context.Context) ([]models.ServiceAccount, error) {
	var out []models.ServiceAccount
	if err := r.DB.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateServiceSecret replaces the stored hash, invalidating the previous
// secret immediately.
func (r *GormRepo) UpdateServiceSecret(ctx context.Context, id uuid.UUID, secretHash string) error {
	return r.DB.WithContext(ctx).Model(&models.ServiceAccount{}).
		Where("id = ?", id).
		Update("secret_hash", secretHash).Error
}

func (r *GormRepo) TouchServiceLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.ServiceAccount{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

func (r *GormRepo) SetServiceAccountActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.DB.WithContext(ctx).Model(&models.ServiceAccount{}).
		Where("id = ?", id).
		Update("active", active).Error
}
