package repo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quickbite/food_delivery/internal/models"
)

func newRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.RefreshSession{}, &models.ServiceAccount{}))
	return &GormRepo{DB: db}
}

func TestCreateAccount_ExistingEmailConflicts(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateAccount(ctx, &models.Account{Email: "dana@example.com", PasswordHash: "h", Role: "customer", Active: true}))
	err := r.CreateAccount(ctx, &models.Account{Email: "dana@example.com", PasswordHash: "h2", Role: "customer", Active: true})
	require.ErrorIs(t, err, ErrConflict)
}

func TestCreateAccount_UniqueViolationConflicts(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()

	first := &models.Account{Email: "dana@example.com", PasswordHash: "h", Role: "customer", Active: true}
	require.NoError(t, r.CreateAccount(ctx, first))

	// The lookup misses (different email) but the insert collides on the
	// primary key, which is how a lost insert race surfaces.
	dup := &models.Account{ID: first.ID, Email: "other@example.com", PasswordHash: "h", Role: "customer", Active: true}
	err := r.CreateAccount(ctx, dup)
	require.ErrorIs(t, err, ErrConflict)
}

func TestCreateServiceAccount_UniqueViolationConflicts(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateServiceAccount(ctx, &models.ServiceAccount{
		Name: "orders-worker", ClientID: "svc_abc", SecretHash: "h", Service: "order-service", Active: true,
	}))

	err := r.CreateServiceAccount(ctx, &models.ServiceAccount{
		Name: "other-worker", ClientID: "svc_abc", SecretHash: "h", Service: "order-service", Active: true,
	})
	require.ErrorIs(t, err, ErrConflict)
}
