package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/quickbite/food_delivery/internal/events"
	"github.com/quickbite/food_delivery/internal/hash"
	"github.com/quickbite/food_delivery/internal/models"
	"github.com/quickbite/food_delivery/internal/permissions"
	"github.com/quickbite/food_delivery/internal/repo"
)

// ProvisionAccount creates an account with an explicit role and optional
// permission overrides. The account is flagged for a password change so the
// admin-chosen initial password never stays in use.
func (s *AuthService) ProvisionAccount(ctx context.Context, email, password, role string, overrides []string) (*models.Account, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}
	if !permissions.ValidRole(role) {
		return nil, ErrValidation
	}
	pwHash, err := hash.Password(password, s.BcryptCost)
	if err != nil {
		return nil, err
	}
	acct := &models.Account{
		Email:                  email,
		PasswordHash:           pwHash,
		Role:                   role,
		ExtraPermissions:       overrides,
		Active:                 true,
		PasswordChangeRequired: true,
	}
	if err := s.Repo.CreateAccount(ctx, acct); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.publish(ctx, events.UserRegistered, acct.ID.String(), map[string]string{"provisioned": "true"})
	return acct, nil
}

// DeactivateAccount soft-disables the account and forces logout everywhere.
func (s *AuthService) DeactivateAccount(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.SetAccountActive(ctx, id, false); err != nil {
		return err
	}
	if err := s.Sessions.RevokeAll(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.AccountDeactivated, id.String(), nil)
	return nil
}

// DeleteAccount hard-deletes; sessions are revoked first so nothing dangles.
func (s *AuthService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := s.Sessions.RevokeAll(ctx, id); err != nil {
		return err
	}
	return s.Repo.DeleteAccount(ctx, id)
}
