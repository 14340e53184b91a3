package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/quickbite/food_delivery/internal/blacklist"
	"github.com/quickbite/food_delivery/internal/events"
	"github.com/quickbite/food_delivery/internal/hash"
	"github.com/quickbite/food_delivery/internal/logging"
	"github.com/quickbite/food_delivery/internal/models"
	"github.com/quickbite/food_delivery/internal/permissions"
	"github.com/quickbite/food_delivery/internal/repo"
	"github.com/quickbite/food_delivery/internal/session"
	"github.com/quickbite/food_delivery/internal/tokens"
)

type AuthService struct {
	Repo       *repo.GormRepo
	Sessions   *session.Manager
	Issuer     *tokens.Issuer
	Blacklist  *blacklist.Store
	Events     events.Publisher
	BcryptCost int
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	Account      *models.Account
	Permissions  []string
}

func (s *AuthService) publish(ctx context.Context, name, subject string, meta map[string]string) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, name, subject, meta); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "event", name, "error", err)
	}
}

// Register creates a customer account for self-signup.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.Account, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}
	pwHash, err := hash.Password(password, s.BcryptCost)
	if err != nil {
		return nil, err
	}
	acct := &models.Account{
		Email:        email,
		PasswordHash: pwHash,
		Role:         permissions.RoleCustomer,
		Active:       true,
	}
	if err := s.Repo.CreateAccount(ctx, acct); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.publish(ctx, events.UserRegistered, acct.ID.String(), nil)
	return acct, nil
}

// Login verifies credentials and issues an access token plus a refresh
// session. Unknown email and wrong password are indistinguishable. A stored
// hash that is not a recognizable bcrypt value fails closed the same way;
// raw values are never compared.
func (s *AuthService) Login(ctx context.Context, email, password string, meta session.Metadata) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")
	if email == "" || password == "" {
		return nil, ErrValidation
	}

	acct, err := s.Repo.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.IsBcryptHash(acct.PasswordHash) {
		l.Error("login_rejected", "reason", "stored credential is not a bcrypt hash", "account_id", acct.ID)
		return nil, ErrInvalidCredentials
	}
	if !hash.CheckPassword(acct.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !acct.Active {
		l.Warn("login_rejected", "reason", "account deactivated", "account_id", acct.ID)
		return nil, ErrAccountInactive
	}
	if acct.PasswordChangeRequired {
		return nil, ErrPasswordChangeRequired
	}

	perms := permissions.Resolve(acct.Role, acct.ExtraPermissions)
	access, accessExp, err := s.Issuer.IssueUserToken(acct, perms)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.Sessions.Issue(ctx, acct.ID, meta)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.Repo.TouchLastLogin(ctx, acct.ID, now); err != nil {
		l.Warn("last_login_update_failed", "account_id", acct.ID, "error", err)
	}
	acct.LastLoginAt = &now

	s.publish(ctx, events.UserLogin, acct.ID.String(), map[string]string{"ip": meta.IP})
	l.Info("login_successful", "account_id", acct.ID, "role", acct.Role)

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		Account:      acct,
		Permissions:  perms,
	}, nil
}

// Refresh redeems a refresh session for a new access token. The session is
// left live; only the optional expiring access token is blacklisted. The
// account's current state is re-checked so a deactivation since login takes
// effect here.
func (s *AuthService) Refresh(ctx context.Context, refreshRaw, oldAccess string) (string, time.Time, error) {
	accountID, err := s.Sessions.Redeem(ctx, refreshRaw)
	if err != nil {
		return "", time.Time{}, err
	}

	acct, err := s.Repo.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", time.Time{}, session.ErrInvalidRefreshToken
		}
		return "", time.Time{}, err
	}
	if !acct.Active {
		return "", time.Time{}, session.ErrInvalidRefreshToken
	}

	perms := permissions.Resolve(acct.Role, acct.ExtraPermissions)
	access, exp, err := s.Issuer.IssueUserToken(acct, perms)
	if err != nil {
		return "", time.Time{}, err
	}

	if oldAccess != "" {
		s.Blacklist.Add(ctx, oldAccess)
	}
	return access, exp, nil
}

// Logout blacklists the access token and revokes the refresh session.
// Always succeeds: already-invalid tokens are fine.
func (s *AuthService) Logout(ctx context.Context, accessRaw, refreshRaw string) {
	if accessRaw != "" {
		s.Blacklist.Add(ctx, accessRaw)
	}
	if refreshRaw != "" {
		if err := s.Sessions.Revoke(ctx, refreshRaw); err != nil {
			logging.FromContext(ctx).Warn("logout_revoke_failed", "error", err)
		}
	}
	s.publish(ctx, events.UserLogout, "", nil)
}

// LogoutAll revokes every refresh session of the account.
func (s *AuthService) LogoutAll(ctx context.Context, accountID uuid.UUID) error {
	if err := s.Sessions.RevokeAll(ctx, accountID); err != nil {
		return err
	}
	s.publish(ctx, events.UserLogout, accountID.String(), map[string]string{"all": "true"})
	return nil
}

// ChangePassword verifies the current password, stores a new hash, clears
// the forced-change flag and signs the account out everywhere.
func (s *AuthService) ChangePassword(ctx context.Context, accountID uuid.UUID, current, next string) error {
	if next == "" {
		return ErrValidation
	}
	acct, err := s.Repo.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !hash.IsBcryptHash(acct.PasswordHash) || !hash.CheckPassword(acct.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	newHash, err := hash.Password(next, s.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, accountID, newHash); err != nil {
		return err
	}
	if err := s.Sessions.RevokeAll(ctx, accountID); err != nil {
		return err
	}
	s.publish(ctx, events.PasswordChanged, accountID.String(), nil)
	return nil
}

// RevokeAccessToken blacklists a single access token.
func (s *AuthService) RevokeAccessToken(ctx context.Context, raw string) {
	s.Blacklist.Add(ctx, raw)
	s.publish(ctx, events.TokenRevoked, "", nil)
}
