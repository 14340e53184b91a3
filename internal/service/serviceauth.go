package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/quickbite/food_delivery/internal/events"
	"github.com/quickbite/food_delivery/internal/hash"
	"github.com/quickbite/food_delivery/internal/logging"
	"github.com/quickbite/food_delivery/internal/models"
	"github.com/quickbite/food_delivery/internal/permissions"
	"github.com/quickbite/food_delivery/internal/repo"
	"github.com/quickbite/food_delivery/internal/tokens"
)

const (
	clientIDPrefix  = "svc_"
	clientIDBytes   = 16
	clientSecretLen = 32
)

// ServiceCredentials manages machine accounts: client id/secret issuance,
// authentication and secret rotation.
type ServiceCredentials struct {
	Repo       *repo.GormRepo
	Issuer     *tokens.Issuer
	Events     events.Publisher
	BcryptCost int
}

// Created pairs the stored record with the one-time plaintext secret. The
// secret is never obtainable again after this response.
type Created struct {
	Account      *models.ServiceAccount
	ClientSecret string
}

type ServiceTokenResult struct {
	Token   string
	Exp     time.Time
	Account *models.ServiceAccount
}

func (s *ServiceCredentials) publish(ctx context.Context, name, subject string, meta map[string]string) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, name, subject, meta); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "event", name, "error", err)
	}
}

// Create provisions a machine account. Omitted scopes default to the
// service's full catalogue; provided scopes must stay inside it (the
// gateway may take any known scope).
func (s *ServiceCredentials) Create(ctx context.Context, name, serviceName string, scopes []string) (*Created, error) {
	if name == "" {
		return nil, ErrValidation
	}
	granted, err := permissions.ValidateScopes(serviceName, scopes)
	if err != nil {
		return nil, err
	}

	clientID, err := hash.RandomHex(clientIDBytes)
	if err != nil {
		return nil, err
	}
	secret, err := hash.RandomHex(clientSecretLen)
	if err != nil {
		return nil, err
	}
	secretHash, err := hash.Password(secret, s.BcryptCost)
	if err != nil {
		return nil, err
	}

	sa := &models.ServiceAccount{
		Name:       name,
		ClientID:   clientIDPrefix + clientID,
		SecretHash: secretHash,
		Service:    serviceName,
		Scopes:     granted,
		Active:     true,
	}
	if err := s.Repo.CreateServiceAccount(ctx, sa); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.publish(ctx, events.ServiceAccountCreated, sa.ClientID, map[string]string{"service": serviceName})
	return &Created{Account: sa, ClientSecret: secret}, nil
}

// Authenticate exchanges a client id/secret pair for a service token.
// Unknown client ids, wrong secrets and inactive accounts all fail with the
// same error so callers cannot enumerate clients.
func (s *ServiceCredentials) Authenticate(ctx context.Context, clientID, clientSecret string) (*ServiceTokenResult, error) {
	l := logging.FromContext(ctx).With("svc", "serviceauth")
	if clientID == "" || clientSecret == "" {
		return nil, ErrInvalidCredentials
	}
	sa, err := s.Repo.ServiceAccountByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !sa.Active {
		return nil, ErrInvalidCredentials
	}
	if !hash.IsBcryptHash(sa.SecretHash) || !hash.CheckPassword(sa.SecretHash, clientSecret) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Issuer.IssueServiceToken(sa)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.Repo.TouchServiceLastUsed(ctx, sa.ID, now); err != nil {
		l.Warn("last_used_update_failed", "client_id", sa.ClientID, "error", err)
	}
	sa.LastUsedAt = &now
	l.Info("service_authenticated", "client_id", sa.ClientID, "service", sa.Service)
	return &ServiceTokenResult{Token: token, Exp: exp, Account: sa}, nil
}

// RotateSecret replaces the client secret and returns the new plaintext
// once. Outstanding tokens keep working until they expire naturally.
func (s *ServiceCredentials) RotateSecret(ctx context.Context, id uuid.UUID) (string, error) {
	sa, err := s.Repo.ServiceAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	secret, err := hash.RandomHex(clientSecretLen)
	if err != nil {
		return "", err
	}
	secretHash, err := hash.Password(secret, s.BcryptCost)
	if err != nil {
		return "", err
	}
	if err := s.Repo.UpdateServiceSecret(ctx, sa.ID, secretHash); err != nil {
		return "", err
	}
	s.publish(ctx, events.ServiceAccountRotated, sa.ClientID, nil)
	return secret, nil
}

// Deactivate turns the account off; authentication and the authorization
// middleware reject it from the next request on.
func (s *ServiceCredentials) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.Repo.SetServiceAccountActive(ctx, id, false)
}
