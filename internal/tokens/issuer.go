package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quickbite/food_delivery/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Issuer signs and verifies both token kinds with a single HS256 secret.
// It holds no state beyond configuration and never touches storage;
// revocation checks belong to the caller.
type Issuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	ServiceTTL time.Duration

	// Now is overridable in tests; zero value means time.Now.
	Now func() time.Time
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now().UTC()
}

// IssueUserToken signs an access token for a human account. The permission
// list is resolved by the caller so issuance stays storage-free.
func (i *Issuer) IssueUserToken(acct *models.Account, perms []string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.AccessTTL)
	claims := UserClaims{
		Email:       acct.Email,
		Role:        acct.Role,
		Permissions: perms,
		TokenType:   string(KindUser),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.ID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueServiceToken signs a machine token for a service account. Service
// tokens default to a shorter lifetime than user tokens.
func (i *Issuer) IssueServiceToken(sa *models.ServiceAccount) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ServiceTTL)
	claims := ServiceClaims{
		ClientID:  sa.ClientID,
		Service:   sa.Service,
		Scopes:    sa.Scopes,
		TokenType: string(KindService),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sa.ID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (i *Issuer) keyFunc(t *jwt.Token) (any, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, ErrInvalidToken
	}
	return i.Secret, nil
}

// VerifyUser validates signature and expiry of a user token.
func (i *Issuer) VerifyUser(raw string) (*UserClaims, error) {
	var claims UserClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, i.keyFunc,
		jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tkn.Valid || claims.TokenType != string(KindUser) {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// VerifyService validates signature and expiry of a service token.
func (i *Issuer) VerifyService(raw string) (*ServiceClaims, error) {
	var claims ServiceClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, i.keyFunc,
		jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tkn.Valid || claims.TokenType != string(KindService) {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// Classify reads the unverified typ claim to route a token to the right
// verification path. It makes no trust decision; callers must still verify.
func (i *Issuer) Classify(raw string) (Kind, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", ErrInvalidToken
	}
	typ, _ := claims["typ"].(string)
	switch Kind(typ) {
	case KindUser:
		return KindUser, nil
	case KindService:
		return KindService, nil
	}
	return "", ErrInvalidToken
}

// Decode returns the full claim map without verifying the signature.
// Diagnostic use only; nothing in the result may drive a trust decision.
func (i *Issuer) Decode(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// PeekExpiry decodes the exp claim without verifying the signature. Only
// useful for blacklist TTL bookkeeping, never for authorization.
func (i *Issuer) PeekExpiry(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, ErrInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrInvalidToken
	}
	return exp.Time, nil
}
