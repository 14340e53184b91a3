package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/quickbite/food_delivery/internal/blacklist"
	"github.com/quickbite/food_delivery/internal/logging"
	"github.com/quickbite/food_delivery/internal/permissions"
	"github.com/quickbite/food_delivery/internal/repo"
	"github.com/quickbite/food_delivery/internal/tokens"
)

// Authenticator turns a bearer token into a Principal. Per request:
// extract, blacklist check, verify, classify, account lookup. The live
// active flag is always consulted; stale claims never resurrect a disabled
// account.
type Authenticator struct {
	Issuer    *tokens.Issuer
	Blacklist *blacklist.Store
	Repo      *repo.GormRepo

	// ResolveLive re-resolves user permissions from the account row instead
	// of trusting the list embedded in the token.
	ResolveLive bool
}

// ExtractToken pulls the bearer token from the Authorization header or the
// accessToken cookie.
func ExtractToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
	}
	if cookie, err := c.Cookie("accessToken"); err == nil {
		return cookie.Value
	}
	return ""
}

func (a *Authenticator) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("mw", "auth")

		raw := ExtractToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		if a.Blacklist.IsBlacklisted(ctx, raw) {
			l.Warn("token_rejected", "reason", "revoked")
			return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
		}

		kind, err := a.Issuer.Classify(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		var p *Principal
		switch kind {
		case tokens.KindUser:
			p, err = a.userPrincipal(c, raw)
		case tokens.KindService:
			p, err = a.servicePrincipal(c, raw)
		}
		if err != nil {
			if errors.Is(err, tokens.ErrExpiredToken) || errors.Is(err, tokens.ErrInvalidToken) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			if errors.Is(err, repo.ErrNotFound) || errors.Is(err, errInactive) {
				l.Warn("token_rejected", "reason", "principal invalid")
				return echo.NewHTTPError(http.StatusUnauthorized, "account invalid")
			}
			l.Error("auth_lookup_failed", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "account invalid")
		}

		SetPrincipal(c, p)
		return next(c)
	}
}

var errInactive = errors.New("principal inactive")

func (a *Authenticator) userPrincipal(c echo.Context, raw string) (*Principal, error) {
	claims, err := a.Issuer.VerifyUser(raw)
	if err != nil {
		return nil, err
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, tokens.ErrInvalidToken
	}
	acct, err := a.Repo.AccountByID(c.Request().Context(), accountID)
	if err != nil {
		return nil, err
	}
	if !acct.Active {
		return nil, errInactive
	}
	perms := claims.Permissions
	if a.ResolveLive {
		perms = permissions.Resolve(acct.Role, acct.ExtraPermissions)
	}
	return &Principal{
		Kind: tokens.KindUser,
		User: &UserPrincipal{
			AccountID:   acct.ID,
			Email:       acct.Email,
			Role:        acct.Role,
			Permissions: perms,
		},
	}, nil
}

func (a *Authenticator) servicePrincipal(c echo.Context, raw string) (*Principal, error) {
	claims, err := a.Issuer.VerifyService(raw)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, tokens.ErrInvalidToken
	}
	sa, err := a.Repo.ServiceAccountByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if !sa.Active {
		return nil, errInactive
	}
	return &Principal{
		Kind: tokens.KindService,
		Service: &ServicePrincipal{
			AccountID: sa.ID,
			ClientID:  sa.ClientID,
			Service:   sa.Service,
			Scopes:    sa.Scopes,
		},
	}, nil
}
