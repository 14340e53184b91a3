package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickbite/food_delivery/internal/blacklist"
	"github.com/quickbite/food_delivery/internal/logging"
	"github.com/quickbite/food_delivery/internal/models"
	"github.com/quickbite/food_delivery/internal/service"
	"github.com/quickbite/food_delivery/internal/tokens"
	"github.com/quickbite/food_delivery/internal/transport"
)

type ServiceAuthHTTP struct {
	Svc       *service.ServiceCredentials
	Auth      *service.AuthService
	Issuer    *tokens.Issuer
	Blacklist *blacklist.Store
}

func serviceSummary(sa *models.ServiceAccount) *transport.ServiceSummary {
	return &transport.ServiceSummary{
		ID:       sa.ID.String(),
		Name:     sa.Name,
		ClientID: sa.ClientID,
		Service:  sa.Service,
		Scopes:   sa.Scopes,
		Active:   sa.Active,
	}
}

// Token is the client-credentials exchange. Every failure shape returns the
// same 401 payload.
func (h *ServiceAuthHTTP) Token(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.ServiceTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Authenticate(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid client credentials")
		}
		logging.FromContext(ctx).Error("service_token_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "authentication failed")
	}

	return c.JSON(http.StatusOK, transport.ServiceTokenResponse{
		Token:     res.Token,
		ExpiresAt: res.Exp,
		Service:   serviceSummary(res.Account),
	})
}

// Validate verifies a token for a peer service and returns its claims.
// Peer services consume revocations through this endpoint, so the blacklist
// is consulted before the signature: a revoked token is invalid no matter
// how well it verifies.
func (h *ServiceAuthHTTP) Validate(c echo.Context) error {
	var req transport.TokenRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	if h.Blacklist.IsBlacklisted(c.Request().Context(), req.Token) {
		return c.JSON(http.StatusOK, transport.ValidateResponse{Valid: false})
	}

	kind, err := h.Issuer.Classify(req.Token)
	if err != nil {
		return c.JSON(http.StatusOK, transport.ValidateResponse{Valid: false})
	}
	switch kind {
	case tokens.KindUser:
		claims, err := h.Issuer.VerifyUser(req.Token)
		if err != nil {
			return c.JSON(http.StatusOK, transport.ValidateResponse{Valid: false})
		}
		return c.JSON(http.StatusOK, transport.ValidateResponse{Valid: true, Claims: claims})
	case tokens.KindService:
		claims, err := h.Issuer.VerifyService(req.Token)
		if err != nil {
			return c.JSON(http.StatusOK, transport.ValidateResponse{Valid: false})
		}
		return c.JSON(http.StatusOK, transport.ValidateResponse{Valid: true, Claims: claims})
	}
	return c.JSON(http.StatusOK, transport.ValidateResponse{Valid: false})
}

// Revoke blacklists a token on behalf of a peer service.
func (h *ServiceAuthHTTP) Revoke(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.TokenRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	h.Auth.RevokeAccessToken(ctx, req.Token)
	return c.JSON(http.StatusOK, echo.Map{"revoked": true})
}
