package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickbite/food_delivery/internal/logging"
	mw "github.com/quickbite/food_delivery/internal/middleware"
	"github.com/quickbite/food_delivery/internal/service"
	"github.com/quickbite/food_delivery/internal/session"
	"github.com/quickbite/food_delivery/internal/tokens"
	"github.com/quickbite/food_delivery/internal/transport"
)

type AuthHTTP struct {
	Svc     *service.AuthService
	Cookies Cookies
}

func clientMeta(c echo.Context) session.Metadata {
	return session.Metadata{
		UserAgent: c.Request().UserAgent(),
		IP:        c.RealIP(),
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	acct, err := h.Svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
		case errors.Is(err, service.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		l.Error("register_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":    acct.ID,
		"email": acct.Email,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
		case errors.Is(err, service.ErrPasswordChangeRequired):
			return c.JSON(http.StatusOK, transport.PasswordChangeRequiredResponse{
				PasswordChangeRequired: true,
				Message:                "password change required before login",
			})
		case errors.Is(err, service.ErrAccountInactive):
			return echo.NewHTTPError(http.StatusUnauthorized, "account is deactivated")
		case errors.Is(err, service.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		l.Error("login_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	c.SetCookie(h.Cookies.Access(res.AccessToken, res.AccessExp))
	c.SetCookie(h.Cookies.Refresh(res.RefreshToken, res.RefreshExp))

	return c.JSON(http.StatusOK, transport.LoginResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.AccessExp,
		User: &transport.UserSummary{
			ID:          res.Account.ID.String(),
			Email:       res.Account.Email,
			Role:        res.Account.Role,
			Permissions: res.Permissions,
		},
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie("refreshToken"); err == nil {
			req.RefreshToken = cookie.Value
		}
	}

	access, exp, err := h.Svc.Refresh(ctx, req.RefreshToken, req.AccessToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
		}
		logging.FromContext(ctx).Error("refresh_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "refresh failed")
	}

	c.SetCookie(h.Cookies.Access(access, exp))
	return c.JSON(http.StatusOK, transport.RefreshResponse{
		AccessToken: access,
		ExpiresAt:   exp,
	})
}

// Logout always succeeds, even with garbage or already-dead tokens.
func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	access := mw.ExtractToken(c)
	var refresh string
	if cookie, err := c.Cookie("refreshToken"); err == nil {
		refresh = cookie.Value
	}
	var req transport.RefreshRequest
	if err := c.Bind(&req); err == nil && req.RefreshToken != "" {
		refresh = req.RefreshToken
	}

	h.Svc.Logout(ctx, access, refresh)

	c.SetCookie(h.Cookies.Delete("accessToken", "/"))
	c.SetCookie(h.Cookies.Delete("refreshToken", refreshCookiePath))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) LogoutAll(c echo.Context) error {
	ctx := c.Request().Context()

	p, ok := mw.PrincipalFrom(c)
	if !ok || !p.Kind.IsUser() {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	if err := h.Svc.LogoutAll(ctx, p.User.AccountID); err != nil {
		logging.FromContext(ctx).Error("logout_all_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}

	c.SetCookie(h.Cookies.Delete("accessToken", "/"))
	c.SetCookie(h.Cookies.Delete("refreshToken", refreshCookiePath))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out everywhere"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	p, ok := mw.PrincipalFrom(c)
	if !ok || !p.Kind.IsUser() {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	return c.JSON(http.StatusOK, transport.UserSummary{
		ID:          p.User.AccountID.String(),
		Email:       p.User.Email,
		Role:        p.User.Role,
		Permissions: p.User.Permissions,
	})
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()

	p, ok := mw.PrincipalFrom(c)
	if !ok || !p.Kind.IsUser() {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	err := h.Svc.ChangePassword(ctx, p.User.AccountID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "new password is required")
		case errors.Is(err, service.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		logging.FromContext(ctx).Error("password_change_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "password change failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// Introspect decodes without verifying signature or blacklist state. The
// response says so explicitly; it is a diagnostic, never a trust decision.
func (h *AuthHTTP) Introspect(issuer *tokens.Issuer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req transport.TokenRequest
		if err := c.Bind(&req); err != nil || req.Token == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "token is required")
		}

		out := transport.IntrospectResponse{Trusted: false}
		kind, err := issuer.Classify(req.Token)
		if err != nil {
			return c.JSON(http.StatusOK, out)
		}
		out.Kind = string(kind)
		if claims, err := issuer.Decode(req.Token); err == nil {
			out.Claims = claims
		}
		if exp, err := issuer.PeekExpiry(req.Token); err == nil {
			out.Expiry = exp
		}
		return c.JSON(http.StatusOK, out)
	}
}
