package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/quickbite/food_delivery/internal/logging"
	"github.com/quickbite/food_delivery/internal/permissions"
	"github.com/quickbite/food_delivery/internal/service"
	"github.com/quickbite/food_delivery/internal/transport"
)

type AdminHTTP struct {
	Auth     *service.AuthService
	Services *service.ServiceCredentials
}

func pathID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func (h *AdminHTTP) ProvisionAccount(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.ProvisionAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	acct, err := h.Auth.ProvisionAccount(ctx, req.Email, req.Password, req.Role, req.Permissions)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "email, password and a valid role are required")
		case errors.Is(err, service.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		logging.FromContext(ctx).Error("provision_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "provisioning failed")
	}
	return c.JSON(http.StatusCreated, acct)
}

func (h *AdminHTTP) DeactivateAccount(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid account id")
	}
	if err := h.Auth.DeactivateAccount(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "deactivation failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"deactivated": true})
}

func (h *AdminHTTP) DeleteAccount(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid account id")
	}
	if err := h.Auth.DeleteAccount(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "deletion failed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) CreateServiceAccount(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.CreateServiceAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	created, err := h.Services.Create(ctx, req.Name, req.Service, req.Scopes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "name is required")
		case errors.Is(err, permissions.ErrInvalidScopes):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid scopes for service")
		case errors.Is(err, service.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, "service account name taken")
		}
		logging.FromContext(ctx).Error("service_account_create_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "creation failed")
	}

	return c.JSON(http.StatusCreated, transport.CreateServiceAccountResponse{
		Service:      serviceSummary(created.Account),
		ClientSecret: created.ClientSecret,
	})
}

func (h *AdminHTTP) ListServiceAccounts(c echo.Context) error {
	list, err := h.Services.Repo.ListServiceAccounts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "listing failed")
	}
	out := make([]*transport.ServiceSummary, 0, len(list))
	for i := range list {
		out = append(out, serviceSummary(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHTTP) RotateServiceSecret(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service account id")
	}
	secret, err := h.Services.RotateSecret(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusNotFound, "service account not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "rotation failed")
	}
	return c.JSON(http.StatusOK, transport.RotateSecretResponse{ClientSecret: secret})
}

func (h *AdminHTTP) DeactivateServiceAccount(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service account id")
	}
	if err := h.Services.Deactivate(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "deactivation failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"deactivated": true})
}
