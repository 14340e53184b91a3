package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/quickbite/food_delivery/internal/middleware"
	"github.com/quickbite/food_delivery/internal/permissions"
	"github.com/quickbite/food_delivery/internal/tokens"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	ServiceHandler *ServiceAuthHTTP
	AdminHandler   *AdminHTTP
	Authenticator  *mw.Authenticator
	Issuer         *tokens.Issuer
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.POST("/introspect", d.AuthHandler.Introspect(d.Issuer))
	auth.POST("/service/token", d.ServiceHandler.Token)

	private := auth.Group("", d.Authenticator.RequireAuth)
	private.GET("/me", d.AuthHandler.Me)
	private.POST("/password", d.AuthHandler.ChangePassword)
	private.POST("/logout-all", d.AuthHandler.LogoutAll)

	svc := auth.Group("/service", d.Authenticator.RequireAuth)
	svc.POST("/validate", d.ServiceHandler.Validate, mw.RequireScope(permissions.ScopeAuthValidate))
	svc.POST("/revoke", d.ServiceHandler.Revoke, mw.RequireScope(permissions.ScopeAuthRevoke))

	admin := e.Group("/admin", d.Authenticator.RequireAuth)
	accounts := admin.Group("/accounts", mw.RequirePermission(permissions.PermUserManage))
	accounts.POST("", d.AdminHandler.ProvisionAccount)
	accounts.POST("/:id/deactivate", d.AdminHandler.DeactivateAccount)
	accounts.DELETE("/:id", d.AdminHandler.DeleteAccount)

	services := admin.Group("/service-accounts", mw.RequirePermission(permissions.PermServiceManage))
	services.POST("", d.AdminHandler.CreateServiceAccount)
	services.GET("", d.AdminHandler.ListServiceAccounts)
	services.POST("/:id/rotate", d.AdminHandler.RotateServiceSecret)
	services.POST("/:id/deactivate", d.AdminHandler.DeactivateServiceAccount)
}
