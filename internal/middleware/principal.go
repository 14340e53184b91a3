package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/quickbite/food_delivery/internal/permissions"
	"github.com/quickbite/food_delivery/internal/tokens"
)

const principalContextKey = "principal"

// Principal is the authenticated caller attached to the request context,
// a tagged union of the two token kinds. Exactly one of User/Service is
// set, matching Kind.
type Principal struct {
	Kind    tokens.Kind
	User    *UserPrincipal
	Service *ServicePrincipal
}

type UserPrincipal struct {
	AccountID   uuid.UUID
	Email       string
	Role        string
	Permissions []string
}

type ServicePrincipal struct {
	AccountID uuid.UUID
	ClientID  string
	Service   string
	Scopes    []string
}

// HasPermission reports whether the principal holds perm. Service
// principals hold exactly the implicit internal-service permission.
func (p *Principal) HasPermission(perm string) bool {
	switch p.Kind {
	case tokens.KindUser:
		return permissions.Contains(p.User.Permissions, perm)
	case tokens.KindService:
		return perm == permissions.PermInternalService
	}
	return false
}

// HasScope reports whether a service principal holds the scope. User
// principals never carry scopes.
func (p *Principal) HasScope(scope string) bool {
	if p.Kind != tokens.KindService {
		return false
	}
	return permissions.Contains(p.Service.Scopes, scope)
}

// SetPrincipal attaches the principal to the echo context.
func SetPrincipal(c echo.Context, p *Principal) {
	c.Set(principalContextKey, p)
}

// PrincipalFrom retrieves the principal set by the Authenticator.
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalContextKey).(*Principal)
	return p, ok
}
