package permissions

import "errors"

var ErrInvalidScopes = errors.New("invalid scopes")

// Service names for machine accounts. The gateway is special-cased: it may
// hold scopes belonging to any service.
const (
	ServiceAPIGateway = "api-gateway"
	ServiceAuth       = "auth-service"
	ServiceOrder      = "order-service"
	ServiceRestaurant = "restaurant-service"
	ServiceDelivery   = "delivery-service"
	ServicePayment    = "payment-service"
)

const (
	ScopeAuthValidate = "auth-service:validate"
	ScopeAuthRevoke   = "auth-service:revoke"
)

var serviceScopes = map[string][]string{
	ServiceAuth: {
		ScopeAuthValidate,
		ScopeAuthRevoke,
	},
	ServiceOrder: {
		"order-service:read",
		"order-service:write",
		"order-service:admin",
	},
	ServiceRestaurant: {
		"restaurant-service:read",
		"restaurant-service:write",
		"restaurant-service:admin",
	},
	ServiceDelivery: {
		"delivery-service:read",
		"delivery-service:write",
	},
	ServicePayment: {
		"payment-service:read",
		"payment-service:write",
		"payment-service:admin",
	},
}

// ValidService reports whether name belongs to the closed service enumeration.
func ValidService(name string) bool {
	if name == ServiceAPIGateway {
		return true
	}
	_, ok := serviceScopes[name]
	return ok
}

// ServiceScopes returns the scope catalogue for a service. For the gateway
// this is the union of every service's catalogue.
func ServiceScopes(service string) []string {
	if service == ServiceAPIGateway {
		var all []string
		for _, scopes := range serviceScopes {
			all = append(all, scopes...)
		}
		return all
	}
	scopes := serviceScopes[service]
	out := make([]string, len(scopes))
	copy(out, scopes)
	return out
}

// ValidateScopes checks a requested scope grant for a service account.
// An empty request means "the service's full catalogue". Every requested
// scope must belong to the service's own catalogue; the gateway may request
// any known scope.
func ValidateScopes(service string, requested []string) ([]string, error) {
	if !ValidService(service) {
		return nil, ErrInvalidScopes
	}
	if len(requested) == 0 {
		return ServiceScopes(service), nil
	}
	allowed := make(map[string]struct{})
	for _, s := range ServiceScopes(service) {
		allowed[s] = struct{}{}
	}
	out := make([]string, 0, len(requested))
	for _, s := range requested {
		if _, ok := allowed[s]; !ok {
			return nil, ErrInvalidScopes
		}
		out = append(out, s)
	}
	return out, nil
}
