package permissions

// Role names for human accounts. Stored as plain strings on the account row;
// anything outside this set resolves to no default permissions.
const (
	RoleCustomer          = "customer"
	RoleRestaurantAdmin   = "restaurant_admin"
	RoleDeliveryPersonnel = "delivery_personnel"
	RoleAdmin             = "admin"
)

// Permission catalogue, resource:verb style.
const (
	PermOrderCreate      = "order:create"
	PermOrderRead        = "order:read"
	PermOrderReadAny     = "order:read:any"
	PermOrderUpdate      = "order:update"
	PermRestaurantManage = "restaurant:manage"
	PermMenuManage       = "menu:manage"
	PermDeliveryRead     = "delivery:read"
	PermDeliveryUpdate   = "delivery:update"
	PermUserManage       = "user:manage"
	PermReportsView      = "reports:view"
	PermServiceManage    = "service:manage"

	// PermInternalService is attached implicitly to authenticated service
	// principals and never granted to human accounts.
	PermInternalService = "internal:service"
)

var roleDefaults = map[string][]string{
	RoleCustomer: {
		PermOrderCreate,
		PermOrderRead,
	},
	RoleRestaurantAdmin: {
		PermOrderRead,
		PermOrderUpdate,
		PermRestaurantManage,
		PermMenuManage,
		PermReportsView,
	},
	RoleDeliveryPersonnel: {
		PermOrderRead,
		PermDeliveryRead,
		PermDeliveryUpdate,
	},
	RoleAdmin: {
		PermOrderCreate,
		PermOrderRead,
		PermOrderReadAny,
		PermOrderUpdate,
		PermRestaurantManage,
		PermMenuManage,
		PermDeliveryRead,
		PermDeliveryUpdate,
		PermUserManage,
		PermReportsView,
		PermServiceManage,
	},
}

// ValidRole reports whether role is one of the fixed role names.
func ValidRole(role string) bool {
	_, ok := roleDefaults[role]
	return ok
}

// RoleDefaults returns a copy of the default permission set for a role.
// Unknown roles get an empty set.
func RoleDefaults(role string) []string {
	defaults := roleDefaults[role]
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}

// Resolve merges a role's default permissions with per-account overrides.
// Overrides only ever add permissions; the result is always a superset of
// the role defaults. The returned slice is sorted-stable by insertion order
// and free of duplicates.
func Resolve(role string, overrides []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(roleDefaults[role])+len(overrides))
	for _, p := range roleDefaults[role] {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range overrides {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Contains reports whether perm is in the set.
func Contains(set []string, perm string) bool {
	for _, p := range set {
		if p == perm {
			return true
		}
	}
	return false
}
