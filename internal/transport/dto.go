package transport

import "time"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         *UserSummary `json:"user"`
}

type UserSummary struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type PasswordChangeRequiredResponse struct {
	PasswordChangeRequired bool   `json:"password_change_required"`
	Message                string `json:"message"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token,omitempty"`
}

type RefreshResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ServiceTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type ServiceTokenResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Service   *ServiceSummary `json:"service"`
}

type ServiceSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ClientID string   `json:"client_id"`
	Service  string   `json:"service"`
	Scopes   []string `json:"scopes"`
	Active   bool     `json:"active"`
}

type TokenRequest struct {
	Token string `json:"token"`
}

type ValidateResponse struct {
	Valid  bool `json:"valid"`
	Claims any  `json:"claims,omitempty"`
}

type IntrospectResponse struct {
	Kind   string    `json:"kind,omitempty"`
	Claims any       `json:"claims,omitempty"`
	Expiry time.Time `json:"expiry,omitempty"`
	// Introspection never verifies signature or revocation state.
	Trusted bool `json:"trusted"`
}

type ProvisionAccountRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

type CreateServiceAccountRequest struct {
	Name    string   `json:"name"`
	Service string   `json:"service"`
	Scopes  []string `json:"scopes,omitempty"`
}

type CreateServiceAccountResponse struct {
	Service *ServiceSummary `json:"service"`
	// ClientSecret is returned exactly once.
	ClientSecret string `json:"client_secret"`
}

type RotateSecretResponse struct {
	ClientSecret string `json:"client_secret"`
}
