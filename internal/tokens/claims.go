package tokens

import "github.com/golang-jwt/jwt/v5"

// Kind discriminates the two token families carried in the typ claim.
type Kind string

const (
	KindUser    Kind = "user"
	KindService Kind = "service"
)

func (k Kind) IsUser() bool    { return k == KindUser }
func (k Kind) IsService() bool { return k == KindService }

type UserClaims struct {
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"perms"`
	TokenType   string   `json:"typ"`
	jwt.RegisteredClaims
}

type ServiceClaims struct {
	ClientID  string   `json:"client_id"`
	Service   string   `json:"svc"`
	Scopes    []string `json:"scopes"`
	TokenType string   `json:"typ"`
	jwt.RegisteredClaims
}
