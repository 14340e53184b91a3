package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quickbite/food_delivery/internal/blacklist"
	"github.com/quickbite/food_delivery/internal/models"
	"github.com/quickbite/food_delivery/internal/permissions"
	"github.com/quickbite/food_delivery/internal/repo"
	"github.com/quickbite/food_delivery/internal/tokens"
)

type mwEnv struct {
	e      *echo.Echo
	rp     *repo.GormRepo
	issuer *tokens.Issuer
	bl     *blacklist.Store
	authn  *Authenticator
}

func newMwEnv(t *testing.T) *mwEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.ServiceAccount{}))

	rp := &repo.GormRepo{DB: db}
	issuer := &tokens.Issuer{
		Secret:     []byte("test-jwt-secret"),
		AccessTTL:  2 * time.Hour,
		ServiceTTL: time.Hour,
	}
	local := blacklist.NewMemory(time.Hour)
	t.Cleanup(local.Close)
	primary := blacklist.NewMemory(time.Hour)
	t.Cleanup(primary.Close)
	bl := &blacklist.Store{
		Primary:    primary,
		Local:      local,
		PeekExpiry: issuer.PeekExpiry,
		DefaultTTL: 24 * time.Hour,
		Buffer:     30 * time.Second,
		Timeout:    time.Second,
	}

	env := &mwEnv{
		e:      echo.New(),
		rp:     rp,
		issuer: issuer,
		bl:     bl,
		authn:  &Authenticator{Issuer: issuer, Blacklist: bl, Repo: rp},
	}

	whoami := func(c echo.Context) error {
		p, _ := PrincipalFrom(c)
		return c.JSON(http.StatusOK, echo.Map{"kind": string(p.Kind)})
	}
	env.e.GET("/whoami", whoami, env.authn.RequireAuth)
	env.e.GET("/reports", whoami, env.authn.RequireAuth, RequirePermission(permissions.PermReportsView))
	env.e.GET("/validate", whoami, env.authn.RequireAuth, RequireScope(permissions.ScopeAuthValidate))
	return env
}

func (env *mwEnv) account(t *testing.T, active bool, overrides []string) (*models.Account, string) {
	t.Helper()

	acct := &models.Account{
		Email:            "user-" + time.Now().Format("150405.000000000") + "@example.com",
		PasswordHash:     "$2a$04$notusedinthesetests000000000000000000000000000000000",
		Role:             permissions.RoleCustomer,
		ExtraPermissions: overrides,
		Active:           active,
	}
	require.NoError(t, env.rp.CreateAccount(context.Background(), acct))

	perms := permissions.Resolve(acct.Role, acct.ExtraPermissions)
	raw, _, err := env.issuer.IssueUserToken(acct, perms)
	require.NoError(t, err)
	return acct, raw
}

func (env *mwEnv) serviceAccount(t *testing.T, active bool, scopes []string) (*models.ServiceAccount, string) {
	t.Helper()

	sa := &models.ServiceAccount{
		Name:       "svc-" + time.Now().Format("150405.000000000"),
		ClientID:   "svc_" + time.Now().Format("150405.000000000"),
		SecretHash: "$2a$04$notusedinthesetests000000000000000000000000000000000",
		Service:    permissions.ServiceAuth,
		Scopes:     scopes,
		Active:     active,
	}
	require.NoError(t, env.rp.CreateServiceAccount(context.Background(), sa))

	raw, _, err := env.issuer.IssueServiceToken(sa)
	require.NoError(t, err)
	return sa, raw
}

func (env *mwEnv) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth_NoToken(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	rec := env.get("/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_UserToken(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	_, token := env.account(t, true, nil)

	rec := env.get("/whoami", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user"`)
}

func TestRequireAuth_TokenFromCookie(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	_, token := env.account(t, true, nil)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_BlacklistedToken(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	_, token := env.account(t, true, nil)
	env.bl.Add(context.Background(), token)

	rec := env.get("/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "revoked")
}

func TestRequireAuth_BlacklistFallbackStillBlocks(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	_, token := env.account(t, true, nil)

	// Shared backend unreachable: the revocation lands in the local
	// fallback and the middleware still rejects the token.
	env.bl.Primary = &downBackend{}
	env.bl.Add(context.Background(), token)

	rec := env.get("/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	rec := env.get("/whoami", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	acct, _ := env.account(t, true, nil)

	past := time.Now().Add(-5 * time.Hour)
	env.issuer.Now = func() time.Time { return past }
	expired, _, err := env.issuer.IssueUserToken(acct, nil)
	require.NoError(t, err)
	env.issuer.Now = nil

	rec := env.get("/whoami", expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_DeactivatedAccountRejected(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	acct, token := env.account(t, true, nil)

	rec := env.get("/whoami", token)
	require.Equal(t, http.StatusOK, rec.Code)

	// Claims are still valid, but live account state wins.
	require.NoError(t, env.rp.SetAccountActive(context.Background(), acct.ID, false))
	rec = env.get("/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_ServiceToken(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	_, token := env.serviceAccount(t, true, []string{permissions.ScopeAuthValidate})

	rec := env.get("/whoami", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service"`)
}

func TestRequireAuth_InactiveServiceAccount(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	sa, token := env.serviceAccount(t, true, nil)
	require.NoError(t, env.rp.SetServiceAccountActive(context.Background(), sa.ID, false))

	rec := env.get("/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermission_UserDenied(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	_, token := env.account(t, true, nil)

	rec := env.get("/reports", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermission_OverrideGrants(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	_, token := env.account(t, true, []string{permissions.PermReportsView})

	rec := env.get("/reports", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermission_ServicePasses(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	_, token := env.serviceAccount(t, true, nil)

	rec := env.get("/reports", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireScope(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)

	_, withScope := env.serviceAccount(t, true, []string{permissions.ScopeAuthValidate})
	rec := env.get("/validate", withScope)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, withoutScope := env.serviceAccount(t, true, []string{permissions.ScopeAuthRevoke})
	rec = env.get("/validate", withoutScope)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Users never satisfy scope checks.
	_, userToken := env.account(t, true, nil)
	rec = env.get("/validate", userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticator_ResolveLivePermissions(t *testing.T) {
	t.Parallel()

	env := newMwEnv(t)
	env.authn.ResolveLive = true

	acct, token := env.account(t, true, nil)
	rec := env.get("/reports", token)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Granting an override takes effect on the next request without
	// reissuing the token when live resolution is on.
	require.NoError(t, env.rp.DB.Model(&models.Account{}).
		Where("id = ?", acct.ID).
		Update("extra_permissions", models.StringList{permissions.PermReportsView}).Error)
	rec = env.get("/reports", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// downBackend always errors, standing in for an unreachable shared cache.
type downBackend struct{}

func (downBackend) Add(context.Context, string, time.Duration) error { return errDown }
func (downBackend) Contains(context.Context, string) (bool, error)   { return false, errDown }
func (downBackend) Remove(context.Context, string) error             { return errDown }

var errDown = context.DeadlineExceeded
