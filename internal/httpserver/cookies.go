package httpserver

import (
	"net/http"
	"time"
)

const refreshCookiePath = "/auth/refresh"

// Cookies builds the auth cookies. Secure is driven by the production
// switch; the refresh cookie is scoped to the refresh path only.
type Cookies struct {
	Secure bool
}

func (ck Cookies) Access(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     "accessToken",
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   ck.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (ck Cookies) Refresh(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     "refreshToken",
		Value:    value,
		Path:     refreshCookiePath,
		Expires:  exp,
		HttpOnly: true,
		Secure:   ck.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (ck Cookies) Delete(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ck.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
