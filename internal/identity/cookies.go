package identity

import (
	"net/http"
	"time"
)

const (
	SessionCookie = "session_token"
	GuestCookie   = "guest_id"
)

// CookiePolicy holds the attributes shared by the session and guest cookies
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookiePolicy is http-only, secure, cross-site
func DefaultCookiePolicy() CookiePolicy {
	return CookiePolicy{Secure: true, SameSite: http.SameSiteNoneMode}
}

func (p CookiePolicy) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}

// Session builds the session_token cookie
func (p CookiePolicy) Session(token string, ttl time.Duration) *http.Cookie {
	return p.cookie(SessionCookie, token, ttl)
}

// Guest builds the guest_id cookie
func (p CookiePolicy) Guest(id string, ttl time.Duration) *http.Cookie {
	return p.cookie(GuestCookie, id, ttl)
}

// ClearSession builds a cookie that deletes session_token
func (p CookiePolicy) ClearSession() *http.Cookie {
	c := p.cookie(SessionCookie, "", 0)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}
