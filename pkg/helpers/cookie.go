package helpers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
)

// SessionCookieOptions builds the cookie attributes for the session cookie.
// The server-side record shares the same lifetime.
func SessionCookieOptions(domain string, secure bool, maxAge time.Duration) sessions.Options {
	return sessions.Options{
		Path:     "/",
		Domain:   domain,
		MaxAge:   maxAgeSeconds(maxAge),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionOptions returns options that make the store drop the record
// and the browser drop the cookie.
func ExpiredSessionOptions(domain string, secure bool) sessions.Options {
	o := SessionCookieOptions(domain, secure, 0)
	o.MaxAge = -1
	return o
}

func maxAgeSeconds(d time.Duration) int {
	sec := int(d.Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
