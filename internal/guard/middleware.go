package guard

import (
	"net/http"

	"taskpanel/internal/roles"
	"taskpanel/internal/session"

	"github.com/gin-gonic/gin"
)

// Navigation targets. LoginPath is where unauthenticated users land; HomePath
// is the default authenticated landing view and the unauthorized/unmatched
// fallback.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// RequireUser gates authenticated views. The decision is made entirely from
// the session cookie on the incoming request; no backend call is involved, so
// the protected handler is simply never reached for an absent session.
//
// Expiry enforcement happens here, before rendering: an expired or
// undecodable persisted token is cleared and the request treated as
// unauthenticated.
func RequireUser(sessions session.Binder) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := session.BindCached(c, sessions)
		store.InvalidateIfExpired()

		u, ok := store.CurrentUser()
		if !ok {
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), u.Email, u.Role))
		c.Next()
	}
}

// RequireAdmin composes after RequireUser. A non-admin is authenticated but
// unauthorized for the view, so the redirect goes to the landing page, never
// back to login.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := Role(c.Request.Context())
		if err != nil || !roles.IsAdmin(role) {
			c.Redirect(http.StatusSeeOther, HomePath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectUnmatched is the NoRoute catch-all: unknown paths go home
// regardless of auth state (the guard on HomePath sorts the rest out).
func RedirectUnmatched() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, HomePath)
	}
}
