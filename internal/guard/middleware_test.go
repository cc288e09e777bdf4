package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskpanel/internal/roles"
	"taskpanel/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, sub, role string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: role,
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return tok
}

func guardedRouter(sessions session.Binder, adminHit, userHit *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	protected := r.Group("/", RequireUser(sessions))
	protected.GET("/tasks", func(c *gin.Context) {
		*userHit = true
		c.String(http.StatusOK, "tasks")
	})
	admin := protected.Group("/admin", RequireAdmin())
	admin.GET("/tasks", func(c *gin.Context) {
		*adminHit = true
		c.String(http.StatusOK, "all tasks")
	})
	r.NoRoute(RedirectUnmatched())
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireUserRedirectsWhenUnauthenticated(t *testing.T) {
	var adminHit, userHit bool
	r := guardedRouter(session.NewStaticManager(session.NewMemoryStorage()), &adminHit, &userHit)

	w := get(r, "/tasks")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != LoginPath {
		t.Fatalf("expected redirect to %s, got %d %q", LoginPath, w.Code, w.Header().Get("Location"))
	}
	if userHit {
		t.Fatalf("protected handler must not run for absent session")
	}
}

func TestRequireUserClearsExpiredToken(t *testing.T) {
	storage := session.NewMemoryStorage()
	_ = storage.Write(mintToken(t, "bob@example.com", roles.RoleUser, time.Now().Add(-time.Hour)))

	var adminHit, userHit bool
	r := guardedRouter(session.NewStaticManager(storage), &adminHit, &userHit)

	w := get(r, "/tasks")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != LoginPath {
		t.Fatalf("expected redirect to login, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if _, ok := storage.Read(); ok {
		t.Fatalf("expected expired token cleared by guarded navigation")
	}
}

func TestRequireUserAllowsLiveSession(t *testing.T) {
	storage := session.NewMemoryStorage()
	_ = storage.Write(mintToken(t, "bob@example.com", roles.RoleUser, time.Now().Add(time.Hour)))

	var adminHit, userHit bool
	r := guardedRouter(session.NewStaticManager(storage), &adminHit, &userHit)

	if w := get(r, "/tasks"); w.Code != http.StatusOK || !userHit {
		t.Fatalf("expected protected view to render, got %d", w.Code)
	}
}

func TestRequireAdminRedirectsUserToHome(t *testing.T) {
	storage := session.NewMemoryStorage()
	_ = storage.Write(mintToken(t, "bob@example.com", roles.RoleUser, time.Now().Add(time.Hour)))

	var adminHit, userHit bool
	r := guardedRouter(session.NewStaticManager(storage), &adminHit, &userHit)

	w := get(r, "/admin/tasks")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != HomePath {
		t.Fatalf("expected redirect to %s, got %d %q", HomePath, w.Code, w.Header().Get("Location"))
	}
	if adminHit {
		t.Fatalf("admin handler must not run for role=user")
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	storage := session.NewMemoryStorage()
	_ = storage.Write(mintToken(t, "root@example.com", roles.RoleAdmin, time.Now().Add(time.Hour)))

	var adminHit, userHit bool
	r := guardedRouter(session.NewStaticManager(storage), &adminHit, &userHit)

	if w := get(r, "/admin/tasks"); w.Code != http.StatusOK || !adminHit {
		t.Fatalf("expected admin view to render, got %d", w.Code)
	}
}

func TestUnmatchedPathRedirectsHome(t *testing.T) {
	var adminHit, userHit bool
	r := guardedRouter(session.NewStaticManager(session.NewMemoryStorage()), &adminHit, &userHit)

	w := get(r, "/no/such/view")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != HomePath {
		t.Fatalf("expected catch-all redirect to %s, got %d %q", HomePath, w.Code, w.Header().Get("Location"))
	}
}
