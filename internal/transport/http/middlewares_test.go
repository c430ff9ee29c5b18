package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	a "github.com/GradMERN/e-guide-Backend/pkg/auth"
)

func newAuthRig(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/me", JWTAuth(), func(c *gin.Context) {
		userID, role := callerOf(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})
	r.GET("/admin", JWTAuth(), RequireRole(a.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/open", OptionalJWT(), func(c *gin.Context) {
		userID, _ := callerOf(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := newAuthRig(t)

	tok, err := a.CreateAccessToken("user_1", a.RoleUser, "u@example.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if w := get(r, "/me", tok); w.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d", w.Code)
	}
	if w := get(r, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d, want 401", w.Code)
	}
	if w := get(r, "/me", "garbage"); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", w.Code)
	}

	expired, err := a.CreateAccessToken("user_1", a.RoleUser, "u@example.com", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if w := get(r, "/me", expired); w.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: status = %d, want 401", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	r := newAuthRig(t)

	user, _ := a.CreateAccessToken("user_1", a.RoleUser, "u@example.com", time.Hour)
	admin, _ := a.CreateAccessToken("admin_1", a.RoleAdmin, "a@example.com", time.Hour)

	if w := get(r, "/admin", user); w.Code != http.StatusForbidden {
		t.Fatalf("user on admin route: status = %d, want 403", w.Code)
	}
	if w := get(r, "/admin", admin); w.Code != http.StatusOK {
		t.Fatalf("admin on admin route: status = %d, want 200", w.Code)
	}
}

func TestOptionalJWT(t *testing.T) {
	r := newAuthRig(t)

	// Anonymous passes through with no identity.
	if w := get(r, "/open", ""); w.Code != http.StatusOK {
		t.Fatalf("anonymous: status = %d, want 200", w.Code)
	}
	// A bad token degrades to anonymous instead of rejecting.
	if w := get(r, "/open", "garbage"); w.Code != http.StatusOK {
		t.Fatalf("bad token: status = %d, want 200", w.Code)
	}

	tok, _ := a.CreateAccessToken("user_1", a.RoleUser, "u@example.com", time.Hour)
	w := get(r, "/open", tok)
	if w.Code != http.StatusOK {
		t.Fatalf("token: status = %d", w.Code)
	}
}
