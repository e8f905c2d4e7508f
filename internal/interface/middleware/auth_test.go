package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/quizhub/pkg/helpers"
)

func newAuthTestServer(t *testing.T) (*gin.Engine, *helpers.JWTManager, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	jwt := helpers.NewJWTManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)

	r := gin.New()
	r.GET("/gated", Auth(rdb, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userID"))
	})
	return r, jwt, mr
}

func seedSession(t *testing.T, mr *miniredis.Miniredis, userID, sid string) {
	t.Helper()
	key := helpers.SessionKey(userID)
	mr.HSet(key, "user_id", userID)
	mr.HSet(key, "email", "prof@karunya.edu")
	mr.HSet(key, "name", "Prof")
	mr.HSet(key, "role", "teacher")
	mr.HSet(key, "sid", sid)
	mr.HSet(key, "logged_in", "1")
}

func gatedRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAllowsLiveSession(t *testing.T) {
	r, jwt, mr := newAuthTestServer(t)

	token, _, err := jwt.GenerateAccessToken("user-1", "teacher", "sid-1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	seedSession(t, mr, "user-1", "sid-1")

	w := gatedRequest(r, token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "user-1" {
		t.Errorf("body = %q, want the session user id", w.Body.String())
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	r, _, _ := newAuthTestServer(t)
	if w := gatedRequest(r, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	r, _, _ := newAuthTestServer(t)
	if w := gatedRequest(r, "not-a-jwt"); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsAfterSessionDeleted(t *testing.T) {
	r, jwt, mr := newAuthTestServer(t)

	token, _, err := jwt.GenerateAccessToken("user-1", "teacher", "sid-1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	seedSession(t, mr, "user-1", "sid-1")
	if w := gatedRequest(r, token); w.Code != http.StatusOK {
		t.Fatalf("pre-logout status = %d, want 200", w.Code)
	}

	// Logout deletes the hash; the unexpired token must stop working.
	mr.Del(helpers.SessionKey("user-1"))
	if w := gatedRequest(r, token); w.Code != http.StatusUnauthorized {
		t.Fatalf("post-logout status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsStaleSessionID(t *testing.T) {
	r, jwt, mr := newAuthTestServer(t)

	token, _, err := jwt.GenerateAccessToken("user-1", "teacher", "sid-old")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	// A newer login rotated the sid; tokens from the old session are out.
	seedSession(t, mr, "user-1", "sid-new")

	if w := gatedRequest(r, token); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for a rotated session", w.Code)
	}
}
