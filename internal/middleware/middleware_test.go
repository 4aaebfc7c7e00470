package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/utils"
)

const testSecret = "secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.New(rdb), mr
}

func issue(t *testing.T, ttl time.Duration) (string, *utils.Claims) {
	t.Helper()
	token, err := utils.GenerateJWT(models.User{ID: "u1", Email: "ada@example.com", Name: "Ada"}, testSecret, ttl)
	require.NoError(t, err)
	claims, _ := utils.ParseJWT(token, testSecret)
	return token, claims
}

func identityEcho(c *gin.Context) {
	id := IdentityFromContext(c)
	if id == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil, "owner": OwnerFromContext(c)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": id.UserID, "owner": OwnerFromContext(c), "guest": GuestOwnerFromContext(c)})
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	c, _ := newTestCache(t)
	r := gin.New()
	r.GET("/me", AuthRequired(testSecret, c), identityEcho)

	token, claims := issue(t, time.Hour)
	expired, _ := issue(t, -time.Minute)

	w := do(r, "GET", "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "GET", "/me", "", map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "GET", "/me", "", map[string]string{"Authorization": "Bearer " + expired})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "GET", "/me", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"u1"`)

	require.NoError(t, c.BlacklistToken(context.Background(), claims.ID, time.Hour))
	w = do(r, "GET", "/me", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestOptionalAuthAndOwner(t *testing.T) {
	c, _ := newTestCache(t)
	r := gin.New()
	r.GET("/cart", OptionalAuth(testSecret, c), Owner(false), identityEcho)

	// visiteur sans guest id : un id est créé et posé en cookie
	w := do(r, "GET", "/cart", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	guestID := w.Header().Get(GuestHeader)
	require.NotEmpty(t, guestID)
	assert.Contains(t, w.Header().Get("Set-Cookie"), GuestCookie+"="+guestID)
	assert.Contains(t, w.Body.String(), `"owner":"guest:`+guestID+`"`)

	// le même guest id est réutilisé
	w = do(r, "GET", "/cart", "", map[string]string{GuestHeader: guestID})
	assert.Equal(t, guestID, w.Header().Get(GuestHeader))
	assert.Empty(t, w.Header().Get("Set-Cookie"))

	// un token invalide ne rejette pas la requête
	w = do(r, "GET", "/cart", "", map[string]string{"Authorization": "Bearer nope", GuestHeader: guestID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":null`)

	// connecté : stockage du compte, guest conservé pour l'adoption
	token, _ := issue(t, time.Hour)
	w = do(r, "GET", "/cart", "", map[string]string{"Authorization": "Bearer " + token, GuestHeader: guestID})
	assert.Contains(t, w.Body.String(), `"owner":"user:u1"`)
	assert.Contains(t, w.Body.String(), `"guest":"guest:`+guestID+`"`)

	// un guest id mal formé est remplacé
	w = do(r, "GET", "/cart", "", map[string]string{GuestHeader: "../../etc"})
	assert.NotEqual(t, "../../etc", w.Header().Get(GuestHeader))
}

func TestWebsocketQueryCredentials(t *testing.T) {
	c, _ := newTestCache(t)
	r := gin.New()
	r.GET("/sync", OptionalAuth(testSecret, c), Owner(false), identityEcho)

	token, _ := issue(t, time.Hour)
	guestID := "0b7f3c1e-5a4d-4c2b-9e8f-1a2b3c4d5e6f"
	path := "/sync?access_token=" + token + "&guest_id=" + guestID

	// requête HTTP classique : la query est ignorée
	w := do(r, "GET", path, "", nil)
	assert.Contains(t, w.Body.String(), `"user":null`)
	assert.NotEqual(t, guestID, w.Header().Get(GuestHeader))

	w = do(r, "GET", path, "", map[string]string{"Upgrade": "websocket"})
	assert.Contains(t, w.Body.String(), `"user":"u1"`)
	assert.Equal(t, guestID, w.Header().Get(GuestHeader))
}

func TestLoginRateLimit(t *testing.T) {
	c, mr := newTestCache(t)
	r := gin.New()
	r.POST("/login", LoginRateLimit(c), func(c *gin.Context) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = c.ShouldBindJSON(&in)
		if in.Password != "good" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	bad := `{"email":"ada@example.com","password":"bad"}`
	for i := 0; i < LoginMaxAttempts; i++ {
		w := do(r, "POST", "/login", bad, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i+1)
	}

	w := do(r, "POST", "/login", `{"email":"ada@example.com","password":"good"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.True(t, mr.Exists("login_cooldown:ada@example.com"))

	w = do(r, "POST", "/login", `{"email":"ADA@example.com","password":"good"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	mr.FastForward(LoginCooldown + time.Second)
	w = do(r, "POST", "/login", `{"email":"ada@example.com","password":"good"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchRateLimit(t *testing.T) {
	c, _ := newTestCache(t)
	r := gin.New()
	r.GET("/search", SearchRateLimit(c), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < SearchMaxRequests; i++ {
		require.Equal(t, http.StatusOK, do(r, "GET", "/search", "", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(r, "GET", "/search", "", nil).Code)
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (a *recordingAuditor) Record(entry models.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func TestAuditAction(t *testing.T) {
	auditor := &recordingAuditor{}
	r := gin.New()
	r.POST("/ok", AuditAction(auditor, utils.ActionOrderCreate, utils.ResourceOrder), func(c *gin.Context) {
		c.Set(AuditResourceKey, "chk-1")
		c.Status(http.StatusCreated)
	})
	r.POST("/ko/:id", AuditAction(auditor, utils.ActionCommentCreate, utils.ResourceComment), func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusInternalServerError)
	})

	do(r, "POST", "/ok", "", nil)
	do(r, "POST", "/ko/p1", "", nil)

	require.Len(t, auditor.entries, 2)
	assert.True(t, auditor.entries[0].Success)
	assert.Equal(t, "chk-1", auditor.entries[0].ResourceID)
	assert.False(t, auditor.entries[1].Success)
	assert.Equal(t, "p1", auditor.entries[1].ResourceID)
	assert.Equal(t, "boom", auditor.entries[1].ErrorMsg)
}
