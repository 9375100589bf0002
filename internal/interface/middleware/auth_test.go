package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-movie-catalog/pkg/helpers"
)

const testSecret = "test-secret"

type fakeRevocations struct {
	revoked map[string]bool
	err     error
	calls   int
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.calls++
	return f.revoked[jti], f.err
}

func init() { gin.SetMode(gin.TestMode) }

func newEngine(resolver *IdentityResolver, optional bool) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	mw := resolver.Required()
	if optional {
		mw = resolver.Optional()
	}
	r.GET("/whoami", mw, func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"ok": ok, "id": id.ID, "email": id.Email})
	})
	return r
}

func issue(t *testing.T, uid, email string) (string, *helpers.Claims) {
	t.Helper()
	m := helpers.NewJWTManager(testSecret, time.Hour)
	token, _, err := m.GenerateAccessToken(uid, email)
	require.NoError(t, err)
	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	return token, claims
}

func do(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRequired_BearerHeader(t *testing.T) {
	resolver := NewIdentityResolver(helpers.NewJWTManager(testSecret, time.Hour), nil, nil)
	token, _ := issue(t, "u1", "u1@example.com")

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w, body := do(newEngine(resolver, false), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "u1", body["id"])
	assert.Equal(t, "u1@example.com", body["email"])
}

func TestRequired_CookieFallback(t *testing.T) {
	resolver := NewIdentityResolver(helpers.NewJWTManager(testSecret, time.Hour), nil, nil)
	token, _ := issue(t, "u2", "")

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	w, body := do(newEngine(resolver, false), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u2", body["id"])
}

func TestRequired_Rejects(t *testing.T) {
	resolver := NewIdentityResolver(helpers.NewJWTManager(testSecret, time.Hour), nil, nil)
	foreign, _, err := helpers.NewJWTManager("other", time.Hour).GenerateAccessToken("u1", "")
	require.NoError(t, err)
	expired, _, err := helpers.NewJWTManager(testSecret, -time.Minute).GenerateAccessToken("u1", "")
	require.NoError(t, err)
	noSubject, _, err := helpers.NewJWTManager(testSecret, time.Hour).GenerateAccessToken("", "x@example.com")
	require.NoError(t, err)

	cases := map[string]string{
		"missing":    "",
		"garbage":    "Bearer abc.def.ghi",
		"foreign":    "Bearer " + foreign,
		"expired":    "Bearer " + expired,
		"no subject": "Bearer " + noSubject,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w, body := do(newEngine(resolver, false), req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, float64(http.StatusUnauthorized), body["code"])
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Unauthorized!", body["message"])
			assert.NotEmpty(t, body["request_id"])
		})
	}
}

func TestRequired_Revocation(t *testing.T) {
	token, claims := issue(t, "u1", "")
	revs := &fakeRevocations{revoked: map[string]bool{claims.ID: true}}
	resolver := NewIdentityResolver(helpers.NewJWTManager(testSecret, time.Hour), revs, nil)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w, _ := do(newEngine(resolver, false), req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 1, revs.calls)

	other, _ := issue(t, "u1", "")
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	w, _ = do(newEngine(resolver, false), req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequired_RevocationLookupFailsClosed(t *testing.T) {
	token, _ := issue(t, "u1", "")
	revs := &fakeRevocations{err: errors.New("dial tcp 10.0.0.7:6379: connection refused")}
	logger, hook := test.NewNullLogger()
	resolver := NewIdentityResolver(helpers.NewJWTManager(testSecret, time.Hour), revs, logger)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w, body := do(newEngine(resolver, false), req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "revocation list unavailable", body["error"])
	assert.NotContains(t, w.Body.String(), "10.0.0.7")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
}

func TestOptional(t *testing.T) {
	resolver := NewIdentityResolver(helpers.NewJWTManager(testSecret, time.Hour), nil, nil)
	r := newEngine(resolver, true)

	w, body := do(r, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["ok"])

	token, _ := issue(t, "u3", "")
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "bearer "+token)
	w, body = do(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "u3", body["id"])
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Body.String()
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Header().Get("X-Request-ID"))

	const incoming = "6f1c2f0e-7f7e-4a58-9a0e-2b1f3c4d5e6f"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Body.String())
}
