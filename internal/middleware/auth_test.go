package middleware

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartograph/internal/auth"
	"cartograph/internal/domain/models"
	"cartograph/internal/httputil"
)

const devUser = "00000000-0000-0000-0000-000000000001"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoUser writes the resolved user ID as the body
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = io.WriteString(w, httputil.GetUserID(r))
})

type signer struct {
	key *ecdsa.PrivateKey
}

func newSigner(t *testing.T) *signer {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return &signer{key: key}
}

func (s *signer) verifier() auth.JWTVerifier {
	return auth.NewKeyfuncVerifier(func(*jwt.Token) (any, error) {
		return &s.key.PublicKey, nil
	}, quietLogger())
}

func (s *signer) token(t *testing.T, subject, role string, ttl time.Duration) string {
	t.Helper()
	claims := models.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(s.key)
	require.NoError(t, err)
	return signed
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestAuthMiddleware_DevUserWithoutVerifier(t *testing.T) {
	h := AuthMiddleware(nil, devUser, quietLogger())(echoUser)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/views/x", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, devUser, rec.Body.String())
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	s := newSigner(t)
	h := AuthMiddleware(s.verifier(), devUser, quietLogger())(echoUser)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/p1/views", nil)
	req.Header.Set("Authorization", "Bearer "+s.token(t, "user-42", "authenticated", time.Hour))
	rec := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", rec.Body.String())
}

func TestAuthMiddleware_QueryTokenOnlyForGet(t *testing.T) {
	s := newSigner(t)
	h := AuthMiddleware(s.verifier(), devUser, quietLogger())(echoUser)
	token := s.token(t, "user-42", "authenticated", time.Hour)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/views/v1/stream?access_token="+token, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/api/views/v1/reload?access_token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	s := newSigner(t)
	h := AuthMiddleware(s.verifier(), devUser, quietLogger())(echoUser)

	cases := map[string]string{
		"missing":   "",
		"malformed": "Bearer not-a-jwt",
		"expired":   "Bearer " + s.token(t, "user-42", "authenticated", -time.Minute),
		"anonymous": "Bearer " + s.token(t, "user-42", "anon", time.Hour),
		"no sub":    "Bearer " + s.token(t, "", "authenticated", time.Hour),
		"basic":     "Basic dXNlcjpwYXNz",
		"wrong key": "Bearer " + newSigner(t).token(t, "user-42", "authenticated", time.Hour),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/views/v1", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := serve(h, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestAuthMiddleware_PublicPathsAndPreflight(t *testing.T) {
	h := AuthMiddleware(newSigner(t).verifier(), devUser, quietLogger())(echoUser)

	for _, path := range []string{"/health", "/metrics"} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Empty(t, rec.Body.String(), "public paths carry no identity")
	}

	rec := serve(h, httptest.NewRequest(http.MethodOptions, "/api/views/v1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery(t *testing.T) {
	h := Recovery(quietLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("layout exploded")
	}))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/views/v1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "layout exploded")
	assert.Contains(t, rec.Body.String(), `"instance":"/api/views/v1"`)
}

func TestRecovery_AbortHandlerPropagates(t *testing.T) {
	h := Recovery(quietLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRecovery_AfterResponseStartedAborts(t *testing.T) {
	h := Recovery(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		panic("frame encoder broke")
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		serve(h, httptest.NewRequest(http.MethodGet, "/api/views/v1/stream", nil))
	})
}

func TestRequestLogger_KeepsFlusher(t *testing.T) {
	var flushed bool
	h := RequestLogger(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		require.True(t, ok)
		w.WriteHeader(http.StatusTeapot)
		f.Flush()
		flushed = true
	}))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, flushed)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.True(t, rec.Flushed)
}
