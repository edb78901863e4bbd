package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/contentgrid/content-search/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func TestLocalAuthenticatorAcceptsValidToken(t *testing.T) {
	a, err := auth.NewLocalAuthenticator("secret")
	require.NoError(t, err)

	var principal auth.Principal
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, found = auth.PrincipalFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "secret", jwt.MapClaims{"sub": "userSite1"}))
	rec := httptest.NewRecorder()
	a.Authenticator(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, "userSite1", principal.ID)
}

func TestLocalAuthenticatorRejectsMissingToken(t *testing.T) {
	a, err := auth.NewLocalAuthenticator("secret")
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", nil)
	rec := httptest.NewRecorder()
	a.Authenticator(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLocalAuthenticatorRejectsWrongKey(t *testing.T) {
	a, err := auth.NewLocalAuthenticator("secret")
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "otherkey", jwt.MapClaims{"sub": "userSite1"}))
	rec := httptest.NewRecorder()
	a.Authenticator(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLocalAuthenticatorRejectsTokenWithoutSubject(t *testing.T) {
	a, err := auth.NewLocalAuthenticator("secret")
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "secret", jwt.MapClaims{}))
	rec := httptest.NewRecorder()
	a.Authenticator(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLocalAuthenticatorRequiresKey(t *testing.T) {
	_, err := auth.NewLocalAuthenticator("")
	assert.Error(t, err)
}
