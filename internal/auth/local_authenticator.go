package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// LocalAuthenticator validates HS256 bearer tokens signed with a shared
// key and takes the requesting principal from the sub claim.
type LocalAuthenticator struct {
	key []byte
}

func NewLocalAuthenticator(key string) (*LocalAuthenticator, error) {
	if key == "" {
		return nil, errors.New("local authentication requires a signing key")
	}
	return &LocalAuthenticator{key: []byte(key)}, nil
}

func (a *LocalAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.authenticate(r.Header.Get("Authorization"))
		if err != nil {
			zap.S().Named("auth").Warnw("failed to authenticate request", "error", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := NewPrincipalContext(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *LocalAuthenticator) authenticate(header string) (Principal, error) {
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return Principal{}, errors.New("missing bearer token")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.key, nil
	})
	if err != nil {
		return Principal{}, err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return Principal{}, errors.New("token has no subject")
	}

	return Principal{ID: sub, Token: token}, nil
}
