package auth

import (
	"net/http"
)

// NoneAuthenticator passes requests through without an authenticated
// principal. Used in dev and tests, where the search request body names
// the requesting principal directly.
type NoneAuthenticator struct{}

func NewNoneAuthenticator() (*NoneAuthenticator, error) {
	return &NoneAuthenticator{}, nil
}

func (n *NoneAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
	})
}
