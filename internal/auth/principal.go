package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

type principalKeyType struct{}

var (
	principalKey principalKeyType
)

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	val := ctx.Value(principalKey)
	if val == nil {
		return Principal{}, false
	}
	return val.(Principal), true
}

func NewPrincipalContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Principal is the authenticated identity issuing requests against the
// query boundary.
type Principal struct {
	ID    string
	Token *jwt.Token
}
