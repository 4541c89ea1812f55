package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer produces session tokens. Tokens are treated as opaque values by
// the rest of the system: they are stored on the user record, compared by
// value, and rotated on every successful create or login.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// NewTokenIssuer selects the issuer for the configured format.
func NewTokenIssuer(format, jwtSecret string) (TokenIssuer, error) {
	switch format {
	case "", "opaque":
		return OpaqueTokenIssuer{}, nil
	case "jwt":
		return &JWTTokenIssuer{secret: []byte(jwtSecret)}, nil
	default:
		return nil, fmt.Errorf("unknown token format %q", format)
	}
}

// OpaqueTokenIssuer issues random uuid tokens.
type OpaqueTokenIssuer struct{}

// Issue returns a fresh uuid string.
func (OpaqueTokenIssuer) Issue(_ string) (string, error) {
	return uuid.NewString(), nil
}

// JWTTokenIssuer issues signed HS256 tokens. The uuid jti keeps every issued
// token unique even for the same subject, so token-uniqueness semantics match
// the opaque format.
type JWTTokenIssuer struct {
	secret []byte
}

// Claims describes the JWT payload.
type Claims struct {
	jwt.RegisteredClaims
}

// Issue builds and signs a JWT for the user.
func (i *JWTTokenIssuer) Issue(username string) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  username,
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse validates a JWT-format token and returns its claims. Only used by
// tooling and tests; request handling resolves tokens by stored value.
func (i *JWTTokenIssuer) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Method)
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
