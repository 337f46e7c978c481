package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthenticatedRole is both the audience and the role Supabase Auth puts on
// tokens issued to signed-in users. Anon and service_role keys carry other roles.
const AuthenticatedRole = "authenticated"

// Claims is the subset of a Supabase access token the service relies on.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrNoVerificationKey = errors.New("no verification key configured")
	ErrNotUserToken      = errors.New("token is not a signed-in user token")
)

// ValidateJWT verifies a Supabase user access token. keyMaterial is the
// project's shared secret for HS* tokens, or a PEM public key for the
// asymmetric RS* and ES* signing keys.
func ValidateJWT(tokenString string, keyMaterial string) (*Claims, error) {
	if keyMaterial == "" {
		return nil, ErrNoVerificationKey
	}

	keyFunc := func(token *jwt.Token) (any, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if strings.HasPrefix(strings.TrimSpace(keyMaterial), "-----BEGIN") {
				return nil, errors.New("HMAC token presented but a public key is configured")
			}
			return []byte(keyMaterial), nil
		case *jwt.SigningMethodRSA:
			return jwt.ParseRSAPublicKeyFromPEM([]byte(keyMaterial))
		case *jwt.SigningMethodECDSA:
			return jwt.ParseECPublicKeyFromPEM([]byte(keyMaterial))
		default:
			return nil, fmt.Errorf("unsupported signing algorithm %q", token.Header["alg"])
		}
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512", "RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}),
		jwt.WithAudience(AuthenticatedRole),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	if claims.Role != AuthenticatedRole {
		return nil, fmt.Errorf("%w: role %q", ErrNotUserToken, claims.Role)
	}
	return claims, nil
}
