package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const assertionLifetime = time.Hour

// BuildJWTBearerAssertion signs an RS256 bearer assertion for a
// service-to-service grant. The resource server credential's client secret
// must hold a PEM-encoded RSA private key; the client id becomes the
// issuer and the token endpoint the audience.
func BuildJWTBearerAssertion(credential OAuth2JWTBearerAssertionFlowResourceServerCredential, sub string, tokenURI string, now time.Time) (string, error) {
	issuer := strings.TrimSpace(credential.ClientID)
	if issuer == "" {
		return "", fmt.Errorf("core: client id is required to build an assertion")
	}
	tokenURI = strings.TrimSpace(tokenURI)
	if tokenURI == "" {
		return "", fmt.Errorf("core: token uri is required to build an assertion")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(credential.ClientSecret))
	if err != nil {
		return "", fmt.Errorf("core: parse assertion signing key: %w", err)
	}

	now = now.UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{tokenURI},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
	}
	if sub = strings.TrimSpace(sub); sub != "" {
		claims.Subject = sub
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("core: sign assertion: %w", err)
	}
	return signed, nil
}
