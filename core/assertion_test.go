package core

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testRSAKeyPEM(t *testing.T) (string, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	encoded := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return string(encoded), key
}

func TestBuildJWTBearerAssertion(t *testing.T) {
	keyPEM, key := testRSAKeyPEM(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	signed, err := BuildJWTBearerAssertion(
		OAuth2JWTBearerAssertionFlowResourceServerCredential{
			ClientID:     "service_account_1",
			ClientSecret: keyPEM,
		},
		"user_1",
		"https://accounts.example.test/token",
		now,
	)
	if err != nil {
		t.Fatalf("build assertion: %v", err)
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(signed, &claims, func(token *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("parse assertion: %v", err)
	}
	if !parsed.Valid {
		t.Fatalf("expected a valid token")
	}

	if claims.Issuer != "service_account_1" {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != "https://accounts.example.test/token" {
		t.Fatalf("unexpected audience %v", claims.Audience)
	}
	if claims.Subject != "user_1" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.IssuedAt == nil || !claims.IssuedAt.Time.Equal(now) {
		t.Fatalf("unexpected issued-at %v", claims.IssuedAt)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", claims.ExpiresAt)
	}
}

func TestBuildJWTBearerAssertion_OmitsBlankSubject(t *testing.T) {
	keyPEM, key := testRSAKeyPEM(t)
	now := time.Now().UTC()

	signed, err := BuildJWTBearerAssertion(
		OAuth2JWTBearerAssertionFlowResourceServerCredential{
			ClientID:     "service_account_1",
			ClientSecret: keyPEM,
		},
		"   ",
		"https://accounts.example.test/token",
		now,
	)
	if err != nil {
		t.Fatalf("build assertion: %v", err)
	}

	claims := jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(signed, &claims, func(*jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}); err != nil {
		t.Fatalf("parse assertion: %v", err)
	}
	if claims.Subject != "" {
		t.Fatalf("blank subject must be omitted, got %q", claims.Subject)
	}
}

func TestBuildJWTBearerAssertion_Rejections(t *testing.T) {
	keyPEM, _ := testRSAKeyPEM(t)
	now := time.Now().UTC()

	_, err := BuildJWTBearerAssertion(
		OAuth2JWTBearerAssertionFlowResourceServerCredential{ClientSecret: keyPEM},
		"", "https://accounts.example.test/token", now,
	)
	if err == nil {
		t.Fatalf("expected missing client id to be rejected")
	}

	_, err = BuildJWTBearerAssertion(
		OAuth2JWTBearerAssertionFlowResourceServerCredential{ClientID: "svc", ClientSecret: keyPEM},
		"", "  ", now,
	)
	if err == nil {
		t.Fatalf("expected missing token uri to be rejected")
	}

	_, err = BuildJWTBearerAssertion(
		OAuth2JWTBearerAssertionFlowResourceServerCredential{ClientID: "svc", ClientSecret: "not a pem key"},
		"", "https://accounts.example.test/token", now,
	)
	if err == nil {
		t.Fatalf("expected malformed signing key to be rejected")
	}
}
