package jwt

import (
	"testing"

	"health-program-api/config"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})
	userID := uuid.New()

	signed, tokenID, err := svc.GenerateToken(userID, "drsmith")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ValidateToken(signed)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID || claims.Username != "drsmith" || claims.TokenID != tokenID {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt != nil {
		t.Errorf("token should not expire, got %v", claims.ExpiresAt)
	}
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	signed, _, err := NewJWTService(config.JWTConfig{Secret: "one"}).GenerateToken(uuid.New(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewJWTService(config.JWTConfig{Secret: "two"}).ValidateToken(signed); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestValidateTokenRejectsMissingTokenID(t *testing.T) {
	claims := Claims{
		UserID:           uuid.New(),
		RegisteredClaims: gojwt.RegisteredClaims{Issuer: issuer},
	}
	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewJWTService(config.JWTConfig{Secret: "s"}).ValidateToken(signed); err == nil {
		t.Fatal("expected error for token without token id")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := NewJWTService(config.JWTConfig{Secret: "s"}).ValidateToken("not-a-token"); err == nil {
		t.Fatal("expected error")
	}
}
