package utils

import (
	"testing"

	"github.com/dgrijalva/jwt-go"
)

func TestGenerateAndSetTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenString, err := GenerateAndSetToken("user-123")
	if err != nil {
		t.Fatalf("GenerateAndSetToken: %v", err)
	}

	token, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse: %v (valid=%v)", err, token != nil && token.Valid)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("unexpected claims type")
	}
	if claims["user_id"] != "user-123" {
		t.Fatalf("user_id = %v, want user-123", claims["user_id"])
	}
}

func TestGenerateAndSetTokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := GenerateAndSetToken("user-123"); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}
