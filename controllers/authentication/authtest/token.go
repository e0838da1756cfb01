// Package authtest mints provider style access tokens for tests.
package authtest

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"love-space-backend/controllers/authentication"
)

func Token(t testing.TB, secret, userID, email string) string {
	t.Helper()

	claims := &authentication.Claims{
		Email: email,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			Audience:  "authenticated",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
