package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "access-secret")

	token, err := CreateAccessToken("u1", "ana@tenor.dev", true)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken() error = %v", err)
	}
	if claims.UserID != "u1" || !claims.EmailVerified || claims.Issuer != "tenor" {
		t.Errorf("claims = %+v", claims)
	}
	if d := time.Until(claims.ExpiresAt.Time); d < 59*time.Minute || d > 61*time.Minute {
		t.Errorf("access token lifetime = %v", d)
	}
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET_KEY", "refresh-secret")

	refresh, err := CreateRefreshToken("u1", "ana@tenor.dev")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseAccessToken(refresh); err == nil {
		t.Error("refresh token must not pass as an access token")
	}
	if _, err := ParseRefreshToken(refresh); err != nil {
		t.Errorf("ParseRefreshToken() error = %v", err)
	}
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "access-secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"userId": "u1", "iss": "tenor"})
	signed, err := token.SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseAccessToken(signed); err == nil {
		t.Error("HS512 token should be rejected")
	}
}

func TestHashRefreshToken(t *testing.T) {
	hash, err := HashRefreshToken("token-value")
	if err != nil {
		t.Fatal(err)
	}
	if !CompareRefreshToken(hash, "token-value") {
		t.Error("CompareRefreshToken should accept the original token")
	}
	if CompareRefreshToken(hash, "other") {
		t.Error("CompareRefreshToken should reject another token")
	}
}
