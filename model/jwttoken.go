package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenResponse struct {
	UserID       string `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds
}

type AccessClaims struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshTokenRecord is stored in refreshTokens/{uid}. Only a hash of the
// token is kept.
type RefreshTokenRecord struct {
	Hash          string    `firestore:"hash"`
	EmailVerified bool      `firestore:"emailVerified"`
	CreatedAt     time.Time `firestore:"createdAt"`
	ExpiresAt     time.Time `firestore:"expiresAt"`
	Revoked       bool      `firestore:"revoked"`
}
