package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"os"
	"time"

	"tenor/apperr"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer     = "tenor"
	AccessTokenTTL  = 60 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

func CreateAccessToken(userID, email string, emailVerified bool) (string, error) {
	secret := []byte(os.Getenv("JWT_SECRET_KEY"))
	claims := &model.AccessClaims{
		UserID:        userID,
		Email:         email,
		EmailVerified: emailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func CreateRefreshToken(userID, email string) (string, error) {
	secret := []byte(os.Getenv("JWT_REFRESH_SECRET_KEY"))
	claims := &model.RefreshClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(RefreshTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// HashRefreshToken runs SHA-256 first because bcrypt only reads 72 bytes.
func HashRefreshToken(token string) (string, error) {
	sum := sha256.Sum256([]byte(token))
	hashed, err := bcrypt.GenerateFromPassword(sum[:], bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CompareRefreshToken(hash, token string) bool {
	sum := sha256.Sum256([]byte(token))
	return bcrypt.CompareHashAndPassword([]byte(hash), sum[:]) == nil
}

// IssueTokens creates a session and stores the refresh token hash.
func IssueTokens(ctx context.Context, fb *firestore.Client, userID, email string, emailVerified bool) (model.TokenResponse, error) {
	access, err := CreateAccessToken(userID, email, emailVerified)
	if err != nil {
		return model.TokenResponse{}, err
	}
	refresh, err := CreateRefreshToken(userID, email)
	if err != nil {
		return model.TokenResponse{}, err
	}
	hash, err := HashRefreshToken(refresh)
	if err != nil {
		return model.TokenResponse{}, err
	}

	now := time.Now()
	if _, err := RefreshTokenRef(fb, userID).Set(ctx, model.RefreshTokenRecord{
		Hash:          hash,
		EmailVerified: emailVerified,
		CreatedAt:     now,
		ExpiresAt:     now.Add(RefreshTokenTTL),
	}); err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(AccessTokenTTL.Seconds()),
	}, nil
}

// RefreshAccessToken checks the presented refresh token against the stored
// hash and returns a new access token.
func RefreshAccessToken(ctx context.Context, fb *firestore.Client, userID, email, refreshToken string) (model.TokenResponse, error) {
	snap, err := RefreshTokenRef(fb, userID).Get(ctx)
	if err != nil {
		if apperr.IsNotFound(err) {
			return model.TokenResponse{}, apperr.Unauthorized("Session not found")
		}
		return model.TokenResponse{}, err
	}
	var record model.RefreshTokenRecord
	if err := snap.DataTo(&record); err != nil {
		return model.TokenResponse{}, err
	}
	if record.Revoked || time.Now().After(record.ExpiresAt) {
		return model.TokenResponse{}, apperr.Unauthorized("Session expired")
	}
	if !CompareRefreshToken(record.Hash, refreshToken) {
		return model.TokenResponse{}, apperr.Unauthorized("Invalid refresh token")
	}

	access, err := CreateAccessToken(userID, email, record.EmailVerified)
	if err != nil {
		return model.TokenResponse{}, err
	}
	return model.TokenResponse{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(AccessTokenTTL.Seconds()),
	}, nil
}

func RevokeRefreshToken(ctx context.Context, fb *firestore.Client, userID string) error {
	_, err := RefreshTokenRef(fb, userID).Update(ctx, []firestore.Update{{Path: "revoked", Value: true}})
	if err != nil && !apperr.IsNotFound(err) {
		return err
	}
	return nil
}

var ErrInvalidToken = errors.New("invalid token")

// ParseAccessToken validates an access token signed with JWT_SECRET_KEY.
func ParseAccessToken(tokenString string) (*model.AccessClaims, error) {
	claims := &model.AccessClaims{}
	if err := parseToken(tokenString, os.Getenv("JWT_SECRET_KEY"), claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken validates a refresh token signed with
// JWT_REFRESH_SECRET_KEY.
func ParseRefreshToken(tokenString string) (*model.RefreshClaims, error) {
	claims := &model.RefreshClaims{}
	if err := parseToken(tokenString, os.Getenv("JWT_REFRESH_SECRET_KEY"), claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func parseToken(tokenString, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
