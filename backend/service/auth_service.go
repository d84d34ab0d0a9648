package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"derma-detect/backend/common"
	"derma-detect/backend/model"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "derma-detect"

// TokenClaims are the claims embedded in access and refresh tokens.
type TokenClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   int    `json:"role"`
	jwt.RegisteredClaims
}

func GenerateToken(user *model.User) (string, error) {
	return generateWithSecret(user, common.JWTSecret, common.JWTExpiry)
}

func GenerateRefreshToken(user *model.User) (string, error) {
	return generateWithSecret(user, common.JWTRefreshSecret, common.JWTRefreshExpiry)
}

func generateWithSecret(user *model.User, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenString string) (*TokenClaims, error) {
	return validateWithSecret(tokenString, common.JWTSecret)
}

func ValidateRefreshToken(tokenString string) (*TokenClaims, error) {
	return validateWithSecret(tokenString, common.JWTRefreshSecret)
}

func validateWithSecret(tokenString string, secret string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// BlacklistToken invalidates tokenString until it would have expired anyway.
// A no-op when Redis is not configured.
func BlacklistToken(ctx context.Context, tokenString string) error {
	if !common.RedisEnabled || common.RDB == nil {
		return nil
	}
	claims, err := ValidateToken(tokenString)
	if err != nil {
		// Already unusable, nothing to blacklist.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return common.RDB.Set(ctx, "jwt:blacklist:"+tokenString, "1", ttl).Err()
}

func IsTokenBlacklisted(ctx context.Context, tokenString string) bool {
	if !common.RedisEnabled || common.RDB == nil {
		return false
	}
	blacklisted, err := common.RDB.Exists(ctx, "jwt:blacklist:"+tokenString).Result()
	return err == nil && blacklisted > 0
}
