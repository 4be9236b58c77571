package jwtutil

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// JWTConfig holds session token configuration
type JWTConfig struct {
	SigningKey string
	TTL        time.Duration
}

// SessionClaims represents the claims carried by a session cookie
type SessionClaims struct {
	Kind        string `json:"kind"`
	PrincipalID uint   `json:"pid"`
	Name        string `json:"name"`
	jwt.RegisteredClaims
}

// JWTUtil signs and validates session tokens
type JWTUtil struct {
	config *JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(config *JWTConfig) *JWTUtil {
	return &JWTUtil{
		config: config,
	}
}

// GenerateToken creates a signed token for a principal
func (j *JWTUtil) GenerateToken(kind string, principalID uint, name string) (string, error) {
	if j.config == nil || j.config.SigningKey == "" {
		return "", errors.New("JWT configuration not provided")
	}

	now := time.Now()
	claims := SessionClaims{
		Kind:        kind,
		PrincipalID: principalID,
		Name:        name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  kind + ":" + strconv.FormatUint(uint64(principalID), 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if j.config.TTL != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.config.TTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.SigningKey))
}

// ValidateToken validates a token and checks it was issued for the expected kind
func (j *JWTUtil) ValidateToken(tokenString, kind string) (*SessionClaims, error) {
	if j.config == nil || j.config.SigningKey == "" {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.SigningKey), nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Kind != kind || claims.PrincipalID == 0 {
		return nil, fmt.Errorf("token issued for %q, expected %q", claims.Kind, kind)
	}

	return claims, nil
}
