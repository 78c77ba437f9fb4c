package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// Claims carries the principal issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
}

// GenerateToken signs an HS256 token for p. The server itself never issues
// tokens to clients; this exists for operators and tests.
func GenerateToken(p models.Principal, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: p.ID,
		Name:   p.Name,
		Role:   string(p.Role),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates tokenString and returns the principal it names.
func ParseToken(tokenString string, secretKey []byte) (models.Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Principal{}, common.ErrTokenExpired
		}
		return models.Principal{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return models.Principal{}, common.ErrInvalidToken
	}

	p := models.Principal{ID: claims.UserID, Name: claims.Name, Role: models.Role(claims.Role)}
	if p.ID == "" || !p.Role.Valid() {
		return models.Principal{}, fmt.Errorf("%w: missing subject or unknown role %q", common.ErrInvalidToken, claims.Role)
	}
	return p, nil
}
