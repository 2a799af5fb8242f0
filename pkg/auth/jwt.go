package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ocupmed/queue-api/internal/model"
)

// Claims carried in an operator token. The access level travels with
// the token so a stale client can still be re-checked at mutation time.
type Claims struct {
	OperatorID  uuid.UUID         `json:"operator_id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	AccessLevel model.AccessLevel `json:"access_level"`
	jwt.RegisteredClaims
}

type JWTService interface {
	GenerateToken(operator *model.Operator) (string, error)
	ValidateToken(token string) (*Claims, error)
}

type jwtService struct {
	secret []byte
	expiry time.Duration
}

func NewJWTService(secret string, expiry time.Duration) JWTService {
	return &jwtService{secret: []byte(secret), expiry: expiry}
}

func (s *jwtService) GenerateToken(operator *model.Operator) (string, error) {
	now := time.Now()
	claims := &Claims{
		OperatorID:  operator.ID,
		Name:        operator.Name,
		Email:       operator.Email,
		AccessLevel: operator.AccessLevel,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
