package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session tokens live for 30 days. There is no refresh flow; revocation is
// handled by the token_version claim checked against the account record.
const TokenExpiry = 30 * 24 * time.Hour

// Claims carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
	AccountID    uuid.UUID `json:"account_id"`
	Role         string    `json:"role"`
	TokenVersion int       `json:"token_version"`
}

// JWTService issues and verifies session tokens.
type JWTService interface {
	GenerateToken(accountID uuid.UUID, role string, tokenVersion int) (string, error)
	ValidateToken(token string) (*Claims, error)
}

type jwtService struct {
	secret []byte
	expiry time.Duration
}

// NewJWTService creates a JWTService signing with HS256.
func NewJWTService(secret string, expiry time.Duration) JWTService {
	if expiry == 0 {
		expiry = TokenExpiry
	}
	return &jwtService{secret: []byte(secret), expiry: expiry}
}

func (s *jwtService) GenerateToken(accountID uuid.UUID, role string, tokenVersion int) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		AccountID:    accountID,
		Role:         role,
		TokenVersion: tokenVersion,
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
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.AccountID == uuid.Nil {
		return nil, fmt.Errorf("token missing account id")
	}
	return claims, nil
}
