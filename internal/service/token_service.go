package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/eventhub/internal/config"
	"github.com/mansoorceksport/eventhub/internal/domain"
)

// TokenService issues and validates the HS256 access tokens handed out at login
type TokenService struct {
	jwtConfig config.JWTConfig
	now       func() time.Time
}

// NewTokenService creates a new token service
func NewTokenService(jwtConfig config.JWTConfig) *TokenService {
	return &TokenService{
		jwtConfig: jwtConfig,
		now:       time.Now,
	}
}

// AccessToken is a signed token and its lifetime in seconds
type AccessToken struct {
	Token     string `json:"access_token"`
	ExpiresIn int64  `json:"expires_in"`
}

// IssueAccessToken signs a token carrying the user's ID, email and roles
func (s *TokenService) IssueAccessToken(user *domain.User) (*AccessToken, error) {
	now := s.now()
	claims := domain.AccessClaims{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AccessToken{
		Token:     signed,
		ExpiresIn: int64(s.jwtConfig.AccessTokenExpiry.Seconds()),
	}, nil
}

// ParseAccessToken validates signature, algorithm and expiry
func (s *TokenService) ParseAccessToken(tokenString string) (*domain.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*domain.AccessClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	return claims, nil
}
