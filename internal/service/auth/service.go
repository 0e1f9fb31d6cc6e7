package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/auth"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/jwt"
)

// AuthServiceImpl verifies the single dashboard credential configured for
// the deployment and issues access tokens for it.
type AuthServiceImpl struct {
	email        string
	passwordHash string
	jwtService   jwt.Service
}

func NewAuthService(email, passwordHash string, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		email:        email,
		passwordHash: passwordHash,
		jwtService:   jwtService,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	if !strings.EqualFold(strings.TrimSpace(req.Email), s.email) {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(s.email)
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}
