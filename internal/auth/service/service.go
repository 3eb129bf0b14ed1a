// Package service implements the credential login gating the API.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ivanjorgee/maxconnect/internal/auth/repository"
	"github.com/ivanjorgee/maxconnect/internal/auth/transport"
	"github.com/ivanjorgee/maxconnect/platform/apperr"
	"github.com/ivanjorgee/maxconnect/platform/config"
	"github.com/ivanjorgee/maxconnect/platform/logger"
)

const accessTokenType = "access"

type Service struct {
	repo *repository.Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// SignIn checks the credentials and issues a short-lived access token.
// Unknown emails and bad passwords are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, req transport.SignInRequest) (transport.AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.AuthEvent("sign_in", req.Email, false, "unknown email")
		return transport.AuthResponse{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return transport.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.AuthEvent("sign_in", req.Email, false, "wrong password")
		return transport.AuthResponse{}, apperr.Unauthorized("invalid credentials")
	}

	token, err := s.signJWT(user.ID)
	if err != nil {
		return transport.AuthResponse{}, err
	}

	s.log.AuthEvent("sign_in", req.Email, true, "")
	return transport.AuthResponse{AccessToken: token}, nil
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (transport.ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.ProfileResponse{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	return transport.ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *Service) signJWT(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"type": accessTokenType,
		"exp":  now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":  now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
