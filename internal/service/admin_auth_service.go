package service

import (
	"fmt"

	"appointments/internal/auth"
	apperrors "appointments/internal/errors"
	"appointments/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AdminAuthService interface {
	Login(email, password string) (string, error)
}

type adminAuthService struct {
	repo   repository.AdminAuthRepository
	tokens *auth.TokenManager
	log    *zap.Logger
}

func NewAdminAuthService(repo repository.AdminAuthRepository, tokens *auth.TokenManager, log *zap.Logger) AdminAuthService {
	return &adminAuthService{repo: repo, tokens: tokens, log: log}
}

func (s *adminAuthService) Login(email, password string) (string, error) {
	admin, err := s.repo.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if admin == nil {
		s.log.Info("admin.auth: unknown admin", zap.String("email", email))
		return "", apperrors.ErrInvalidCreds
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.log.Info("admin.auth: wrong password", zap.String("email", email))
		return "", apperrors.ErrInvalidCreds
	}

	token, err := s.tokens.Issue(auth.Principal{
		DisplayName: admin.Name,
		Email:       admin.Email,
		IsAdmin:     true,
	})
	if err != nil {
		return "", fmt.Errorf("issuing admin token: %w", err)
	}
	return token, nil
}
