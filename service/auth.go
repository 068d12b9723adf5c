package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gamecatalog/models"
	"gamecatalog/monitoring"
	"gamecatalog/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService registers users and exchanges credentials for tokens.
type AuthService interface {
	Register(ctx context.Context, login, password string) (*models.User, error)
	Login(ctx context.Context, login, password string) (string, error)
	// EnsureAdmin creates login as an admin, or promotes an existing user.
	EnsureAdmin(ctx context.Context, login, password string) (*models.User, error)
}

type authService struct {
	users      repository.UserRepository
	tokens     TokenService
	metrics    *monitoring.Metrics
	log        logrus.FieldLogger
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, tokens TokenService, metrics *monitoring.Metrics, log logrus.FieldLogger) AuthService {
	return &authService{users: users, tokens: tokens, metrics: metrics, log: log, bcryptCost: bcrypt.DefaultCost}
}

func normalizeCredentials(login, password string) (string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return "", validationError("Login and password are required")
	}
	return login, nil
}

func (s *authService) Register(ctx context.Context, login, password string) (*models.User, error) {
	login, err := normalizeCredentials(login, password)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByLogin(ctx, login); err == nil {
		return nil, newError(ErrConflict, "Login already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Login:        login,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Status:       models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "Login already exists")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "login": user.Login}).Info("User registered")
	return user, nil
}

func (s *authService) Login(ctx context.Context, login, password string) (token string, err error) {
	defer func() {
		if !errors.Is(err, ErrValidation) {
			s.metrics.AuthAttempt("login", err == nil)
		}
	}()

	login, err = normalizeCredentials(login, password)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if user.IsBlocked() {
		s.log.WithField("user_id", user.ID).Warn("Blocked user attempted to log in")
		return "", ErrInvalidCredentials
	}

	token, err = s.tokens.Issue(user)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, login, password string) (*models.User, error) {
	user, err := s.users.FindByLogin(ctx, strings.TrimSpace(login))
	switch {
	case err == nil:
		if err := s.users.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return nil, err
		}
		user.Role = models.RoleAdmin
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.Register(ctx, login, password)
		if err != nil {
			return nil, err
		}
		if err := s.users.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return nil, err
		}
		user.Role = models.RoleAdmin
	default:
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "login": user.Login}).Info("Admin ensured")
	return user, nil
}
