package service

import (
	"context"

	"gamecatalog/concurrent"
	"gamecatalog/models"
	"gamecatalog/repository"

	"github.com/sirupsen/logrus"
)

// UserService covers admin user management and the dashboard.
type UserService interface {
	ListAll(ctx context.Context, p *models.Principal) ([]models.User, error)
	SetStatus(ctx context.Context, p *models.Principal, userID uint, status string) error
	DashboardStats(ctx context.Context, p *models.Principal) (*models.DashboardStats, error)
}

type userService struct {
	users repository.UserRepository
	stats repository.StatsRepository
	log   logrus.FieldLogger
}

func NewUserService(users repository.UserRepository, stats repository.StatsRepository, log logrus.FieldLogger) UserService {
	return &userService{users: users, stats: stats, log: log}
}

func (s *userService) ListAll(ctx context.Context, p *models.Principal) ([]models.User, error) {
	if err := AuthorizeAdmin(p); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// SetStatus blocks or unblocks a user. Tokens already issued to a blocked
// user stay valid until they expire; only new logins are refused.
func (s *userService) SetStatus(ctx context.Context, p *models.Principal, userID uint, status string) error {
	if err := AuthorizeAdmin(p); err != nil {
		return err
	}
	if !models.ValidUserStatus(status) {
		return newError(ErrInvalidStatus, "Invalid status %q", status)
	}
	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		return notFound(err, "User not found")
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"status":   status,
		"admin_id": p.ID,
	}).Info("User status changed")
	return nil
}

func (s *userService) DashboardStats(ctx context.Context, p *models.Principal) (*models.DashboardStats, error) {
	if err := AuthorizeAdmin(p); err != nil {
		return nil, err
	}
	return concurrent.CalculateDashboardStats(ctx, s.stats)
}
