package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jolanboyev/ehson-backend/internal/models"
	"github.com/jolanboyev/ehson-backend/internal/repository"
)

type UserService struct {
	users *repository.UserRepository
}

func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register records a user on first bot interaction. Repeat calls keep the
// original row.
func (s *UserService) Register(ctx context.Context, telegramID int64, username, firstName string) error {
	user := &models.User{
		UserID:    strconv.FormatInt(telegramID, 10),
		Username:  username,
		FirstName: firstName,
		CreatedAt: time.Now(),
	}
	if err := s.users.Register(ctx, user); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}
