package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/placementhub/internal/pkg/auth"
	"github.com/yigit/placementhub/internal/pkg/search"
)

// UserService manages login accounts
type UserService interface {
	List(ctx context.Context, opts search.Options) (search.Page[*models.User], error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetActive(ctx context.Context, actor auth.Actor, id int64, active bool) (*models.User, error)
	ChangePassword(ctx context.Context, actor auth.Actor, req *dto.ChangePasswordRequest) error
}

type userService struct {
	userRepo  repositories.IUserRepository
	tokenRepo repositories.ITokenRepository
	logger    zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, tokenRepo repositories.ITokenRepository, logger zerolog.Logger) UserService {
	return &userService{userRepo: userRepo, tokenRepo: tokenRepo, logger: logger}
}

func (s *userService) List(ctx context.Context, opts search.Options) (search.Page[*models.User], error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return search.Page[*models.User]{}, err
	}
	return search.Run(users, opts), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SetActive enables or disables an account. Disabling signs the user out of
// every session; admins cannot disable themselves.
func (s *userService) SetActive(ctx context.Context, actor auth.Actor, id int64, active bool) (*models.User, error) {
	if !active && actor.UserID == id {
		return nil, apperrors.NewBadRequestError("you cannot disable your own account")
	}

	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	if !active {
		if err := s.tokenRepo.RevokeAllUserTokens(ctx, id); err != nil {
			s.logger.Warn().Err(err).Int64("userID", id).Msg("Failed to revoke sessions of disabled account")
		}
	}
	s.logger.Info().Int64("userID", id).Bool("active", active).Int64("by", actor.UserID).Msg("Account status changed")
	return s.userRepo.GetByID(ctx, id)
}

// ChangePassword replaces the caller's password after checking the current one
func (s *userService) ChangePassword(ctx context.Context, actor auth.Actor, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !pkgauth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.NewBadRequestError("current password is incorrect")
	}
	if req.CurrentPassword == req.NewPassword {
		return apperrors.NewBadRequestError("new password must differ from the current one")
	}

	hashed, err := pkgauth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", user.ID).Msg("Password changed")
	return nil
}
