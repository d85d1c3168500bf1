package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/auth"
	"github.com/yigit/placementhub/internal/pkg/email"
)

const (
	// VerificationTokenTTL is how long an email verification link stays valid
	VerificationTokenTTL = 24 * time.Hour
	// PasswordResetTokenTTL is how long a password reset link stays valid
	PasswordResetTokenTTL = time.Hour
)

// AuthService handles registration, login and token lifecycle
type AuthService interface {
	RegisterStudent(ctx context.Context, req *dto.RegisterStudentRequest) (*dto.AuthResponse, error)
	RegisterCompany(ctx context.Context, req *dto.RegisterCompanyRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, emailAddr string) error
	ForgotPassword(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
}

type authService struct {
	userRepo         repositories.IUserRepository
	tokenRepo        repositories.ITokenRepository
	verificationRepo repositories.IVerificationTokenRepository
	resetRepo        repositories.IPasswordResetTokenRepository
	studentRepo      repositories.IStudentRepository
	companyRepo      repositories.ICompanyRepository
	jwtService       *auth.JWTService
	emailService     email.EmailService
	logger           zerolog.Logger
	now              func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	verificationRepo repositories.IVerificationTokenRepository,
	resetRepo repositories.IPasswordResetTokenRepository,
	studentRepo repositories.IStudentRepository,
	companyRepo repositories.ICompanyRepository,
	jwtService *auth.JWTService,
	emailService email.EmailService,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		tokenRepo:        tokenRepo,
		verificationRepo: verificationRepo,
		resetRepo:        resetRepo,
		studentRepo:      studentRepo,
		companyRepo:      companyRepo,
		jwtService:       jwtService,
		emailService:     emailService,
		logger:           logger,
		now:              time.Now,
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (s *authService) newUser(ctx context.Context, emailAddr, password, first, last string, role models.RoleType) (*models.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	exists, err := s.userRepo.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	return &models.User{
		Email:     emailAddr,
		Password:  hashed,
		FirstName: strings.TrimSpace(first),
		LastName:  strings.TrimSpace(last),
		RoleType:  role,
		IsActive:  true,
	}, nil
}

// RegisterStudent creates a student login. An existing student record with
// the same roll number and no login is linked instead of duplicated.
func (s *authService) RegisterStudent(ctx context.Context, req *dto.RegisterStudentRequest) (*dto.AuthResponse, error) {
	user, err := s.newUser(ctx, req.Email, req.Password, req.FirstName, req.LastName, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		Name:            user.FullName(),
		Email:           user.Email,
		RollNumber:      strings.ToUpper(strings.TrimSpace(req.RollNumber)),
		Department:      strings.TrimSpace(req.Department),
		CGPA:            req.CGPA,
		GraduationYear:  req.GraduationYear,
		PlacementStatus: models.PlacementUnplaced,
		Skills:          []string{},
	}
	if err := s.userRepo.CreateStudentAccount(ctx, user, student); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", user.ID).Int64("studentID", student.ID).Msg("Student registered")

	s.sendVerification(ctx, user)
	return s.authResponse(ctx, user)
}

// RegisterCompany creates a recruiter login together with its company
func (s *authService) RegisterCompany(ctx context.Context, req *dto.RegisterCompanyRequest) (*dto.AuthResponse, error) {
	user, err := s.newUser(ctx, req.Email, req.Password, req.FirstName, req.LastName, models.RoleCompany)
	if err != nil {
		return nil, err
	}

	company := &models.Company{
		Name:         strings.TrimSpace(req.CompanyName),
		Industry:     strings.TrimSpace(req.Industry),
		ContactEmail: user.Email,
		Locations:    []string{},
		Status:       models.CompanyActive,
	}
	if err := s.userRepo.CreateCompanyAccount(ctx, user, company); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", user.ID).Int64("companyID", company.ID).Msg("Company registered")

	s.sendVerification(ctx, user)
	return s.authResponse(ctx, user)
}

// Login authenticates a user by email and password
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	}
	return s.authResponse(ctx, user)
}

// RefreshToken rotates a refresh token and issues a new pair
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	userID, err := s.tokenRepo.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	// Revoke old token so it cannot be reused
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}
	return s.generateTokenResponse(ctx, user)
}

// Logout revokes a refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return apperrors.ErrTokenInvalid
	}
	return s.tokenRepo.RevokeToken(ctx, refreshToken)
}

// VerifyEmail consumes a verification token
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	userID, expiresAt, err := s.verificationRepo.GetTokenInfo(ctx, strings.TrimSpace(token))
	if err != nil {
		return err
	}
	if s.now().After(expiresAt) {
		return apperrors.ErrInvalidEmailToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	if err := s.userRepo.MarkEmailVerified(ctx, userID); err != nil {
		return err
	}
	if err := s.verificationRepo.DeleteUserTokens(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to delete used verification tokens")
	}

	if err := s.emailService.SendWelcomeEmail(user.Email, user.FullName()); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to send welcome email")
	}
	s.logger.Info().Int64("userID", userID).Msg("Email verified")
	return nil
}

// ResendVerification issues a fresh verification token. Unknown addresses
// succeed silently so the endpoint cannot be used to enumerate accounts.
func (s *authService) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	if err := s.verificationRepo.DeleteUserTokens(ctx, user.ID); err != nil {
		return err
	}
	s.sendVerification(ctx, user)
	return nil
}

// ForgotPassword emails a reset link. Unknown or disabled accounts succeed
// silently.
func (s *authService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	// Only the newest link works
	if err := s.resetRepo.DeleteUserTokens(ctx, user.ID); err != nil {
		return err
	}
	token, err := email.GenerateVerificationToken()
	if err != nil {
		return err
	}
	if err := s.resetRepo.CreateToken(ctx, user.ID, token, s.now().Add(PasswordResetTokenTTL)); err != nil {
		return err
	}
	if err := s.emailService.SendPasswordResetEmail(user.Email, user.FullName(), token); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to send password reset email")
	}
	s.logger.Info().Int64("userID", user.ID).Msg("Password reset requested")
	return nil
}

// ResetPassword consumes a reset token, stores the new password and signs the
// user out everywhere.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	userID, expiresAt, used, err := s.resetRepo.GetTokenInfo(ctx, token)
	if err != nil {
		return err
	}
	if used || s.now().After(expiresAt) {
		return apperrors.ErrInvalidResetToken
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.resetRepo.MarkTokenAsUsed(ctx, token); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke refresh tokens after password reset")
	}
	s.logger.Info().Int64("userID", userID).Msg("Password reset")
	return nil
}

// GetProfile returns the user with their linked student or company ID
func (s *authService) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := s.userResponse(ctx, user)
	return &resp, nil
}

func (s *authService) userResponse(ctx context.Context, user *models.User) dto.UserResponse {
	resp := dto.NewUserResponse(user)
	switch user.RoleType {
	case models.RoleStudent:
		if st, err := s.studentRepo.GetByUserID(ctx, user.ID); err == nil {
			resp.StudentID = &st.ID
		}
	case models.RoleCompany:
		if co, err := s.companyRepo.GetByUserID(ctx, user.ID); err == nil {
			resp.CompanyID = &co.ID
		}
	}
	return resp
}

// sendVerification stores a token and emails it. Failures are logged; the
// user can ask for another link.
func (s *authService) sendVerification(ctx context.Context, user *models.User) {
	token, err := email.GenerateVerificationToken()
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate verification token")
		return
	}
	if err := s.verificationRepo.CreateToken(ctx, user.ID, token, s.now().Add(VerificationTokenTTL)); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to store verification token")
		return
	}
	if err := s.emailService.SendVerificationEmail(user.Email, user.FullName(), token); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to send verification email")
	}
}

func (s *authService) authResponse(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	token, err := s.generateTokenResponse(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: *token, User: s.userResponse(ctx, user)}, nil
}

// generateTokenResponse creates a token pair and stores the refresh token
func (s *authService) generateTokenResponse(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, refreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(expiresIn),
		RefreshTokenExpiresIn: int64(refreshExpiresIn),
	}, nil
}
