package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/auth"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	f     *fixture
	users map[int64]*models.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = int64(len(r.users) + 1)
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) CreateStudentAccount(ctx context.Context, u *models.User, s *models.Student) error {
	if err := r.Create(ctx, u); err != nil {
		return err
	}
	s.UserID = &u.ID
	return r.f.students.Create(ctx, s)
}

func (r *fakeUserRepo) CreateCompanyAccount(ctx context.Context, u *models.User, c *models.Company) error {
	if err := r.Create(ctx, u); err != nil {
		return err
	}
	c.UserID = &u.ID
	return r.f.companies.Create(ctx, c)
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.users[userID].LastLoginAt = &now
	return nil
}

func (r *fakeUserRepo) MarkEmailVerified(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID].EmailVerified = true
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Password = hashedPassword
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for id := int64(1); id <= int64(len(r.users)); id++ {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SetActive(ctx context.Context, userID int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserRepo) IsEmailVerified(ctx context.Context, userID int64) (bool, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.EmailVerified, nil
}

type fakeTokenRepo struct {
	tokens map[string]int64
}

func (r *fakeTokenRepo) CreateToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	r.tokens[token] = userID
	return nil
}

func (r *fakeTokenRepo) GetTokenByValue(ctx context.Context, token string) (int64, error) {
	id, ok := r.tokens[token]
	if !ok {
		return 0, apperrors.ErrTokenNotFound
	}
	return id, nil
}

func (r *fakeTokenRepo) RevokeToken(ctx context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func (r *fakeTokenRepo) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	for t, id := range r.tokens {
		if id == userID {
			delete(r.tokens, t)
		}
	}
	return nil
}

type verificationEntry struct {
	userID    int64
	expiresAt time.Time
}

type fakeVerificationRepo struct {
	tokens map[string]verificationEntry
}

func (r *fakeVerificationRepo) CreateToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.tokens[token] = verificationEntry{userID, expiresAt}
	return nil
}

func (r *fakeVerificationRepo) GetTokenInfo(ctx context.Context, token string) (int64, time.Time, error) {
	e, ok := r.tokens[token]
	if !ok {
		return 0, time.Time{}, apperrors.ErrInvalidEmailToken
	}
	return e.userID, e.expiresAt, nil
}

func (r *fakeVerificationRepo) DeleteUserTokens(ctx context.Context, userID int64) error {
	for t, e := range r.tokens {
		if e.userID == userID {
			delete(r.tokens, t)
		}
	}
	return nil
}

type resetEntry struct {
	userID    int64
	expiresAt time.Time
	used      bool
}

type fakeResetRepo struct {
	tokens map[string]*resetEntry
}

func (r *fakeResetRepo) CreateToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.tokens[token] = &resetEntry{userID: userID, expiresAt: expiresAt}
	return nil
}

func (r *fakeResetRepo) GetTokenInfo(ctx context.Context, token string) (int64, time.Time, bool, error) {
	e, ok := r.tokens[token]
	if !ok {
		return 0, time.Time{}, false, apperrors.ErrInvalidResetToken
	}
	return e.userID, e.expiresAt, e.used, nil
}

func (r *fakeResetRepo) MarkTokenAsUsed(ctx context.Context, token string) error {
	e, ok := r.tokens[token]
	if !ok || e.used {
		return apperrors.ErrInvalidResetToken
	}
	e.used = true
	return nil
}

func (r *fakeResetRepo) DeleteUserTokens(ctx context.Context, userID int64) error {
	for t, e := range r.tokens {
		if e.userID == userID {
			delete(r.tokens, t)
		}
	}
	return nil
}

type authFixture struct {
	*fixture
	users         *fakeUserRepo
	tokens        *fakeTokenRepo
	verifications *fakeVerificationRepo
	resets        *fakeResetRepo
	svc           *authService
}

func newAuthFixture() *authFixture {
	f := newFixture()
	af := &authFixture{
		fixture:       f,
		users:         &fakeUserRepo{f: f, users: map[int64]*models.User{}},
		tokens:        &fakeTokenRepo{tokens: map[string]int64{}},
		verifications: &fakeVerificationRepo{tokens: map[string]verificationEntry{}},
		resets:        &fakeResetRepo{tokens: map[string]*resetEntry{}},
	}
	jwt := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "placementhub-test",
	})
	af.svc = NewAuthService(af.users, af.tokens, af.verifications, af.resets, f.students, f.companies, jwt, f.email, f.logger).(*authService)
	af.svc.now = f.clock()
	return af
}

func (af *authFixture) verificationToken(t *testing.T) string {
	t.Helper()
	require.Len(t, af.verifications.tokens, 1)
	for tok := range af.verifications.tokens {
		return tok
	}
	return ""
}

var studentSignup = &dto.RegisterStudentRequest{
	Email:          " Asha@College.edu ",
	Password:       "Secret123!",
	FirstName:      "Asha",
	LastName:       "Rao",
	RollNumber:     "cs21001",
	Department:     "CSE",
	CGPA:           8.4,
	GraduationYear: 2025,
}

func TestRegisterStudent(t *testing.T) {
	ctx := context.Background()
	af := newAuthFixture()

	resp, err := af.svc.RegisterStudent(ctx, studentSignup)
	require.NoError(t, err)
	assert.Equal(t, "asha@college.edu", resp.User.Email)
	require.NotNil(t, resp.User.StudentID)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)

	student, err := af.students.GetByID(ctx, *resp.User.StudentID)
	require.NoError(t, err)
	assert.Equal(t, "CS21001", student.RollNumber)
	assert.Equal(t, "Asha Rao", student.Name)

	require.Len(t, af.email.sent, 1)
	assert.Equal(t, "verification", af.email.sent[0].Kind)

	_, err = af.svc.RegisterStudent(ctx, studentSignup)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestLoginAndRefresh(t *testing.T) {
	ctx := context.Background()
	af := newAuthFixture()
	_, err := af.svc.RegisterCompany(ctx, &dto.RegisterCompanyRequest{
		Email: "hr@initech.example", Password: "Secret123!", FirstName: "Bill", LastName: "L", CompanyName: "Initech", Industry: "Software",
	})
	require.NoError(t, err)

	_, err = af.svc.Login(ctx, &dto.LoginRequest{Email: "hr@initech.example", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = af.svc.Login(ctx, &dto.LoginRequest{Email: "nobody@initech.example", Password: "Secret123!"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	resp, err := af.svc.Login(ctx, &dto.LoginRequest{Email: "HR@initech.example", Password: "Secret123!"})
	require.NoError(t, err)
	require.NotNil(t, resp.User.CompanyID)

	rotated, err := af.svc.RefreshToken(ctx, resp.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.Token.RefreshToken, rotated.RefreshToken)

	_, err = af.svc.RefreshToken(ctx, resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound, "old refresh token is revoked")

	require.NoError(t, af.svc.Logout(ctx, rotated.RefreshToken))
	_, err = af.svc.RefreshToken(ctx, rotated.RefreshToken)
	assert.Error(t, err)

	af.users.users[resp.User.ID].IsActive = false
	_, err = af.svc.Login(ctx, &dto.LoginRequest{Email: "hr@initech.example", Password: "Secret123!"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()
	af := newAuthFixture()
	resp, err := af.svc.RegisterStudent(ctx, studentSignup)
	require.NoError(t, err)
	token := af.verificationToken(t)

	require.NoError(t, af.svc.VerifyEmail(ctx, token))
	assert.True(t, af.users.users[resp.User.ID].EmailVerified)
	assert.Empty(t, af.verifications.tokens)
	assert.Equal(t, "welcome", af.email.sent[len(af.email.sent)-1].Kind)

	assert.ErrorIs(t, af.svc.ResendVerification(ctx, "asha@college.edu"), apperrors.ErrEmailAlreadyVerified)
	assert.NoError(t, af.svc.ResendVerification(ctx, "unknown@college.edu"))
}

func TestVerifyEmail_Expired(t *testing.T) {
	ctx := context.Background()
	af := newAuthFixture()
	_, err := af.svc.RegisterStudent(ctx, studentSignup)
	require.NoError(t, err)
	token := af.verificationToken(t)

	af.now = af.now.Add(VerificationTokenTTL + time.Minute)
	assert.ErrorIs(t, af.svc.VerifyEmail(ctx, token), apperrors.ErrInvalidEmailToken)

	require.NoError(t, af.svc.ResendVerification(ctx, "asha@college.edu"))
	assert.NotEqual(t, token, af.verificationToken(t))
}

func (af *authFixture) resetToken(t *testing.T) string {
	t.Helper()
	require.Len(t, af.resets.tokens, 1)
	for tok := range af.resets.tokens {
		return tok
	}
	return ""
}

func TestForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()
	af := newAuthFixture()
	resp, err := af.svc.RegisterStudent(ctx, studentSignup)
	require.NoError(t, err)

	require.NoError(t, af.svc.ForgotPassword(ctx, "ASHA@college.edu"))
	first := af.resetToken(t)
	assert.Equal(t, "reset", af.email.sent[len(af.email.sent)-1].Kind)

	// A second request replaces the first link
	require.NoError(t, af.svc.ForgotPassword(ctx, "asha@college.edu"))
	token := af.resetToken(t)
	assert.NotEqual(t, first, token)
	assert.ErrorIs(t, af.svc.ResetPassword(ctx, first, "NewSecret1!"), apperrors.ErrInvalidResetToken)

	require.NoError(t, af.svc.ResetPassword(ctx, token, "NewSecret1!"))
	assert.Empty(t, af.tokens.tokens, "refresh tokens are revoked")
	assert.ErrorIs(t, af.svc.ResetPassword(ctx, token, "Another1!"), apperrors.ErrInvalidResetToken)

	_, err = af.svc.Login(ctx, &dto.LoginRequest{Email: "asha@college.edu", Password: "Secret123!"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	logged, err := af.svc.Login(ctx, &dto.LoginRequest{Email: "asha@college.edu", Password: "NewSecret1!"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, logged.User.ID)
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	af := newAuthFixture()
	require.NoError(t, af.svc.ForgotPassword(context.Background(), "ghost@college.edu"))
	assert.Empty(t, af.resets.tokens)
	assert.Empty(t, af.email.sent)
}

func TestResetPassword_Expired(t *testing.T) {
	ctx := context.Background()
	af := newAuthFixture()
	_, err := af.svc.RegisterStudent(ctx, studentSignup)
	require.NoError(t, err)
	require.NoError(t, af.svc.ForgotPassword(ctx, "asha@college.edu"))
	token := af.resetToken(t)

	af.now = af.now.Add(PasswordResetTokenTTL + time.Second)
	assert.ErrorIs(t, af.svc.ResetPassword(ctx, token, "NewSecret1!"), apperrors.ErrInvalidResetToken)
}
