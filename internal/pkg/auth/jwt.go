package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/placementhub/internal/app/models"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidFormat = errors.New("invalid token format")
)

const bearerPrefix = "Bearer "

// JWTConfig carries the signing secret, token lifetimes and issuer.
type JWTConfig struct {
	SecretKey       string
	AccessTokenExp  time.Duration
	RefreshTokenExp time.Duration
	TokenIssuer     string
}

// JWTService signs access tokens for portal users and validates them on
// the way back in. Refresh tokens are opaque UUIDs persisted elsewhere.
type JWTService struct {
	config JWTConfig
	key    []byte
	parser *jwt.Parser
	now    func() time.Time
}

func NewJWTService(config JWTConfig) *JWTService {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	}
	if config.TokenIssuer != "" {
		opts = append(opts, jwt.WithIssuer(config.TokenIssuer))
	}
	return &JWTService{
		config: config,
		key:    []byte(config.SecretKey),
		parser: jwt.NewParser(opts...),
		now:    time.Now,
	}
}

// Claims identifies the portal user and their role.
type Claims struct {
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	RoleType string `json:"roleType"`
	jwt.RegisteredClaims
}

func (c *Claims) Role() models.RoleType {
	return models.RoleType(c.RoleType)
}

func (c *Claims) complete() bool {
	return c.UserID > 0 && c.Email != "" && c.Role().Valid()
}

func (s *JWTService) claimsFor(user *models.User, issued time.Time) *Claims {
	return &Claims{
		UserID:   user.ID,
		Email:    user.Email,
		RoleType: string(user.RoleType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    s.config.TokenIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.config.AccessTokenExp)),
		},
	}
}

// GenerateTokenPair signs an access token for user and mints a fresh
// refresh token. Lifetimes are returned in seconds.
func (s *JWTService) GenerateTokenPair(user *models.User) (accessToken, refreshToken string, expiresIn, refreshExpiresIn int, err error) {
	claims := s.claimsFor(user, s.now())
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", "", 0, 0, fmt.Errorf("sign access token: %w", err)
	}

	return accessToken,
		uuid.NewString(),
		int(s.config.AccessTokenExp / time.Second),
		int(s.config.RefreshTokenExp / time.Second),
		nil
}

// ValidateToken checks signature, algorithm, issuer and time bounds.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("parse token: %w", err)
	case !token.Valid:
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GetRefreshTokenExpiry is the expiry stamped on a refresh token issued now.
func (s *JWTService) GetRefreshTokenExpiry() time.Time {
	return s.now().Add(s.config.RefreshTokenExp)
}

// ExtractBearerToken accepts "Bearer <token>" or a bare token.
func ExtractBearerToken(authHeader string) (string, error) {
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if token == "" {
		return "", ErrInvalidFormat
	}
	return token, nil
}

// ValidateAndExtractClaims validates tokenString and additionally requires
// the portal identity claims to be present and the role to be known.
func (s *JWTService) ValidateAndExtractClaims(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.complete() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
