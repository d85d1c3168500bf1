package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appAuth "github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextEmail    = "email"
	ContextRoleType = "roleType"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	userRepo   repositories.IUserRepository
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, userRepo repositories.IUserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		userRepo:   userRepo,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// tokenFromRequest reads the bearer token from the Authorization header. The
// "token" query parameter is accepted as a fallback because browsers cannot
// set headers on websocket upgrades.
func tokenFromRequest(c *gin.Context) (string, error) {
	header := strings.Trim(c.GetHeader("Authorization"), "\"'")
	if header == "" {
		if q := strings.TrimSpace(c.Query("token")); q != "" {
			return strings.TrimPrefix(q, "Bearer "), nil
		}
		return "", apperrors.ErrTokenNotFound
	}

	// Raw JWTs are accepted for Swagger UI convenience
	if strings.Count(header, ".") == 2 && !strings.HasPrefix(header, "Bearer ") {
		return header, nil
	}
	return auth.ExtractBearerToken(header)
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenNotFound) {
				abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			} else {
				abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token format")
			}
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			code := dto.ErrorCodeInvalidToken
			details := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrorCodeExpiredToken
				details = "Token has expired"
			}
			abortUnauthorized(c, code, details)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRoleType, claims.RoleType)

		c.Next()
	}
}

// EmailVerificationRequired middleware to check if user's email is verified
func (m *AuthMiddleware) EmailVerificationRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User information not found")
			return
		}
		// The seeded placement cell account is trusted
		if actor.IsAdmin() {
			c.Next()
			return
		}

		verified, err := m.userRepo.IsEmailVerified(c.Request.Context(), actor.UserID)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}
		if !verified {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeEmailNotVerified, "Email not verified").
				WithDetails("Please verify your email address before accessing this resource")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}

// RoleRequired allows the request through when the caller has one of roles
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User role not found")
			return
		}

		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
	}
}

// ActorFromContext returns the authenticated caller set by JWTAuth
func ActorFromContext(c *gin.Context) (appAuth.Actor, bool) {
	userID, ok := c.Get(ContextUserID)
	if !ok {
		return appAuth.Actor{}, false
	}
	id, ok := userID.(int64)
	if !ok {
		return appAuth.Actor{}, false
	}
	role, _ := c.Get(ContextRoleType)
	roleStr, _ := role.(string)
	return appAuth.Actor{UserID: id, Role: models.RoleType(roleStr)}, true
}
