package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID            int64      `json:"id" db:"id" example:"1"`                                                  // Unique identifier for the user
	Email         string     `json:"email" db:"email" example:"placement.cell@college.edu"`                   // User's email address
	Password      string     `json:"-" db:"password"`                                                         // User's hashed password (excluded from JSON)
	FirstName     string     `json:"firstName" db:"first_name" example:"Asha"`                                // User's first name
	LastName      string     `json:"lastName" db:"last_name" example:"Rao"`                                   // User's last name
	RoleType      RoleType   `json:"roleType" db:"role_type" example:"STUDENT"`                               // ADMIN, STUDENT or COMPANY
	IsActive      bool       `json:"isActive" db:"is_active" example:"true"`                                  // Whether the user account is active
	EmailVerified bool       `json:"emailVerified" db:"email_verified" example:"true"`                        // Whether the email address was confirmed
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at" example:"2024-04-20T18:00:00Z"` // Timestamp of the last login (nullable)
	CreatedAt     time.Time  `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"`                // Timestamp when the user was created
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at" example:"2024-01-02T15:30:00Z"`                // Timestamp when the user was last updated
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Value exposes fields for the admin account list.
func (u *User) Value(field string) (any, bool) {
	switch field {
	case "id":
		return u.ID, true
	case "email":
		return u.Email, true
	case "firstName":
		return u.FirstName, true
	case "lastName":
		return u.LastName, true
	case "role", "roleType":
		return string(u.RoleType), true
	case "isActive":
		return u.IsActive, true
	case "emailVerified":
		return u.EmailVerified, true
	case "lastLoginAt":
		if u.LastLoginAt == nil {
			return nil, false
		}
		return *u.LastLoginAt, true
	case "createdAt":
		return u.CreatedAt, true
	}
	return nil, false
}

// SearchText is matched by free-text queries.
func (u *User) SearchText() []string {
	return []string{u.Email, u.FirstName, u.LastName}
}

// RefreshToken is a stored refresh token
type RefreshToken struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	IsRevoked bool      `db:"is_revoked"`
	CreatedAt time.Time `db:"created_at"`
}

// VerificationToken is an email verification token
type VerificationToken struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}
