package dto

// ChangePasswordRequest represents a password change by the signed-in user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,password"`
}

// UpdateUserStatusRequest enables or disables an account
type UpdateUserStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}
