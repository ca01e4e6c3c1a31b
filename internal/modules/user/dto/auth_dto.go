package dto

type LoginInput struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterInput struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required,max=100"`
	UserType string `json:"userType" binding:"required,oneof=student teacher admin"`
}

// UpdateProfileInput carries optional changes; empty fields are left alone.
type UpdateProfileInput struct {
	Name          string `json:"name" binding:"max=100"`
	OldPassword   string `json:"oldPassword"`
	NewPassword   string `json:"newPassword"`
	CurrentUserID string `json:"currentUserId"`
}
