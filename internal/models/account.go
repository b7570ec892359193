package models

// SessionUser adalah identitas user yang sudah login (dari klaim token).
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email" validate:"required"`
}

// Session diisi oleh middleware session, read-only untuk handler.
type Session struct {
	Token string      `json:"-" validate:"required"`
	User  SessionUser `json:"user"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
