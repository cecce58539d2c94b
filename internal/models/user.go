package models

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTrafficker Role = "trafficker"
	RoleOwner      Role = "owner"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email" validate:"required,email"`
	Name         string    `json:"name,omitempty"`
	Initials     string    `json:"initials,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Initials string `json:"initials,omitempty"`
	Role     string `json:"role" validate:"required,oneof=admin trafficker owner"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	Initials    string `json:"initials,omitempty"`
	Role        Role   `json:"role"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Name     *string `json:"name,omitempty"`
	Initials *string `json:"initials,omitempty"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=admin trafficker owner"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
