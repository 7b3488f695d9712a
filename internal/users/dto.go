package users

import "github.com/devine-water/devine-water/internal/shared"

// CreateUserRequest is the payload for registering an account.
type CreateUserRequest struct {
	Username string      `json:"username" validate:"required,min=3"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8"`
	Role     shared.Role `json:"role" validate:"required"`
	FullName string      `json:"full_name" validate:"required"`
	Phone    string      `json:"phone"`
	Address  string      `json:"address"`
}

// UpdateUserRequest carries optional account mutations. Nil fields are left as is.
type UpdateUserRequest struct {
	Username *string      `json:"username,omitempty"`
	Email    *string      `json:"email,omitempty" validate:"omitempty,email"`
	Password *string      `json:"password,omitempty" validate:"omitempty,min=8"`
	Role     *shared.Role `json:"role,omitempty"`
	FullName *string      `json:"full_name,omitempty"`
	Phone    *string      `json:"phone,omitempty"`
	Address  *string      `json:"address,omitempty"`
	Status   *string      `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}
