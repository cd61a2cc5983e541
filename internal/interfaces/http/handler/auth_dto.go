package handler

import (
	"time"

	"github.com/maia/backend/internal/application/identity"
)

// RegisterRequest is the body of POST /auth/register and POST /users
type RegisterRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=200"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
	Phone     string `json:"phone" binding:"required,max=50"`
	CPF       string `json:"cpf" binding:"required,max=20"`
	Gender    string `json:"gender" binding:"required,oneof=male female other prefer_not_to_say"`
	Namespace string `json:"user_ns"`
	Token     string `json:"token_talkbi"`
}

func (r RegisterRequest) toInput() identity.RegisterInput {
	return identity.RegisterInput{
		Name:      r.Name,
		Email:     r.Email,
		Password:  r.Password,
		Phone:     r.Phone,
		CPF:       r.CPF,
		Gender:    r.Gender,
		Namespace: r.Namespace,
		Token:     r.Token,
	}
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresIn   int64            `json:"expires_in"`
	ExpiresAt   time.Time        `json:"expires_at"`
	User        identity.UserDTO `json:"user"`
}

// UpdateUserRequest is a partial profile update
type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,email,max=200"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	CPF      *string `json:"cpf" binding:"omitempty,max=20"`
	Gender   *string `json:"gender"`
	Status   *string `json:"status"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
}

func (r UpdateUserRequest) toInput() identity.UpdateUserInput {
	return identity.UpdateUserInput{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		CPF:      r.CPF,
		Gender:   r.Gender,
		Status:   r.Status,
		Password: r.Password,
	}
}

// SessionResponse describes the current bearer session
type SessionResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	OwnerKind string    `json:"owner_kind"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
