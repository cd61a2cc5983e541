package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/identity"
	"github.com/maia/backend/internal/domain/ownership"
)

// RegisterInput contains the input for creating an account
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	CPF      string
	Gender   string
	// Namespace and Token are the tenancy markers. They are required in
	// namespace_token deployments and rejected otherwise.
	Namespace string
	Token     string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	ExpiresAt   time.Time
	User        UserDTO
}

// Session is a verified bearer token
type Session struct {
	Owner     ownership.Key
	UserID    uuid.UUID
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// UpdateUserInput is a partial profile update; nil fields are unchanged
type UpdateUserInput struct {
	Name          *string
	Email         *string
	Phone         *string
	CPF           *string
	Gender        *string
	Status        *string
	EmailVerified *bool
	Password      *string
}

// UserDTO is the public view of a user. The password hash and the
// namespace token never leave the service layer.
type UserDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Phone         string    `json:"phone"`
	CPF           string    `json:"cpf"`
	Status        string    `json:"status"`
	Gender        string    `json:"gender"`
	Namespace     string    `json:"user_ns,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToUserDTO converts a domain user to its public view
func ToUserDTO(u *identity.User) UserDTO {
	return UserDTO{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Phone:         u.Phone,
		CPF:           u.CPF,
		Status:        string(u.Status),
		Gender:        string(u.Gender),
		Namespace:     u.Namespace,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
