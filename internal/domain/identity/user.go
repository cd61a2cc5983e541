package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/maia/backend/internal/domain/ownership"
	"github.com/maia/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the account standing of a user
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusLate     UserStatus = "late" // Payments overdue
)

// IsValid reports whether s is a known status
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusLate:
		return true
	}
	return false
}

// Gender is a closed set of self-declared genders
type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderOther          Gender = "other"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
)

// IsValid reports whether g is a known gender
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay:
		return true
	}
	return false
}

// Password cost for bcrypt
const bcryptCost = 12

const minPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is the identity record behind every session.
// Namespace and Token are only populated in namespace/token deployments.
type User struct {
	shared.BaseEntity
	Name          string
	Email         string
	PasswordHash  string
	EmailVerified bool
	Phone         string
	CPF           string
	Status        UserStatus
	Gender        Gender
	Namespace     string
	Token         string
}

// NewUser creates an active user with a hashed password
func NewUser(name, email, password, phone, cpf string, gender Gender) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("Name cannot be empty")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !gender.IsValid() {
		return nil, invalid("Gender must be one of: male, female, other, prefer_not_to_say")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	user := &User{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		PasswordHash: passwordHash,
		Status:       UserStatusActive,
		Gender:       gender,
	}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	if err := user.SetPhone(phone); err != nil {
		return nil, err
	}
	if err := user.SetCPF(cpf); err != nil {
		return nil, err
	}
	return user, nil
}

// OwnerKey returns the identity owner key of this user
func (u *User) OwnerKey() ownership.Key {
	return ownership.Identity(u.ID)
}

// LedgerOwnerKey returns the key this user's ledger records are stored under
// for the given tenancy mode.
func (u *User) LedgerOwnerKey(mode ownership.Mode) (ownership.Key, bool) {
	switch mode {
	case ownership.ModeNamespaceToken:
		if u.Namespace == "" || u.Token == "" {
			return ownership.Key{}, false
		}
		return ownership.NamespaceToken(u.Namespace, u.Token), true
	default:
		return u.OwnerKey(), true
	}
}

// Rename changes the display name
func (u *User) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("Name cannot be empty")
	}
	u.Name = name
	u.touch()
	return nil
}

// SetEmail normalizes and sets the email. Changing it clears verification.
func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(email) > 200 {
		return invalid("Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return invalid("Invalid email format")
	}
	if u.Email != "" && u.Email != email {
		u.EmailVerified = false
	}
	u.Email = email
	u.touch()
	return nil
}

// SetPhone sets the phone number
func (u *User) SetPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return invalid("Phone cannot be empty")
	}
	if len(phone) > 50 {
		return invalid("Phone cannot exceed 50 characters")
	}
	u.Phone = phone
	u.touch()
	return nil
}

// SetCPF sets the id document number
func (u *User) SetCPF(cpf string) error {
	cpf = strings.TrimSpace(cpf)
	if cpf == "" {
		return invalid("CPF cannot be empty")
	}
	if len(cpf) > 20 {
		return invalid("CPF cannot exceed 20 characters")
	}
	u.CPF = cpf
	u.touch()
	return nil
}

// SetStatus changes the account standing
func (u *User) SetStatus(status UserStatus) error {
	if !status.IsValid() {
		return invalid("Status must be one of: active, inactive, late")
	}
	u.Status = status
	u.touch()
	return nil
}

// SetGender changes the declared gender
func (u *User) SetGender(gender Gender) error {
	if !gender.IsValid() {
		return invalid("Gender must be one of: male, female, other, prefer_not_to_say")
	}
	u.Gender = gender
	u.touch()
	return nil
}

// MarkEmailVerified flags the email as verified
func (u *User) MarkEmailVerified() {
	u.EmailVerified = true
	u.touch()
}

// SetTenancyMarkers attaches the namespace/token pair. Both are required.
func (u *User) SetTenancyMarkers(namespace, token string) error {
	namespace = strings.TrimSpace(namespace)
	token = strings.TrimSpace(token)
	if namespace == "" || token == "" {
		return invalid("user_ns and token_talkbi must be provided together")
	}
	u.Namespace = namespace
	u.Token = token
	u.touch()
	return nil
}

// HasTenancyMarkers reports whether any marker is set
func (u *User) HasTenancyMarkers() bool {
	return u.Namespace != "" || u.Token != ""
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	passwordHash, err := hashPassword(password)
	if err != nil {
		return shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}
	u.PasswordHash = passwordHash
	u.touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsActive returns true if user is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

func (u *User) touch() {
	u.UpdatedAt = time.Now()
}

func invalid(message string) error {
	return shared.NewDomainError(shared.CodeInvalidInput, message)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return invalid("Password must be at least 6 characters")
	}
	if len(password) > 72 {
		return invalid("Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
