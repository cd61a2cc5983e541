package models

import (
	"github.com/maia/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
// user_ns and token_talkbi stay NULL outside namespace/token deployments so
// the unique pair index ignores them.
type UserModel struct {
	BaseModel
	Name          string              `gorm:"type:varchar(200);not null"`
	Email         string              `gorm:"type:varchar(200);not null;uniqueIndex:idx_users_email"`
	PasswordHash  string              `gorm:"type:varchar(255);not null"`
	EmailVerified bool                `gorm:"not null;default:false"`
	Phone         string              `gorm:"type:varchar(50)"`
	CPF           string              `gorm:"column:cpf;type:varchar(20);not null;uniqueIndex:idx_users_cpf"`
	Status        identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Gender        identity.Gender     `gorm:"type:varchar(30);not null"`
	UserNS        *string             `gorm:"column:user_ns;type:varchar(200);uniqueIndex:idx_users_namespace_token"`
	TokenTalkbi   *string             `gorm:"column:token_talkbi;type:varchar(200);uniqueIndex:idx_users_namespace_token"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		Email:         m.Email,
		PasswordHash:  m.PasswordHash,
		EmailVerified: m.EmailVerified,
		Phone:         m.Phone,
		CPF:           m.CPF,
		Status:        m.Status,
		Gender:        m.Gender,
		Namespace:     derefString(m.UserNS),
		Token:         derefString(m.TokenTalkbi),
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.EmailVerified = u.EmailVerified
	m.Phone = u.Phone
	m.CPF = u.CPF
	m.Status = u.Status
	m.Gender = u.Gender
	m.UserNS = nullableString(u.Namespace)
	m.TokenTalkbi = nullableString(u.Token)
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
