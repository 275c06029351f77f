package entity

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User is an account of the quiz platform. Staff users may use the admin API.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email     string     `gorm:"size:254;not null;default:''" json:"email"`
	Password  string     `gorm:"size:128;not null" json:"-"`
	FirstName string     `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName  string     `gorm:"size:150;not null;default:''" json:"last_name"`
	IsActive  bool       `gorm:"not null" json:"is_active"`
	IsStaff   bool       `gorm:"not null;default:false" json:"is_staff"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"date_joined"`
	UpdatedAt time.Time  `json:"-"`
}

// TableName returns the GORM table name.
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may call admin endpoints.
func (u *User) IsAdmin() bool {
	return u.IsActive && u.IsStaff
}

// BeforeSave hashes the password unless it already is a bcrypt hash.
func (u *User) BeforeSave(tx *gorm.DB) error {
	return u.HashPassword()
}

// HashPassword replaces a plain-text password with its bcrypt hash.
func (u *User) HashPassword() error {
	if len(u.Password) == 0 || isBcryptHash(u.Password) {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
