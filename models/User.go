package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Login        string    `gorm:"size:100;uniqueIndex;not null" json:"login"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	Status       string    `gorm:"size:16;not null;default:active;check:status IN ('active','blocked')" json:"status"`
	Role         string    `gorm:"size:16;not null;default:user;check:role IN ('user','admin')" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsBlocked() bool {
	return u.Status == UserStatusBlocked
}

// ValidUserStatus reports whether s is an assignable user status.
func ValidUserStatus(s string) bool {
	return s == UserStatusActive || s == UserStatusBlocked
}

// CredentialsInput - register and login body
type CredentialsInput struct {
	Login    string `json:"login" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}

// UserStatusInput - admin status toggle body
type UserStatusInput struct {
	Status string `json:"status" validate:"required"`
}
