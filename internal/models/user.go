package models

import (
	"strings"
	"time"
)

type User struct {
	ID        int    `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string `gorm:"size:254" json:"email"`
	FirstName string `gorm:"size:150" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`
	Password  string `gorm:"size:128;not null" json:"-"` // bcrypt hash

	CreatedAt time.Time `json:"date_joined"`
	UpdatedAt time.Time `json:"-"`
}

func (u User) String() string {
	return u.Username
}

// FullName falls back to the username when no name was given at signup.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
