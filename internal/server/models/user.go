// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	dto "github.com/dmitrijs2005/studenthub/internal/models"
)

// User is a stored account. The password and reset token are kept only as
// hashes.
type User struct {
	ID             string
	StudentID      string
	PasswordHash   string
	Name           string
	Email          string
	Phone          string
	Department     string
	Batch          string
	Avatar         string
	ResetTokenHash string
	ResetExpires   time.Time
	CreatedAt      time.Time
}

// Public strips the credentials off u.
func (u User) Public() dto.User {
	return dto.User{
		ID:         u.ID,
		StudentID:  u.StudentID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Department: u.Department,
		Batch:      u.Batch,
		Avatar:     u.Avatar,
	}
}

// ApplyProfile copies the profile fields of p onto u.
func (u *User) ApplyProfile(p dto.User) {
	u.Name = p.Name
	u.Email = p.Email
	u.Phone = p.Phone
	u.Department = p.Department
	u.Batch = p.Batch
	u.Avatar = p.Avatar
}
