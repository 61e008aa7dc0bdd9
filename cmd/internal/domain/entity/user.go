package entity

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string
	LastName     string
	IsAdmin      bool `gorm:"not null;default:false"`
	IsInstructor bool `gorm:"not null;default:false"`
	Deleted      bool `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsStudent reports whether the user holds neither elevated role.
func (u *User) IsStudent() bool {
	return !u.IsAdmin && !u.IsInstructor
}
