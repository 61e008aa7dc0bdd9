package entity

import "time"

const (
	StatusAvailable = "available"
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

type Appointment struct {
	ID           uint `gorm:"primaryKey"`
	InstructorID uint `gorm:"not null;index"` // References: users(id)
	StudentID    *uint
	StartTime    time.Time `gorm:"not null"`
	EndTime      time.Time `gorm:"not null"`
	IsAvailable  bool      `gorm:"not null;default:true"`
	Topic        *string
	Status       string `gorm:"size:20;not null;default:'available'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Relations
	Instructor User `gorm:"foreignKey:InstructorID;references:ID"`
}
