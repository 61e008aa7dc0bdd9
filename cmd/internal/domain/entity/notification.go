package entity

import "time"

const (
	NotificationAppointment       = "appointment"
	NotificationInstructorDeleted = "instructor_deleted"
)

type Notification struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"` // recipient, references: users(id)
	Message   string `gorm:"not null"`
	Type      string `gorm:"size:30;not null"`
	RelatedID uint
	IsRead    bool `gorm:"not null;default:false"`
	CreatedAt time.Time

	// Relations
	Recipient User `gorm:"foreignKey:UserID;references:ID"`
}
