package repository

import (
	"tutorcal/cmd/internal/domain/entity"
	"errors"
	"gorm.io/gorm"
)

type DefaultNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *DefaultNotificationRepository {
	return &DefaultNotificationRepository{db: db}
}

func (n *DefaultNotificationRepository) FindByID(id uint) (*entity.Notification, error) {
	var notif entity.Notification
	err := n.db.First(&notif, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &notif, err
}

// FindRecent returns the recipient's newest notifications, capped at limit.
func (n *DefaultNotificationRepository) FindRecent(userID uint, limit int) ([]*entity.Notification, error) {
	var notifs []*entity.Notification
	err := n.db.
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&notifs).Error
	return notifs, err
}

// CountUnread counts across all of the recipient's notifications, not just
// the capped page.
func (n *DefaultNotificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := n.db.Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (n *DefaultNotificationRepository) Save(notif *entity.Notification) error {
	return n.db.Save(notif).Error
}

func (n *DefaultNotificationRepository) Delete(notif *entity.Notification) error {
	return n.db.Delete(notif).Error
}
