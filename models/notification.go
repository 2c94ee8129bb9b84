package models

import (
	"context"
	"time"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/config"
)

type NotificationKind string

const (
	NotificationComebackDue NotificationKind = "comeback-due"
	NotificationImportDone  NotificationKind = "import-done"
)

type Notification struct {
	ID          int              `gorm:"primary_key" json:"id"`
	Kind        NotificationKind `gorm:"size:30;not null" json:"kind"`
	RecipientId int              `gorm:"index;not null" json:"recipient_id"`
	CaseId      *int             `gorm:"index" json:"case_id"`
	Message     string           `gorm:"size:500;not null" json:"message"`
	ReadAt      *time.Time       `json:"read_at"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func CreateNotification(ctx context.Context, notification *Notification) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(notification).Error
}

func ListNotifications(ctx context.Context, recipientId int, unreadOnly bool) ([]*Notification, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Where("recipient_id = ?", recipientId)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	var results []*Notification
	if err := query.Order("created_at DESC").Limit(100).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func MarkNotificationRead(ctx context.Context, id int, recipientId int) error {
	db := config.GetDB()
	now := time.Now()
	return db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", id, recipientId).
		Update("read_at", now).Error
}
