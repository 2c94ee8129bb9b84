package models

import (
	"context"
	"time"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/config"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/utils"
)

// AuditLog is an append-only trail of state-changing actions. Rows are never
// updated or deleted.
type AuditLog struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Action     string    `gorm:"size:100;not null" json:"action"`
	EntityType string    `gorm:"size:50;index:idx_entity;not null" json:"entity_type"`
	EntityId   int       `gorm:"index:idx_entity;not null" json:"entity_id"`
	ActorId    int       `gorm:"index;default:0" json:"actor_id"`
	Details    string    `gorm:"type:text" json:"details"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// RecordAudit writes the trail row in the background. Audit failures are
// logged, never surfaced to the caller.
func RecordAudit(ctx context.Context, action string, entityType string, entityId int, details string) {
	actorId, _ := utils.GetUserIdFromContext(ctx)

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		entry := AuditLog{
			Action:     action,
			EntityType: entityType,
			EntityId:   entityId,
			ActorId:    actorId,
			Details:    details,
		}
		db := config.GetDB()
		if err := db.WithContext(bgCtx).Create(&entry).Error; err != nil {
			config.LogError(config.GetLogger(), "models", "RecordAudit", action, entry, err)
		}
	}()
}

func ListAuditLogs(ctx context.Context, entityType string, entityId int) ([]*AuditLog, error) {
	db := config.GetDB()
	var results []*AuditLog
	err := db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityId).
		Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
