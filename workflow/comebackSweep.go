package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/config"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComebackSweep scans for PendingComeback cases whose comeback date has
// arrived and notifies the assigned officer, once per case. The
// notification latch on the case row makes the sweep idempotent across
// restarts and replicas.
type ComebackSweep struct {
	DB     *gorm.DB
	Logger *logrus.Logger

	BatchSize    int
	PollInterval time.Duration
	Now          func() time.Time
}

func NewComebackSweep(db *gorm.DB, logger *logrus.Logger) *ComebackSweep {
	return &ComebackSweep{
		DB:           db,
		Logger:       logger,
		BatchSize:    100,
		PollInterval: 5 * time.Minute,
		Now:          time.Now,
	}
}

func (s *ComebackSweep) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, err := s.SweepOnce(ctx); err != nil {
			config.LogError(s.Logger, "workflow", "ComebackSweep.Run", "sweep pass", nil, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.PollInterval):
		}
	}
}

// SweepOnce processes one batch of due cases and returns how many it
// notified. Each case is claimed and latched inside its own transaction so
// two replicas never notify the same case twice.
func (s *ComebackSweep) SweepOnce(ctx context.Context) (int, error) {
	if s.DB == nil {
		return 0, nil
	}
	now := s.Now()

	var due []models.Case
	err := s.DB.WithContext(ctx).
		Where("status = ? AND comeback_notification_sent = 0 AND comeback_date IS NOT NULL AND comeback_date <= ?",
			models.CaseStatusPendingComeback, now).
		Order("comeback_date ASC").
		Limit(s.BatchSize).
		Find(&due).Error
	if err != nil {
		return 0, err
	}

	notified := 0
	for i := range due {
		caseFile := due[i]
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var locked models.Case
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
				Where("id = ? AND comeback_notification_sent = 0", caseFile.ID).
				First(&locked).Error; err != nil {
				// claimed by another replica, or already latched
				return nil
			}

			if locked.AssignedOfficerId > 0 {
				notification := models.Notification{
					Kind:        models.NotificationComebackDue,
					RecipientId: locked.AssignedOfficerId,
					CaseId:      &locked.ID,
					Message:     fmt.Sprintf("Comeback date reached for case %s", locked.CaseNumber),
				}
				if err := tx.Create(&notification).Error; err != nil {
					return err
				}
			}

			if err := tx.Model(&models.Case{}).Where("id = ?", locked.ID).
				Update("comeback_notification_sent", true).Error; err != nil {
				return err
			}
			notified++
			return nil
		})
		if err != nil {
			config.LogError(s.Logger, "workflow", "ComebackSweep.SweepOnce", "notify case", caseFile.ID, err)
			continue
		}
	}

	if notified > 0 {
		payload, _ := json.Marshal(map[string]int{"notified": notified})
		config.PublishCaseworkEventAsync(config.CaseworkEvent{
			Action:     "comeback.due",
			EntityType: "case",
			OccurredAt: now,
			Payload:    payload,
		})
	}
	return notified, nil
}
