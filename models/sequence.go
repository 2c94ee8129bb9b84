package models

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DailySequence is a per-day atomic counter. Document numbers (business,
// tax, registration, case) are date-scoped and restart at 1 each day.
// The MySQL LAST_INSERT_ID upsert makes increment-and-read a single atomic
// statement, so concurrent writers can never observe the same value.
type DailySequence struct {
	Scope   string `gorm:"primaryKey;size:30;autoIncrement:false" json:"scope"`
	SeqDate string `gorm:"primaryKey;size:10;autoIncrement:false" json:"seq_date"`
	Value   int    `gorm:"not null;default:0" json:"value"`
}

const (
	SequenceScopeBusiness     = "business_no"
	SequenceScopeTaxId        = "tax_id"
	SequenceScopeRegistration = "registration_no"
	SequenceScopeCase         = "case_number"
)

// NextDailySequence atomically increments and returns the counter for
// (scope, day). Safe to call inside an outer transaction.
func NextDailySequence(ctx context.Context, tx *gorm.DB, scope string, day time.Time) (int, error) {
	seqDate := day.Format("2006-01-02")

	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO daily_sequences (scope, seq_date, value)
		 VALUES (?, ?, LAST_INSERT_ID(1))
		 ON DUPLICATE KEY UPDATE value = LAST_INSERT_ID(value + 1)`,
		scope, seqDate,
	).Error; err != nil {
		return 0, err
	}

	var value int
	if err := tx.WithContext(ctx).Raw("SELECT LAST_INSERT_ID()").Scan(&value).Error; err != nil {
		return 0, err
	}
	return value, nil
}

// FormatDailyNumber renders a date-scoped document number, e.g. C-20250101-0004.
func FormatDailyNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), seq)
}

func nextDailyNumber(ctx context.Context, tx *gorm.DB, scope string, prefix string, day time.Time) (string, error) {
	seq, err := NextDailySequence(ctx, tx, scope, day)
	if err != nil {
		return "", err
	}
	return FormatDailyNumber(prefix, day, seq), nil
}
