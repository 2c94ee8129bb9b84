package models

import (
	"context"
	"time"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/config"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckIn is one physical inspection event for a business. Immutable once
// created (fine correction is an operator flow outside this core).
type CheckIn struct {
	ID          int              `gorm:"primary_key" json:"id"`
	BusinessId  int              `gorm:"index;not null" json:"business_id" binding:"required"`
	Business    *Business        `json:"business"`
	CheckDate   time.Time        `gorm:"not null" json:"check_date"`
	FinedAmount *decimal.Decimal `gorm:"type:decimal(20,4)" json:"fined_amount"`
	Notes       string           `gorm:"type:text" json:"notes"`
	CreatedById int              `gorm:"default:0" json:"created_by_id"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

type NewCheckIn struct {
	BusinessId  int              `json:"business_id" binding:"required"`
	CheckDate   *time.Time       `json:"check_date"`
	FinedAmount *decimal.Decimal `json:"fined_amount"`
	Notes       string           `json:"notes"`
}

func createCheckInTx(ctx context.Context, tx *gorm.DB, businessId int, checkDate time.Time, finedAmount *decimal.Decimal, notes string, actorId int) (*CheckIn, error) {
	checkIn := CheckIn{
		BusinessId:  businessId,
		CheckDate:   checkDate,
		FinedAmount: finedAmount,
		Notes:       notes,
		CreatedById: actorId,
	}
	if err := tx.WithContext(ctx).Create(&checkIn).Error; err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func CreateCheckIn(ctx context.Context, input *NewCheckIn) (*CheckIn, error) {
	if err := utils.ValidateResourceId[Business](ctx, input.BusinessId); err != nil {
		return nil, err
	}

	checkDate := time.Now()
	if input.CheckDate != nil {
		checkDate = *input.CheckDate
	}

	actorId, _ := utils.GetUserIdFromContext(ctx)

	db := config.GetDB()
	var checkIn *CheckIn
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		checkIn, txErr = createCheckInTx(ctx, tx, input.BusinessId, checkDate, input.FinedAmount, input.Notes, actorId)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	RecordAudit(ctx, "create", "check_in", checkIn.ID, "")
	return checkIn, nil
}

func GetCheckIn(ctx context.Context, id int) (*CheckIn, error) {
	return utils.FetchModel[CheckIn](ctx, id, "Business")
}

func GetCheckInsByBusiness(ctx context.Context, businessId int) ([]*CheckIn, error) {
	db := config.GetDB()
	var results []*CheckIn
	err := db.WithContext(ctx).Where("business_id = ?", businessId).Order("check_date DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CreateCheckInWithCase records an inspection from case-worthy payload data
// and opens exactly one case against it. Single transaction: the case number
// sequence and the check-in are committed together.
func CreateCheckInWithCase(ctx context.Context, businessId int, payload BusinessPayload, actorId int) (*CheckIn, *Case, error) {
	checkDate := time.Now()
	if payload.CaseDate != nil {
		checkDate = *payload.CaseDate
	}

	db := config.GetDB()
	var (
		checkIn  *CheckIn
		caseFile *Case
	)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		checkIn, txErr = createCheckInTx(ctx, tx, businessId, checkDate, payload.FinedAmount, payload.Notes, actorId)
		if txErr != nil {
			return txErr
		}
		caseFile, txErr = createCaseTx(ctx, tx, checkIn, payload.CaseText, actorId)
		return txErr
	})
	if err != nil {
		return nil, nil, err
	}
	RecordAudit(ctx, "create", "case", caseFile.ID, caseFile.CaseNumber)
	return checkIn, caseFile, nil
}
