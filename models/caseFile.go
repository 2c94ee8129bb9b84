package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/config"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CaseType string

const (
	CaseTypeTCC   CaseType = "TCC"
	CaseTypeEVC   CaseType = "EVC"
	CaseTypeOther CaseType = "OTHER"
)

type CaseStatus string

const (
	CaseStatusUnderAssessment CaseStatus = "UnderAssessment"
	CaseStatusNotGuilty       CaseStatus = "NotGuilty"
	CaseStatusFined           CaseStatus = "Fined"
	CaseStatusPendingComeback CaseStatus = "PendingComeback"
	CaseStatusResolved        CaseStatus = "Resolved"
	CaseStatusEscalated       CaseStatus = "Escalated"
)

type CaseResult string

const (
	CaseResultPending CaseResult = "Pending"
	CaseResultPass    CaseResult = "Pass"
	CaseResultFail    CaseResult = "Fail"
)

type CaseDecision string

const (
	CaseDecisionNotGuilty      CaseDecision = "not-guilty"
	CaseDecisionGuiltyFine     CaseDecision = "guilty-fine"
	CaseDecisionGuiltyComeback CaseDecision = "guilty-comeback"
)

// ErrInvalidCaseState is returned for a decision on a case that already
// left UnderAssessment. Decisions are one-shot.
var ErrInvalidCaseState = errors.New("case is not under assessment")

// Case is the unit of adjudication: exactly one per case-worthy check-in.
// Resolved/Escalated are reached through downstream workflows (payment
// verification, supervisor override), not through DecideCase.
type Case struct {
	ID                       int                `gorm:"primary_key" json:"id"`
	CaseNumber               string             `gorm:"size:30;uniqueIndex;not null" json:"case_number"`
	CheckInId                int                `gorm:"uniqueIndex;not null" json:"check_in_id" binding:"required"`
	CheckIn                  *CheckIn           `json:"check_in"`
	BusinessId               int                `gorm:"index;not null" json:"business_id"`
	CaseType                 CaseType           `gorm:"type:enum('TCC','EVC','OTHER');not null;default:'OTHER'" json:"case_type"`
	Status                   CaseStatus         `gorm:"type:enum('UnderAssessment','NotGuilty','Fined','PendingComeback','Resolved','Escalated');not null;default:'UnderAssessment'" json:"status"`
	Result                   CaseResult         `gorm:"type:enum('Pending','Pass','Fail');not null;default:'Pending'" json:"result"`
	AssignedOfficerId        int                `gorm:"default:0" json:"assigned_officer_id"`
	FineAmount               *decimal.Decimal   `gorm:"type:decimal(20,4)" json:"fine_amount"`
	ComebackDate             *time.Time         `json:"comeback_date"`
	ComebackNotificationSent bool               `gorm:"not null;default:false" json:"comeback_notification_sent"`
	ResolutionPapers         []*ResolutionPaper `gorm:"foreignKey:CaseId" json:"resolution_papers"`
	CreatedAt                time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// ResolutionPaper is an uploaded document attached to a case recording proof
// of fine payment or comeback compliance.
type ResolutionPaper struct {
	ID           int       `gorm:"primary_key" json:"id"`
	CaseId       int       `gorm:"index;not null" json:"case_id" binding:"required"`
	DocumentURL  string    `gorm:"size:255;not null" json:"document_url"`
	ThumbnailURL string    `gorm:"size:255" json:"thumbnail_url"`
	UploadedById int       `gorm:"default:0" json:"uploaded_by_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewCaseDecision struct {
	Decision     CaseDecision     `json:"decision" binding:"required"`
	FineAmount   *decimal.Decimal `json:"fine_amount"`
	ComebackDate *time.Time       `json:"comeback_date"`
}

// DetectCaseType classifies raw case text by keyword. TCC and EVC substrings
// are recognized case-insensitively; everything else is OTHER.
func DetectCaseType(raw string) CaseType {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, string(CaseTypeTCC)):
		return CaseTypeTCC
	case strings.Contains(upper, string(CaseTypeEVC)):
		return CaseTypeEVC
	default:
		return CaseTypeOther
	}
}

// applyDecision mutates the case per the decision. Legal only from
// UnderAssessment; guilty-comeback re-arms the notification latch since the
// comeback date changed.
func (c *Case) applyDecision(input *NewCaseDecision) error {
	if c.Status != CaseStatusUnderAssessment {
		return ErrInvalidCaseState
	}

	switch input.Decision {
	case CaseDecisionNotGuilty:
		c.Status = CaseStatusNotGuilty
		c.Result = CaseResultPass
	case CaseDecisionGuiltyFine:
		if input.FineAmount == nil {
			return errors.New("fine_amount is required for guilty-fine")
		}
		c.Status = CaseStatusFined
		c.Result = CaseResultFail
		c.FineAmount = input.FineAmount
	case CaseDecisionGuiltyComeback:
		if input.ComebackDate == nil {
			return errors.New("comeback_date is required for guilty-comeback")
		}
		c.Status = CaseStatusPendingComeback
		c.Result = CaseResultFail
		c.ComebackDate = input.ComebackDate
		c.ComebackNotificationSent = false
	default:
		return errors.New("unknown decision: " + string(input.Decision))
	}
	return nil
}

func createCaseTx(ctx context.Context, tx *gorm.DB, checkIn *CheckIn, caseText string, actorId int) (*Case, error) {
	caseNumber, err := nextDailyNumber(ctx, tx, SequenceScopeCase, "C", time.Now())
	if err != nil {
		return nil, err
	}

	caseFile := Case{
		CaseNumber:        caseNumber,
		CheckInId:         checkIn.ID,
		BusinessId:        checkIn.BusinessId,
		CaseType:          DetectCaseType(caseText),
		Status:            CaseStatusUnderAssessment,
		Result:            CaseResultPending,
		AssignedOfficerId: actorId,
		FineAmount:        checkIn.FinedAmount,
	}
	if err := tx.WithContext(ctx).Create(&caseFile).Error; err != nil {
		return nil, err
	}
	return &caseFile, nil
}

// DecideCase applies an assessment decision to a case. The row is locked for
// the duration of the transaction so two concurrent decisions cannot both
// pass the state guard.
func DecideCase(ctx context.Context, id int, input *NewCaseDecision) (*Case, error) {
	db := config.GetDB()
	var caseFile Case

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&caseFile, id).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		if err := caseFile.applyDecision(input); err != nil {
			return err
		}

		return tx.WithContext(ctx).Model(&caseFile).
			Select("Status", "Result", "FineAmount", "ComebackDate", "ComebackNotificationSent").
			Updates(&caseFile).Error
	})
	if err != nil {
		return nil, err
	}

	actorId, _ := utils.GetUserIdFromContext(ctx)
	RecordAudit(ctx, "decide:"+string(input.Decision), "case", caseFile.ID, caseFile.CaseNumber)
	config.PublishCaseworkEventAsync(config.CaseworkEvent{
		Action:     "case.decided",
		EntityType: "case",
		EntityId:   caseFile.ID,
		ActorId:    actorId,
		OccurredAt: time.Now(),
	})
	return &caseFile, nil
}

func AddResolutionPaper(ctx context.Context, caseId int, documentURL string, thumbnailURL string) (*ResolutionPaper, error) {
	if err := utils.ValidateResourceId[Case](ctx, caseId); err != nil {
		return nil, err
	}

	actorId, _ := utils.GetUserIdFromContext(ctx)
	paper := ResolutionPaper{
		CaseId:       caseId,
		DocumentURL:  documentURL,
		ThumbnailURL: thumbnailURL,
		UploadedById: actorId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&paper).Error; err != nil {
		return nil, err
	}
	RecordAudit(ctx, "attach", "resolution_paper", paper.ID, documentURL)
	return &paper, nil
}

func GetCase(ctx context.Context, id int) (*Case, error) {
	return utils.FetchModel[Case](ctx, id, "CheckIn", "ResolutionPapers")
}

func GetCasesByBusiness(ctx context.Context, businessId int) ([]*Case, error) {
	db := config.GetDB()
	var results []*Case
	err := db.WithContext(ctx).Where("business_id = ?", businessId).
		Preload("ResolutionPapers").Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
