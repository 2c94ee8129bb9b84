package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/config"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
	ReviewStatusMerged   ReviewStatus = "merged"
)

type ReviewResolution string

const (
	ReviewResolutionKeep   ReviewResolution = "keep"
	ReviewResolutionDelete ReviewResolution = "delete"
	ReviewResolutionMerge  ReviewResolution = "merge"
)

// ErrReviewAlreadyDecided is returned when a decision targets a review that
// has already been resolved. Decisions are one-shot.
var ErrReviewAlreadyDecided = errors.New("duplicate review is already decided")

// BusinessSnapshot stores the full imported row payload so a reviewer can
// act on it long after the source file is gone.
type BusinessSnapshot BusinessPayload

// Value implements the driver.Valuer interface
func (s BusinessSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface
func (s *BusinessSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = BusinessSnapshot{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported snapshot source type")
	}
}

// DuplicateReview parks one imported row that collided with an existing
// business under the review policy. The snapshot carries everything needed
// to replay the row once a reviewer decides.
type DuplicateReview struct {
	ID                 int              `gorm:"primary_key" json:"id"`
	ImportJobId        int              `gorm:"index;not null" json:"import_job_id"`
	RowNumber          int              `gorm:"not null" json:"row_number"`
	ExistingBusinessId int              `gorm:"index;not null" json:"existing_business_id"`
	ExistingBusiness   *Business        `json:"existing_business"`
	MatchType          string           `gorm:"size:30;not null" json:"match_type"`
	Snapshot           BusinessSnapshot `gorm:"type:json" json:"snapshot"`
	Status             ReviewStatus     `gorm:"type:enum('pending','approved','rejected','merged');not null;default:'pending'" json:"status"`
	Resolution         ReviewResolution `gorm:"type:enum('keep','delete','merge')" json:"resolution"`
	Notes              string           `gorm:"type:text" json:"notes"`
	DecidedById        int              `gorm:"default:0" json:"decided_by_id"`
	DecidedAt          *time.Time       `json:"decided_at"`
	CreatedAt          time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type ReviewDecisionResult struct {
	ReviewId   int    `json:"review_id"`
	Ok         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	BusinessId int    `json:"business_id,omitempty"`
}

func CreateDuplicateReview(ctx context.Context, review *DuplicateReview) error {
	db := config.GetDB()
	review.Status = ReviewStatusPending
	return db.WithContext(ctx).Create(review).Error
}

func ListDuplicateReviews(ctx context.Context, importJobId *int, status *ReviewStatus) ([]*DuplicateReview, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Preload("ExistingBusiness")
	if importJobId != nil {
		query = query.Where("import_job_id = ?", *importJobId)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var reviews []*DuplicateReview
	if err := query.Order("created_at ASC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// applyDecision is the one-shot transition out of pending. Any review that
// has already been decided rejects a second decision before side effects run.
func (r *DuplicateReview) applyDecision(resolution ReviewResolution, notes string, actorId int, now time.Time) error {
	switch resolution {
	case ReviewResolutionKeep, ReviewResolutionDelete, ReviewResolutionMerge:
	default:
		return errors.New("unknown resolution: " + string(resolution))
	}
	if r.Status != ReviewStatusPending {
		return ErrReviewAlreadyDecided
	}
	r.Status = decidedStatus(resolution)
	r.Resolution = resolution
	r.Notes = notes
	r.DecidedById = actorId
	r.DecidedAt = &now
	return nil
}

// DecideDuplicateReview resolves one parked row.
//
//	keep   creates the snapshot as a brand-new business, fresh numbers and all
//	delete discards the row, touching nothing but the review itself
//	merge  fills only the existing business's empty fields from the snapshot,
//	       then opens a check-in (and case, when the row carried case data)
//	       against the existing business
//
// The review row is locked so concurrent decisions cannot both pass the
// pending guard.
func DecideDuplicateReview(ctx context.Context, id int, resolution ReviewResolution, notes string) (*ReviewDecisionResult, error) {
	actorId, _ := utils.GetUserIdFromContext(ctx)
	db := config.GetDB()
	result := ReviewDecisionResult{ReviewId: id}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review DuplicateReview
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&review, id).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if err := review.applyDecision(resolution, notes, actorId, time.Now()); err != nil {
			return err
		}

		snapshot := BusinessPayload(review.Snapshot)

		switch resolution {
		case ReviewResolutionKeep:
			business, err := createBusinessTx(ctx, tx, snapshot, actorId)
			if err != nil {
				return err
			}
			result.BusinessId = business.ID
			if snapshot.HasCaseData() {
				checkIn, err := createCheckInTx(ctx, tx, business.ID, checkInDate(snapshot), snapshot.FinedAmount, snapshot.Notes, actorId)
				if err != nil {
					return err
				}
				if _, err := createCaseTx(ctx, tx, checkIn, snapshot.CaseText, actorId); err != nil {
					return err
				}
			}

		case ReviewResolutionDelete:
			result.BusinessId = 0

		case ReviewResolutionMerge:
			var existing Business
			if err := tx.WithContext(ctx).First(&existing, review.ExistingBusinessId).Error; err != nil {
				return utils.ErrorRecordNotFound
			}
			updates := MergeAbsentFields(&existing, snapshot)
			if len(updates) > 0 {
				if err := tx.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
					return err
				}
			}
			result.BusinessId = existing.ID
			if snapshot.HasCaseData() {
				checkIn, err := createCheckInTx(ctx, tx, existing.ID, checkInDate(snapshot), snapshot.FinedAmount, snapshot.Notes, actorId)
				if err != nil {
					return err
				}
				if _, err := createCaseTx(ctx, tx, checkIn, snapshot.CaseText, actorId); err != nil {
					return err
				}
			}
		}

		return tx.WithContext(ctx).Model(&review).Updates(map[string]interface{}{
			"status":        review.Status,
			"resolution":    review.Resolution,
			"notes":         review.Notes,
			"decided_by_id": review.DecidedById,
			"decided_at":    review.DecidedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	result.Ok = true
	RecordAudit(ctx, "review:"+string(resolution), "duplicate_review", id, "")
	return &result, nil
}

// BulkDecideDuplicateReviews applies one resolution to many reviews. Each
// review is its own transaction; one bad ID does not abort the rest, and the
// caller gets a verdict per ID.
func BulkDecideDuplicateReviews(ctx context.Context, ids []int, resolution ReviewResolution, notes string) []*ReviewDecisionResult {
	results := make([]*ReviewDecisionResult, 0, len(ids))
	for _, id := range ids {
		res, err := DecideDuplicateReview(ctx, id, resolution, notes)
		if err != nil {
			results = append(results, &ReviewDecisionResult{ReviewId: id, Ok: false, Error: err.Error()})
			continue
		}
		results = append(results, res)
	}
	return results
}

// decidedStatus maps a resolution onto the review's terminal status.
func decidedStatus(resolution ReviewResolution) ReviewStatus {
	switch resolution {
	case ReviewResolutionKeep:
		return ReviewStatusApproved
	case ReviewResolutionMerge:
		return ReviewStatusMerged
	default:
		return ReviewStatusRejected
	}
}

func checkInDate(snapshot BusinessPayload) time.Time {
	if snapshot.CaseDate != nil {
		return *snapshot.CaseDate
	}
	return time.Now()
}
