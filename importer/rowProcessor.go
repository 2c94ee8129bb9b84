package importer

import (
	"context"
	"errors"
	"strings"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/models"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/utils"
)

const (
	OutcomeCreated       = "created"
	OutcomeUpdated       = "updated"
	OutcomeSkipped       = "skipped"
	OutcomePendingReview = "pending_review"
	OutcomeFailed        = "failed"
)

// RowOutcome is the verdict on one processed spreadsheet row.
type RowOutcome struct {
	Outcome       string
	Message       string
	BusinessId    int
	CheckInOpened bool
	CaseOpened    bool
}

// BuildPayload turns one raw row into a candidate record via the column
// mapping. A title column, when mapped, is folded into the owner name as
// "Title: Owner" so honorifics survive without their own field.
func BuildPayload(row []string, mapping models.ColumnMapping) (models.BusinessPayload, error) {
	payload := models.BusinessPayload{
		Name:         CellAt(row, mapping.BusinessName),
		OwnerName:    CellAt(row, mapping.OwnerName),
		TaxId:        CellAt(row, mapping.TaxId),
		Address:      CellAt(row, mapping.Address),
		District:     CellAt(row, mapping.District),
		Department:   CellAt(row, mapping.Department),
		ContactPhone: CellAt(row, mapping.ContactPhone),
		ContactEmail: CellAt(row, mapping.ContactEmail),
		CaseText:     CellAt(row, mapping.CaseField),
	}

	if payload.Name == "" {
		return payload, errors.New("business name is empty")
	}

	if title := CellAt(row, mapping.Title); title != "" && payload.OwnerName != "" {
		payload.OwnerName = title + ": " + payload.OwnerName
	}

	if raw := CellAt(row, mapping.FinedAmount); raw != "" {
		// thousand separators show up in hand-edited sheets
		amount, err := utils.ParseDecimal(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			return payload, errors.New("invalid fined amount: " + raw)
		}
		payload.FinedAmount = &amount
	}

	if raw := CellAt(row, mapping.CaseDate); raw != "" {
		day, err := utils.ParseCellDate(raw)
		if err != nil {
			return payload, errors.New("invalid case date: " + raw)
		}
		payload.CaseDate = &day
	}

	return payload, nil
}

// ProcessRow runs one row through duplicate detection and the job's
// duplicate policy, then opens a check-in and case when the row carries case
// data. Row numbers are 1-based positions in the source file, header
// included.
func ProcessRow(ctx context.Context, store Store, job *models.ImportJob, rowNumber int, row []string, actorId int) RowOutcome {
	payload, err := BuildPayload(row, job.ColumnMapping)
	if err != nil {
		return RowOutcome{Outcome: OutcomeFailed, Message: err.Error()}
	}

	existing, matchType, err := store.FindDuplicate(ctx, payload.Name, payload.OwnerName, payload.TaxId)
	if err != nil {
		return RowOutcome{Outcome: OutcomeFailed, Message: err.Error()}
	}

	if existing == nil {
		return createFresh(ctx, store, payload, actorId)
	}

	switch job.DuplicatePolicy {
	case models.PolicySkip:
		return RowOutcome{
			Outcome:    OutcomeSkipped,
			Message:    "duplicate of business #" + existing.BusinessNo + " (" + matchType + ")",
			BusinessId: existing.ID,
		}

	case models.PolicyUpdate:
		if err := store.UpdateBusiness(ctx, existing.ID, payload); err != nil {
			return RowOutcome{Outcome: OutcomeFailed, Message: err.Error()}
		}
		outcome := RowOutcome{Outcome: OutcomeUpdated, BusinessId: existing.ID}
		if payload.HasCaseData() {
			if err := openCasework(ctx, store, existing.ID, payload, actorId, &outcome); err != nil {
				return RowOutcome{Outcome: OutcomeFailed, Message: err.Error()}
			}
		}
		return outcome

	case models.PolicyCreate:
		return createFresh(ctx, store, payload, actorId)

	case models.PolicyReview:
		review := models.DuplicateReview{
			ImportJobId:        job.ID,
			RowNumber:          rowNumber,
			ExistingBusinessId: existing.ID,
			MatchType:          matchType,
			Snapshot:           models.BusinessSnapshot(payload),
		}
		if err := store.CreateReview(ctx, &review); err != nil {
			return RowOutcome{Outcome: OutcomeFailed, Message: err.Error()}
		}
		return RowOutcome{
			Outcome:    OutcomePendingReview,
			Message:    "queued for review (" + matchType + ")",
			BusinessId: existing.ID,
		}

	default:
		return RowOutcome{Outcome: OutcomeFailed, Message: "unknown duplicate policy: " + string(job.DuplicatePolicy)}
	}
}

func createFresh(ctx context.Context, store Store, payload models.BusinessPayload, actorId int) RowOutcome {
	business, err := store.CreateBusiness(ctx, payload, actorId)
	if err != nil {
		return RowOutcome{Outcome: OutcomeFailed, Message: err.Error()}
	}
	outcome := RowOutcome{Outcome: OutcomeCreated, BusinessId: business.ID}
	if payload.HasCaseData() {
		if err := openCasework(ctx, store, business.ID, payload, actorId, &outcome); err != nil {
			return RowOutcome{Outcome: OutcomeFailed, Message: err.Error()}
		}
	}
	return outcome
}

func openCasework(ctx context.Context, store Store, businessId int, payload models.BusinessPayload, actorId int, outcome *RowOutcome) error {
	_, caseFile, err := store.CreateCheckInWithCase(ctx, businessId, payload, actorId)
	if err != nil {
		return err
	}
	outcome.CheckInOpened = true
	outcome.CaseOpened = caseFile != nil
	return nil
}

// tally folds one outcome into the running summary.
func tally(summary *models.ImportSummary, outcome RowOutcome) {
	switch outcome.Outcome {
	case OutcomeCreated:
		summary.Created++
	case OutcomeUpdated:
		summary.Updated++
	case OutcomeSkipped:
		summary.Skipped++
	case OutcomePendingReview:
		summary.Queued++
	case OutcomeFailed:
		summary.Failed++
	}
	if outcome.CheckInOpened {
		summary.CheckInsOpened++
	}
	if outcome.CaseOpened {
		summary.CasesOpened++
	}
}

// skippableRow drops fully blank lines so trailing spreadsheet padding does
// not pollute the counters.
func skippableRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
