package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/models"
	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. The fake Store implements the
// same duplicate-detection contract as the models package so the policy
// semantics can be validated without MySQL.

type jobSnapshot struct {
	status       models.ImportJobStatus
	processed    int
	total        int
	currentBatch int
	totalBatches int
	rowLog       models.RowLogEntries
	summary      models.ImportSummary
}

type memoryStore struct {
	businesses []*models.Business
	reviews    []*models.DuplicateReview
	checkIns   int
	cases      int
	updates    map[int]models.BusinessPayload
	nextId     int

	jobWrites []jobSnapshot

	failCreate bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{updates: map[int]models.BusinessPayload{}, nextId: 1}
}

func (s *memoryStore) seed(name, owner, taxId string) *models.Business {
	b := &models.Business{
		ID:        s.nextId,
		Name:      name,
		OwnerName: owner,
		TaxId:     taxId,
	}
	s.nextId++
	s.businesses = append(s.businesses, b)
	return b
}

func (s *memoryStore) FindDuplicate(_ context.Context, name, owner, taxId string) (*models.Business, string, error) {
	if taxId != "" {
		for _, b := range s.businesses {
			if b.TaxId == taxId {
				return b, models.MatchTypeTaxId, nil
			}
		}
	}
	if name != "" && owner != "" {
		for _, b := range s.businesses {
			if strings.EqualFold(b.Name, name) && strings.EqualFold(b.OwnerName, owner) {
				return b, models.MatchTypeBoth, nil
			}
		}
	}
	return nil, "", nil
}

func (s *memoryStore) CreateBusiness(_ context.Context, payload models.BusinessPayload, _ int) (*models.Business, error) {
	if s.failCreate {
		return nil, errors.New("insert failed")
	}
	b := s.seed(payload.Name, payload.OwnerName, payload.TaxId)
	return b, nil
}

func (s *memoryStore) UpdateBusiness(_ context.Context, businessId int, payload models.BusinessPayload) error {
	s.updates[businessId] = payload
	return nil
}

func (s *memoryStore) CreateCheckInWithCase(_ context.Context, businessId int, payload models.BusinessPayload, _ int) (*models.CheckIn, *models.Case, error) {
	s.checkIns++
	checkIn := &models.CheckIn{ID: s.checkIns, BusinessId: businessId}
	var caseFile *models.Case
	if payload.HasCaseData() {
		s.cases++
		caseFile = &models.Case{ID: s.cases, BusinessId: businessId, CheckInId: checkIn.ID}
	}
	return checkIn, caseFile, nil
}

func (s *memoryStore) CreateReview(_ context.Context, review *models.DuplicateReview) error {
	s.reviews = append(s.reviews, review)
	return nil
}

func (s *memoryStore) UpdateJobProgress(_ context.Context, _ int, processed, total, currentBatch, totalBatches int, rowLog models.RowLogEntries, summary models.ImportSummary) error {
	s.jobWrites = append(s.jobWrites, jobSnapshot{
		status:       models.ImportStatusProcessing,
		processed:    processed,
		total:        total,
		currentBatch: currentBatch,
		totalBatches: totalBatches,
		rowLog:       append(models.RowLogEntries{}, rowLog...),
		summary:      summary,
	})
	return nil
}

func (s *memoryStore) CompleteJob(_ context.Context, _ int, processed, total, totalBatches int, rowLog models.RowLogEntries, summary models.ImportSummary) error {
	s.jobWrites = append(s.jobWrites, jobSnapshot{
		status:       models.ImportStatusCompleted,
		processed:    processed,
		total:        total,
		currentBatch: totalBatches,
		totalBatches: totalBatches,
		rowLog:       append(models.RowLogEntries{}, rowLog...),
		summary:      summary,
	})
	return nil
}

func (s *memoryStore) FailJob(_ context.Context, _ int, _ string) error {
	s.jobWrites = append(s.jobWrites, jobSnapshot{status: models.ImportStatusFailed})
	return nil
}

func intPtr(i int) *int { return &i }

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func testJob(policy models.DuplicatePolicy) *models.ImportJob {
	return &models.ImportJob{
		ID:              1,
		DuplicatePolicy: policy,
		ColumnMapping: models.ColumnMapping{
			BusinessName: intPtr(0),
			OwnerName:    intPtr(1),
			TaxId:        intPtr(2),
			FinedAmount:  intPtr(3),
			CaseField:    intPtr(4),
			CaseDate:     intPtr(5),
		},
	}
}

func TestProcessRow_NewBusinessWithCase(t *testing.T) {
	store := newMemoryStore()
	job := testJob(models.PolicySkip)
	row := []string{"Golden Lion Trading", "U Kyaw", "TIN-100", "50000", "TCC violation", "2025-01-15"}

	outcome := ProcessRow(context.Background(), store, job, 2, row, 7)
	if outcome.Outcome != OutcomeCreated {
		t.Fatalf("expected created, got %s (%s)", outcome.Outcome, outcome.Message)
	}
	if !outcome.CheckInOpened || !outcome.CaseOpened {
		t.Fatalf("expected check-in and case to open, got checkIn=%v case=%v", outcome.CheckInOpened, outcome.CaseOpened)
	}
	if len(store.businesses) != 1 {
		t.Fatalf("expected 1 business, got %d", len(store.businesses))
	}
}

func TestProcessRow_NewBusinessWithoutCaseData(t *testing.T) {
	store := newMemoryStore()
	job := testJob(models.PolicySkip)
	row := []string{"Quiet Shop", "Daw Mya", "", "", "", ""}

	outcome := ProcessRow(context.Background(), store, job, 2, row, 7)
	if outcome.Outcome != OutcomeCreated {
		t.Fatalf("expected created, got %s (%s)", outcome.Outcome, outcome.Message)
	}
	if outcome.CheckInOpened || outcome.CaseOpened {
		t.Fatal("no case data in row, nothing should be opened")
	}
}

func TestProcessRow_SkipPolicy(t *testing.T) {
	store := newMemoryStore()
	store.seed("Golden Lion Trading", "U Kyaw", "TIN-100")
	job := testJob(models.PolicySkip)
	row := []string{"Golden Lion Trading", "U Kyaw", "TIN-100", "50000", "TCC", "2025-01-15"}

	outcome := ProcessRow(context.Background(), store, job, 2, row, 7)
	if outcome.Outcome != OutcomeSkipped {
		t.Fatalf("expected skipped, got %s", outcome.Outcome)
	}
	if len(store.businesses) != 1 || store.checkIns != 0 {
		t.Fatal("skip must not create anything")
	}
}

func TestProcessRow_UpdatePolicyOpensCasework(t *testing.T) {
	store := newMemoryStore()
	existing := store.seed("Golden Lion Trading", "U Kyaw", "TIN-100")
	job := testJob(models.PolicyUpdate)
	row := []string{"Golden Lion Trading", "U Kyaw", "TIN-100", "75000", "EVC issue", "2025-02-01"}

	outcome := ProcessRow(context.Background(), store, job, 2, row, 7)
	if outcome.Outcome != OutcomeUpdated {
		t.Fatalf("expected updated, got %s (%s)", outcome.Outcome, outcome.Message)
	}
	if _, ok := store.updates[existing.ID]; !ok {
		t.Fatal("existing business was not updated")
	}
	if !outcome.CheckInOpened || !outcome.CaseOpened {
		t.Fatal("case-worthy row under update policy must open casework")
	}
}

func TestProcessRow_CreatePolicyDuplicates(t *testing.T) {
	store := newMemoryStore()
	store.seed("Golden Lion Trading", "U Kyaw", "TIN-100")
	job := testJob(models.PolicyCreate)
	row := []string{"Golden Lion Trading", "U Kyaw", "TIN-100", "", "", ""}

	outcome := ProcessRow(context.Background(), store, job, 2, row, 7)
	if outcome.Outcome != OutcomeCreated {
		t.Fatalf("expected created, got %s", outcome.Outcome)
	}
	if len(store.businesses) != 2 {
		t.Fatalf("create policy must insert a second record, got %d", len(store.businesses))
	}
}

func TestProcessRow_ReviewPolicyQueuesSnapshot(t *testing.T) {
	store := newMemoryStore()
	existing := store.seed("Golden Lion Trading", "U Kyaw", "TIN-100")
	job := testJob(models.PolicyReview)
	row := []string{"Golden Lion Trading", "U Kyaw", "TIN-100", "50000", "TCC", "2025-01-15"}

	outcome := ProcessRow(context.Background(), store, job, 9, row, 7)
	if outcome.Outcome != OutcomePendingReview {
		t.Fatalf("expected pending_review, got %s (%s)", outcome.Outcome, outcome.Message)
	}
	if len(store.reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(store.reviews))
	}
	review := store.reviews[0]
	if review.ExistingBusinessId != existing.ID {
		t.Fatalf("review points at business %d, want %d", review.ExistingBusinessId, existing.ID)
	}
	if review.RowNumber != 9 {
		t.Fatalf("review row number = %d, want 9", review.RowNumber)
	}
	if review.MatchType != models.MatchTypeTaxId {
		t.Fatalf("match type = %s, want %s", review.MatchType, models.MatchTypeTaxId)
	}
	snapshot := models.BusinessPayload(review.Snapshot)
	if snapshot.FinedAmount == nil || !snapshot.FinedAmount.Equal(mustDecimal(t, "50000")) {
		t.Fatal("snapshot lost the fined amount")
	}
	if store.checkIns != 0 {
		t.Fatal("review policy must not open casework before the decision")
	}
}

func TestProcessRow_EmptyNameFails(t *testing.T) {
	store := newMemoryStore()
	job := testJob(models.PolicySkip)

	outcome := ProcessRow(context.Background(), store, job, 2, []string{"", "U Kyaw", "", "", "", ""}, 7)
	if outcome.Outcome != OutcomeFailed {
		t.Fatalf("expected failed, got %s", outcome.Outcome)
	}
}

func TestProcessRow_BadAmountFails(t *testing.T) {
	store := newMemoryStore()
	job := testJob(models.PolicySkip)

	outcome := ProcessRow(context.Background(), store, job, 2, []string{"Shop", "Owner", "", "fifty", "", ""}, 7)
	if outcome.Outcome != OutcomeFailed {
		t.Fatalf("expected failed, got %s", outcome.Outcome)
	}
	if len(store.businesses) != 0 {
		t.Fatal("a failed row must not create a business")
	}
}

func TestBuildPayload_TitleFoldsIntoOwner(t *testing.T) {
	mapping := models.ColumnMapping{
		BusinessName: intPtr(0),
		OwnerName:    intPtr(1),
		Title:        intPtr(2),
	}
	payload, err := BuildPayload([]string{"Shop", "Kyaw Kyaw", "Daw"}, mapping)
	if err != nil {
		t.Fatal(err)
	}
	if payload.OwnerName != "Daw: Kyaw Kyaw" {
		t.Fatalf("owner = %q, want %q", payload.OwnerName, "Daw: Kyaw Kyaw")
	}
}

func TestBuildPayload_RaggedRow(t *testing.T) {
	mapping := models.ColumnMapping{
		BusinessName: intPtr(0),
		TaxId:        intPtr(5),
	}
	payload, err := BuildPayload([]string{"Shop"}, mapping)
	if err != nil {
		t.Fatal(err)
	}
	if payload.TaxId != "" {
		t.Fatalf("out-of-range cell should be empty, got %q", payload.TaxId)
	}
}

func TestTallyAccumulates(t *testing.T) {
	summary := models.ImportSummary{}
	tally(&summary, RowOutcome{Outcome: OutcomeCreated, CheckInOpened: true, CaseOpened: true})
	tally(&summary, RowOutcome{Outcome: OutcomeUpdated, CheckInOpened: true})
	tally(&summary, RowOutcome{Outcome: OutcomeSkipped})
	tally(&summary, RowOutcome{Outcome: OutcomePendingReview})
	tally(&summary, RowOutcome{Outcome: OutcomeFailed})

	if summary.Created != 1 || summary.Updated != 1 || summary.Skipped != 1 || summary.Queued != 1 || summary.Failed != 1 {
		t.Fatalf("summary miscounted: %+v", summary)
	}
	if summary.CheckInsOpened != 2 || summary.CasesOpened != 1 {
		t.Fatalf("casework miscounted: %+v", summary)
	}
}
