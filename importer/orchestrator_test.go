package importer

// NOTE: processSheet is exercised against the in-memory store, so these
// tests pin down the persistence discipline without MySQL: intermediate
// batches write processing-state progress, and the final counters only ever
// appear together with the completed status.

import (
	"context"
	"fmt"
	"testing"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/models"
)

func testSheet(headerRow int, rows int) *Sheet {
	sheet := &Sheet{
		Headers:   []string{"business name", "owner name", "tax id", "fined amount", "case", "case date"},
		HeaderRow: headerRow,
	}
	for i := 0; i < rows; i++ {
		sheet.Rows = append(sheet.Rows, []string{
			fmt.Sprintf("Shop %d", i), fmt.Sprintf("Owner %d", i), "", "", "", "",
		})
	}
	return sheet
}

func TestProcessSheet_FinalCountersArriveWithCompletedStatus(t *testing.T) {
	store := newMemoryStore()
	job := testJob(models.PolicyCreate)
	sheet := testSheet(1, 60)

	summary := processSheet(context.Background(), store, job, sheet, 7)

	if summary.Created != 60 {
		t.Fatalf("created = %d, want 60", summary.Created)
	}
	if len(store.jobWrites) != 2 {
		t.Fatalf("expected one progress write and one completion write, got %d", len(store.jobWrites))
	}

	for _, write := range store.jobWrites {
		if write.status == models.ImportStatusProcessing && write.processed >= write.total {
			t.Fatalf("a processing-state write carried full progress: %+v", write)
		}
	}

	final := store.jobWrites[len(store.jobWrites)-1]
	if final.status != models.ImportStatusCompleted {
		t.Fatalf("last write status = %s, want completed", final.status)
	}
	if final.processed != 60 || final.total != 60 {
		t.Fatalf("final counters = %d/%d, want 60/60", final.processed, final.total)
	}
	if final.currentBatch != 2 || final.totalBatches != 2 {
		t.Fatalf("final batches = %d/%d, want 2/2", final.currentBatch, final.totalBatches)
	}
	if models.ProgressPercent(final.processed, final.total) != 100 {
		t.Fatal("completed write must read as 100 percent")
	}

	first := store.jobWrites[0]
	if first.processed != 50 || first.currentBatch != 1 {
		t.Fatalf("first batch write = %d rows, batch %d; want 50 rows, batch 1", first.processed, first.currentBatch)
	}
}

func TestProcessSheet_RowLogCoversEveryOutcome(t *testing.T) {
	store := newMemoryStore()
	store.seed("Shop 0", "Owner 0", "")
	job := testJob(models.PolicySkip)
	sheet := testSheet(1, 3)

	processSheet(context.Background(), store, job, sheet, 7)

	final := store.jobWrites[len(store.jobWrites)-1]
	if len(final.rowLog) != 3 {
		t.Fatalf("row log has %d entries, want 3 (successes are logged too)", len(final.rowLog))
	}
	outcomes := map[string]int{}
	for _, entry := range final.rowLog {
		outcomes[entry.Outcome]++
	}
	if outcomes[OutcomeSkipped] != 1 || outcomes[OutcomeCreated] != 2 {
		t.Fatalf("row log outcomes = %v, want 1 skipped and 2 created", outcomes)
	}
}

func TestProcessSheet_RowNumbersUsePhysicalPosition(t *testing.T) {
	store := newMemoryStore()
	job := testJob(models.PolicyCreate)
	// header sits on physical row 3 because two blank rows were stripped
	sheet := testSheet(3, 2)

	processSheet(context.Background(), store, job, sheet, 7)

	final := store.jobWrites[len(store.jobWrites)-1]
	if len(final.rowLog) != 2 {
		t.Fatalf("row log has %d entries, want 2", len(final.rowLog))
	}
	if final.rowLog[0].Row != 4 || final.rowLog[1].Row != 5 {
		t.Fatalf("row numbers = %d, %d; want 4, 5", final.rowLog[0].Row, final.rowLog[1].Row)
	}
}
