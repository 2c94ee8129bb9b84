package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/config"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/models"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/utils"
)

const (
	batchSize      = 50
	previewRows    = 10
	processLockTTL = 30 * time.Minute
)

// Preview is what the operator sees before committing to a mapping: the
// detected headers, a suggested column mapping, and a few sample rows.
type Preview struct {
	Headers          []string             `json:"headers"`
	SuggestedMapping models.ColumnMapping `json:"suggested_mapping"`
	SampleRows       [][]string           `json:"sample_rows"`
	TotalRows        int                  `json:"total_rows"`
}

// PreviewFile downloads the uploaded object and parses just enough to drive
// the mapping screen.
func PreviewFile(ctx context.Context, fileName string, objectKey string) (*Preview, error) {
	content, err := utils.DownloadFromGCS(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	defer content.Close()

	sheet, err := ParseSpreadsheet(fileName, content)
	if err != nil {
		return nil, err
	}

	sample := sheet.Rows
	if len(sample) > previewRows {
		sample = sample[:previewRows]
	}

	return &Preview{
		Headers:          sheet.Headers,
		SuggestedMapping: SuggestColumnMapping(sheet.Headers),
		SampleRows:       sample,
		TotalRows:        len(sheet.Rows),
	}, nil
}

// StartProcess claims a pending job and kicks off the background run. The
// redis lock fences concurrent workers across instances; the pending-status
// claim fences a double submit on the same instance. Returns once the job is
// claimed; progress is polled off the job row.
func StartProcess(ctx context.Context, store Store, jobId int) error {
	release, err := utils.ObtainLock(ctx, "import-job", fmt.Sprint(jobId), processLockTTL, "importer", "StartProcess")
	if err != nil {
		return err
	}

	if err := models.MarkImportJobProcessing(ctx, jobId); err != nil {
		release()
		return err
	}

	job, err := models.GetImportJob(ctx, jobId)
	if err != nil {
		release()
		return err
	}

	actorId, _ := utils.GetUserIdFromContext(ctx)
	detachedCtx := utils.DetachedActorContext(ctx)

	go func() {
		defer release()
		defer func() {
			if r := recover(); r != nil {
				logger := config.GetLogger()
				config.LogError(logger, "importer", "StartProcess", "panic in import run", job.ID, fmt.Errorf("%v", r))
				_ = store.FailJob(detachedCtx, job.ID, fmt.Sprintf("internal error: %v", r))
			}
		}()
		run(detachedCtx, store, job, actorId)
	}()

	return nil
}

// run is the whole import loop for one claimed job. Rows are processed in
// batches with the counters persisted after every batch, so progress survives
// a crash and the UI can poll mid-run.
func run(ctx context.Context, store Store, job *models.ImportJob, actorId int) {
	logger := config.GetLogger()

	content, err := utils.DownloadFromGCS(ctx, job.ObjectKey)
	if err != nil {
		config.LogError(logger, "importer", "run", "download import file", job.ObjectKey, err)
		_ = store.FailJob(ctx, job.ID, "could not download file: "+err.Error())
		return
	}
	defer content.Close()

	sheet, err := ParseSpreadsheet(job.FileName, content)
	if err != nil {
		config.LogError(logger, "importer", "run", "parse import file", job.FileName, err)
		_ = store.FailJob(ctx, job.ID, err.Error())
		return
	}

	if job.ColumnMapping.BusinessName == nil {
		mapping := SuggestColumnMapping(sheet.Headers)
		if mapping.BusinessName == nil {
			_ = store.FailJob(ctx, job.ID, "could not locate a business name column")
			return
		}
		job.ColumnMapping = mapping
		if err := models.UpdateImportJobMapping(ctx, job.ID, mapping); err != nil {
			config.LogError(logger, "importer", "run", "persist auto mapping", job.ID, err)
		}
	}

	summary := processSheet(ctx, store, job, sheet, actorId)

	eventPayload, _ := json.Marshal(summary)
	config.PublishCaseworkEventAsync(config.CaseworkEvent{
		Action:     "import.completed",
		EntityType: "import_job",
		EntityId:   job.ID,
		ActorId:    actorId,
		OccurredAt: time.Now(),
		Payload:    eventPayload,
	})

	if job.CreatedById > 0 {
		notification := models.Notification{
			Kind:        models.NotificationImportDone,
			RecipientId: job.CreatedById,
			Message: fmt.Sprintf("Import %s finished: %d created, %d updated, %d skipped, %d queued for review, %d failed",
				job.FileName, summary.Created, summary.Updated, summary.Skipped, summary.Queued, summary.Failed),
		}
		if err := models.CreateNotification(ctx, &notification); err != nil {
			config.LogError(logger, "importer", "run", "notify uploader", job.ID, err)
		}
	}
}

// processSheet drives the batch loop over a parsed sheet. Progress is
// persisted after every full batch except the last one; the final counters
// ride along with the completed status in a single update, so a poll never
// sees 100 percent on a still-processing job.
func processSheet(ctx context.Context, store Store, job *models.ImportJob, sheet *Sheet, actorId int) models.ImportSummary {
	logger := config.GetLogger()

	total := len(sheet.Rows)
	totalBatches := (total + batchSize - 1) / batchSize
	processed := 0
	summary := models.ImportSummary{}
	rowLog := models.RowLogEntries{}

	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		currentBatch := start/batchSize + 1

		for i := start; i < end; i++ {
			row := sheet.Rows[i]
			rowNumber := sheet.HeaderRow + 1 + i
			processed++

			if skippableRow(row) {
				continue
			}

			outcome := ProcessRow(ctx, store, job, rowNumber, row, actorId)
			tally(&summary, outcome)
			rowLog = rowLog.AppendCapped(models.RowLogEntry{
				Row:     rowNumber,
				Outcome: outcome.Outcome,
				Message: outcome.Message,
			})
		}

		if end == total {
			break
		}
		if err := store.UpdateJobProgress(ctx, job.ID, processed, total, currentBatch, totalBatches, rowLog, summary); err != nil {
			config.LogError(logger, "importer", "processSheet", "persist progress", job.ID, err)
		}
	}

	if err := store.CompleteJob(ctx, job.ID, processed, total, totalBatches, rowLog, summary); err != nil {
		config.LogError(logger, "importer", "processSheet", "finish job", job.ID, err)
	}
	return summary
}
