package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/config"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/utils"
)

type ImportJobStatus string

const (
	ImportStatusPending    ImportJobStatus = "pending"
	ImportStatusProcessing ImportJobStatus = "processing"
	ImportStatusCompleted  ImportJobStatus = "completed"
	ImportStatusFailed     ImportJobStatus = "failed"
)

type DuplicatePolicy string

const (
	PolicySkip   DuplicatePolicy = "skip"
	PolicyUpdate DuplicatePolicy = "update"
	PolicyCreate DuplicatePolicy = "create"
	PolicyReview DuplicatePolicy = "review"
)

func ValidDuplicatePolicy(p DuplicatePolicy) bool {
	switch p {
	case PolicySkip, PolicyUpdate, PolicyCreate, PolicyReview:
		return true
	}
	return false
}

// ColumnMapping maps spreadsheet columns (0-based index) to known fields.
// A nil entry means the field was not present in the source file. Only
// business_name is mandatory for a usable mapping.
type ColumnMapping struct {
	BusinessName *int `json:"business_name"`
	OwnerName    *int `json:"owner_name"`
	TaxId        *int `json:"tax_id"`
	FinedAmount  *int `json:"fined_amount"`
	ContactPhone *int `json:"contact_phone"`
	District     *int `json:"district"`
	Department   *int `json:"department"`
	Title        *int `json:"title"`
	CaseField    *int `json:"case_field"`
	CaseDate     *int `json:"case_date"`
	Address      *int `json:"address"`
	ContactEmail *int `json:"contact_email"`
}

// Value implements the driver.Valuer interface
func (m ColumnMapping) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *ColumnMapping) Scan(value interface{}) error {
	if value == nil {
		*m = ColumnMapping{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported column mapping source type")
	}
}

type RowLogEntry struct {
	Row     int    `json:"row"`
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
}

// MaxRowLogEntries caps the persisted per-row log so a huge file cannot
// blow up the job row. The summary counters still cover every row.
const MaxRowLogEntries = 500

type RowLogEntries []RowLogEntry

// AppendCapped adds an entry, dropping the oldest one once the cap is
// reached so the log always holds the most recent rows.
func (l RowLogEntries) AppendCapped(entry RowLogEntry) RowLogEntries {
	if len(l) >= MaxRowLogEntries {
		l = l[len(l)-MaxRowLogEntries+1:]
	}
	return append(l, entry)
}

// Value implements the driver.Valuer interface
func (l RowLogEntries) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(RowLogEntries{})
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *RowLogEntries) Scan(value interface{}) error {
	if value == nil {
		*l = RowLogEntries{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported row log source type")
	}
}

type ImportSummary struct {
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	Skipped        int `json:"skipped"`
	Queued         int `json:"queued"`
	Failed         int `json:"failed"`
	CheckInsOpened int `json:"check_ins_opened"`
	CasesOpened    int `json:"cases_opened"`
}

// Value implements the driver.Valuer interface
func (s ImportSummary) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface
func (s *ImportSummary) Scan(value interface{}) error {
	if value == nil {
		*s = ImportSummary{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported import summary source type")
	}
}

type ImportJob struct {
	ID              int             `gorm:"primary_key" json:"id"`
	FileName        string          `gorm:"size:255;not null" json:"file_name"`
	ObjectKey       string          `gorm:"size:255;not null" json:"object_key"`
	Status          ImportJobStatus `gorm:"type:enum('pending','processing','completed','failed');not null;default:'pending'" json:"status"`
	DuplicatePolicy DuplicatePolicy `gorm:"type:enum('skip','update','create','review');not null;default:'review'" json:"duplicate_policy"`
	ColumnMapping   ColumnMapping   `gorm:"type:json" json:"column_mapping"`
	TotalRows       int             `gorm:"default:0" json:"total_rows"`
	ProcessedRows   int             `gorm:"default:0" json:"processed_rows"`
	CurrentBatch    int             `gorm:"default:0" json:"current_batch"`
	TotalBatches    int             `gorm:"default:0" json:"total_batches"`
	RowLog          RowLogEntries   `gorm:"type:json" json:"row_log"`
	Summary         ImportSummary   `gorm:"type:json" json:"summary"`
	FailureReason   string          `gorm:"size:500" json:"failure_reason"`
	CreatedById     int             `gorm:"default:0" json:"created_by_id"`
	StartedAt       *time.Time      `json:"started_at"`
	FinishedAt      *time.Time      `json:"finished_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewImportJob registers an uploaded spreadsheet. Callers send either the
// staged object key or the full storage URL; the handler resolves the URL
// form into a key before this reaches CreateImportJob.
type NewImportJob struct {
	FileName        string          `json:"file_name" binding:"required"`
	ObjectKey       string          `json:"object_key"`
	FileURL         string          `json:"file_url"`
	DuplicatePolicy DuplicatePolicy `json:"duplicate_policy"`
	ColumnMapping   ColumnMapping   `json:"column_mapping"`
}

// ProgressPercent is the whole-number completion ratio, rounded to the
// nearest percent. A zero total maps to zero, not a division error.
func ProgressPercent(processed int, total int) int {
	if total <= 0 {
		return 0
	}
	if processed >= total {
		return 100
	}
	percent := (processed*100 + total/2) / total
	// 100 is reserved for a fully processed file
	if percent > 99 {
		percent = 99
	}
	return percent
}

func CreateImportJob(ctx context.Context, input *NewImportJob) (*ImportJob, error) {
	if input.DuplicatePolicy == "" {
		input.DuplicatePolicy = PolicyReview
	}
	if !ValidDuplicatePolicy(input.DuplicatePolicy) {
		return nil, errors.New("unknown duplicate policy: " + string(input.DuplicatePolicy))
	}
	if input.ObjectKey == "" {
		return nil, errors.New("object key is required")
	}
	// an empty mapping means "auto-map from the header row at process time";
	// a partial mapping that skips the name column is a caller mistake
	if input.ColumnMapping != (ColumnMapping{}) && input.ColumnMapping.BusinessName == nil {
		return nil, errors.New("column mapping must include business_name")
	}

	actorId, _ := utils.GetUserIdFromContext(ctx)
	job := ImportJob{
		FileName:        input.FileName,
		ObjectKey:       input.ObjectKey,
		Status:          ImportStatusPending,
		DuplicatePolicy: input.DuplicatePolicy,
		ColumnMapping:   input.ColumnMapping,
		RowLog:          RowLogEntries{},
		CreatedById:     actorId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, err
	}
	RecordAudit(ctx, "create", "import_job", job.ID, job.FileName)
	return &job, nil
}

func GetImportJob(ctx context.Context, id int) (*ImportJob, error) {
	return utils.FetchModel[ImportJob](ctx, id)
}

func ListImportJobs(ctx context.Context, limit int) ([]*ImportJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	db := config.GetDB()
	var jobs []*ImportJob
	err := db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkImportJobProcessing flips pending to processing. The status predicate
// in the WHERE clause makes the claim atomic; a second caller sees zero rows
// affected and backs off.
func MarkImportJobProcessing(ctx context.Context, id int) error {
	db := config.GetDB()
	now := time.Now()
	result := db.WithContext(ctx).Model(&ImportJob{}).
		Where("id = ? AND status = ?", id, ImportStatusPending).
		Updates(map[string]interface{}{
			"status":     ImportStatusProcessing,
			"started_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("import job is not pending")
	}
	return nil
}

// UpdateImportJobMapping stores a mapping derived from the header row so the
// job record shows which columns actually fed each field.
func UpdateImportJobMapping(ctx context.Context, id int, mapping ColumnMapping) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&ImportJob{}).
		Where("id = ?", id).
		Update("column_mapping", mapping).Error
}

// UpdateImportJobProgress persists the counters after each batch so a poll
// of the job row always reflects real progress.
func UpdateImportJobProgress(ctx context.Context, id int, processed int, total int, currentBatch int, totalBatches int, rowLog RowLogEntries, summary ImportSummary) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_rows": processed,
			"total_rows":     total,
			"current_batch":  currentBatch,
			"total_batches":  totalBatches,
			"row_log":        rowLog,
			"summary":        summary,
		}).Error
}

// CompleteImportJob flips the job to completed and persists the final
// counters in the same statement, so a poll never observes 100 percent
// progress on a still-processing row.
func CompleteImportJob(ctx context.Context, id int, processed int, total int, totalBatches int, rowLog RowLogEntries, summary ImportSummary) error {
	db := config.GetDB()
	now := time.Now()
	return db.WithContext(ctx).Model(&ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         ImportStatusCompleted,
			"processed_rows": processed,
			"total_rows":     total,
			"current_batch":  totalBatches,
			"total_batches":  totalBatches,
			"row_log":        rowLog,
			"summary":        summary,
			"finished_at":    now,
		}).Error
}

func FinishImportJob(ctx context.Context, id int, status ImportJobStatus, failureReason string) error {
	db := config.GetDB()
	now := time.Now()
	return db.WithContext(ctx).Model(&ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         status,
			"failure_reason": failureReason,
			"finished_at":    now,
		}).Error
}

// CloneImportJobForRetry resubmits a failed job as a fresh pending job with
// the same file, mapping and policy. The failed row keeps its state; a job
// never moves backwards once it finishes.
func CloneImportJobForRetry(ctx context.Context, id int) (*ImportJob, error) {
	original, err := GetImportJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if original.Status != ImportStatusFailed {
		return nil, errors.New("only failed import jobs can be retried")
	}

	actorId, _ := utils.GetUserIdFromContext(ctx)
	clone := ImportJob{
		FileName:        original.FileName,
		ObjectKey:       original.ObjectKey,
		Status:          ImportStatusPending,
		DuplicatePolicy: original.DuplicatePolicy,
		ColumnMapping:   original.ColumnMapping,
		RowLog:          RowLogEntries{},
		CreatedById:     actorId,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&clone).Error; err != nil {
		return nil, err
	}
	RecordAudit(ctx, "retry", "import_job", id, clone.FileName)
	return &clone, nil
}
