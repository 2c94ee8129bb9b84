package importer

import (
	"context"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/models"
)

// Store is the persistence surface the row pipeline needs. The production
// implementation is backed by the models package; tests swap in an in-memory
// fake.
type Store interface {
	FindDuplicate(ctx context.Context, name string, owner string, taxId string) (*models.Business, string, error)
	CreateBusiness(ctx context.Context, payload models.BusinessPayload, actorId int) (*models.Business, error)
	UpdateBusiness(ctx context.Context, businessId int, payload models.BusinessPayload) error
	CreateCheckInWithCase(ctx context.Context, businessId int, payload models.BusinessPayload, actorId int) (*models.CheckIn, *models.Case, error)
	CreateReview(ctx context.Context, review *models.DuplicateReview) error

	UpdateJobProgress(ctx context.Context, jobId int, processed int, total int, currentBatch int, totalBatches int, rowLog models.RowLogEntries, summary models.ImportSummary) error
	CompleteJob(ctx context.Context, jobId int, processed int, total int, totalBatches int, rowLog models.RowLogEntries, summary models.ImportSummary) error
	FailJob(ctx context.Context, jobId int, reason string) error
}

type dbStore struct{}

// NewStore returns the database-backed Store.
func NewStore() Store {
	return dbStore{}
}

func (dbStore) FindDuplicate(ctx context.Context, name string, owner string, taxId string) (*models.Business, string, error) {
	return models.FindDuplicateBusiness(ctx, name, owner, taxId)
}

func (dbStore) CreateBusiness(ctx context.Context, payload models.BusinessPayload, actorId int) (*models.Business, error) {
	return models.CreateBusinessFromPayload(ctx, payload, actorId)
}

func (dbStore) UpdateBusiness(ctx context.Context, businessId int, payload models.BusinessPayload) error {
	return models.UpdateBusinessFromPayload(ctx, businessId, payload)
}

func (dbStore) CreateCheckInWithCase(ctx context.Context, businessId int, payload models.BusinessPayload, actorId int) (*models.CheckIn, *models.Case, error) {
	return models.CreateCheckInWithCase(ctx, businessId, payload, actorId)
}

func (dbStore) CreateReview(ctx context.Context, review *models.DuplicateReview) error {
	return models.CreateDuplicateReview(ctx, review)
}

func (dbStore) UpdateJobProgress(ctx context.Context, jobId int, processed int, total int, currentBatch int, totalBatches int, rowLog models.RowLogEntries, summary models.ImportSummary) error {
	return models.UpdateImportJobProgress(ctx, jobId, processed, total, currentBatch, totalBatches, rowLog, summary)
}

func (dbStore) CompleteJob(ctx context.Context, jobId int, processed int, total int, totalBatches int, rowLog models.RowLogEntries, summary models.ImportSummary) error {
	return models.CompleteImportJob(ctx, jobId, processed, total, totalBatches, rowLog, summary)
}

func (dbStore) FailJob(ctx context.Context, jobId int, reason string) error {
	return models.FinishImportJob(ctx, jobId, models.ImportStatusFailed, reason)
}
