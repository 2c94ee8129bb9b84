package models

import (
	"context"
	"time"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/config"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/utils"
)

const businessTypeCacheKey = "business-types:all"
const businessTypeCacheTTL = 10 * time.Minute

type BusinessType struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name" binding:"required"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBusinessType struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func CreateBusinessType(ctx context.Context, input *NewBusinessType) (*BusinessType, error) {
	if err := utils.ValidateUnique[BusinessType](ctx, "name", input.Name, 0); err != nil {
		return nil, err
	}

	businessType := BusinessType{
		Name:        input.Name,
		Description: input.Description,
		IsActive:    utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&businessType).Error; err != nil {
		return nil, err
	}
	if err := config.RemoveRedisKey(businessTypeCacheKey); err != nil {
		config.LogError(config.GetLogger(), "models", "CreateBusinessType", "invalidate type cache", businessType.Name, err)
	}
	return &businessType, nil
}

func GetBusinessType(ctx context.Context, id int) (*BusinessType, error) {
	return utils.FetchModel[BusinessType](ctx, id)
}

// GetBusinessTypeAll serves the reference list from the Redis object cache
// when possible. Cache misses and Redis outages fall through to the DB.
func GetBusinessTypeAll(ctx context.Context) ([]*BusinessType, error) {
	var cached []*BusinessType
	if hit, err := config.GetRedisObject(businessTypeCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	types, err := utils.FetchAllModels[BusinessType](ctx)
	if err != nil {
		return nil, err
	}
	if err := config.SetRedisObject(businessTypeCacheKey, types, businessTypeCacheTTL); err != nil {
		config.LogError(config.GetLogger(), "models", "GetBusinessTypeAll", "cache type list", nil, err)
	}
	return types, nil
}
