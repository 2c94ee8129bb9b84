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
)

// Business is a regulated entity. Businesses are created by direct API, by
// import (fresh or merge) or by a duplicate-review decision; the core never
// deletes them.
type Business struct {
	ID             int           `gorm:"primary_key" json:"id"`
	BusinessNo     string        `gorm:"size:30;uniqueIndex;not null" json:"business_no"`
	Name           string        `gorm:"size:191;not null;index:idx_name_owner" json:"name" binding:"required"`
	OwnerName      string        `gorm:"size:191;index:idx_name_owner" json:"owner_name"`
	TaxId          string        `gorm:"size:30;index" json:"tax_id"`
	RegistrationNo string        `gorm:"size:30" json:"registration_no"`
	Address        string        `gorm:"size:255" json:"address"`
	District       string        `gorm:"size:100" json:"district"`
	Department     string        `gorm:"size:100" json:"department"`
	ContactPhone   string        `gorm:"size:20" json:"contact_phone"`
	ContactEmail   string        `gorm:"size:100" json:"contact_email"`
	BusinessTypeId int           `gorm:"default:0" json:"business_type_id"`
	BusinessType   *BusinessType `json:"business_type"`
	CreatedById    int           `gorm:"default:0" json:"created_by_id"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// Duplicate match types, in detection priority order.
const (
	MatchTypeTaxId            = "tax_id"
	MatchTypeBoth             = "both"
	MatchTypeBusinessNameOnly = "business_name_only"
)

// BusinessPayload is the closed candidate record built from an import row or
// a duplicate-review snapshot. One optional field per canonical column.
type BusinessPayload struct {
	Name           string           `json:"name"`
	OwnerName      string           `json:"owner_name,omitempty"`
	TaxId          string           `json:"tax_id,omitempty"`
	Address        string           `json:"address,omitempty"`
	District       string           `json:"district,omitempty"`
	Department     string           `json:"department,omitempty"`
	ContactPhone   string           `json:"contact_phone,omitempty"`
	ContactEmail   string           `json:"contact_email,omitempty"`
	BusinessTypeId int              `json:"business_type_id,omitempty"`
	FinedAmount    *decimal.Decimal `json:"fined_amount,omitempty"`
	CaseText       string           `json:"case_text,omitempty"`
	CaseDate       *time.Time       `json:"case_date,omitempty"`
	Notes          string           `json:"notes,omitempty"`
}

// HasCaseData reports whether the payload carries a case-worthy signal:
// a fine amount, a case description, or a case date.
func (p BusinessPayload) HasCaseData() bool {
	return p.FinedAmount != nil || strings.TrimSpace(p.CaseText) != "" || p.CaseDate != nil
}

type NewBusiness struct {
	Name           string `json:"name" binding:"required"`
	OwnerName      string `json:"owner_name"`
	TaxId          string `json:"tax_id"`
	Address        string `json:"address"`
	District       string `json:"district"`
	Department     string `json:"department"`
	ContactPhone   string `json:"contact_phone"`
	ContactEmail   string `json:"contact_email"`
	BusinessTypeId int    `json:"business_type_id"`
}

func (input *NewBusiness) validate(ctx context.Context) error {
	if input.ContactPhone != "" {
		if err := utils.ValidatePhoneNumber(input.ContactPhone, utils.CountryCode); err != nil {
			return errors.New("invalid contact phone: " + err.Error())
		}
	}
	if input.ContactEmail != "" && !utils.IsValidEmail(input.ContactEmail) {
		return errors.New("invalid contact email")
	}
	if input.BusinessTypeId > 0 {
		if err := utils.ValidateResourceId[BusinessType](ctx, input.BusinessTypeId); err != nil {
			return errors.New("business type not found")
		}
	}
	return nil
}

// FindDuplicateBusiness applies the duplicate detection rules in priority
// order and returns the matched business with its match type, or (nil, "").
//
//  1. tax id provided: exact match on stored tax_id.
//  2. both name and owner provided: case-insensitive exact match on both.
//  3. otherwise not a duplicate. A name-only match with a different or
//     absent owner is a distinct business; no fuzzy matching.
func FindDuplicateBusiness(ctx context.Context, name string, owner string, taxId string) (*Business, string, error) {
	db := config.GetDB()

	name = strings.TrimSpace(name)
	owner = strings.TrimSpace(owner)
	taxId = strings.TrimSpace(taxId)

	if taxId != "" {
		var business Business
		err := db.WithContext(ctx).Where("tax_id = ?", taxId).First(&business).Error
		if err == nil {
			return &business, MatchTypeTaxId, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", err
		}
	}

	if name != "" && owner != "" {
		var business Business
		err := db.WithContext(ctx).
			Where("LOWER(name) = LOWER(?) AND LOWER(owner_name) = LOWER(?)", name, owner).
			First(&business).Error
		if err == nil {
			return &business, MatchTypeBoth, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", err
		}
	}

	return nil, "", nil
}

// createBusinessTx persists a business from a payload inside tx, generating
// the date-scoped identifiers. Tax id is generated when the payload has none.
func createBusinessTx(ctx context.Context, tx *gorm.DB, payload BusinessPayload, actorId int) (*Business, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, errors.New("business name is required")
	}

	today := time.Now()

	businessNo, err := nextDailyNumber(ctx, tx, SequenceScopeBusiness, "B", today)
	if err != nil {
		return nil, err
	}

	taxId := strings.TrimSpace(payload.TaxId)
	if taxId == "" {
		taxId, err = nextDailyNumber(ctx, tx, SequenceScopeTaxId, "T", today)
		if err != nil {
			return nil, err
		}
	}

	registrationNo, err := nextDailyNumber(ctx, tx, SequenceScopeRegistration, "R", today)
	if err != nil {
		return nil, err
	}

	business := Business{
		BusinessNo:     businessNo,
		Name:           name,
		OwnerName:      strings.TrimSpace(payload.OwnerName),
		TaxId:          taxId,
		RegistrationNo: registrationNo,
		Address:        payload.Address,
		District:       payload.District,
		Department:     payload.Department,
		ContactPhone:   payload.ContactPhone,
		ContactEmail:   payload.ContactEmail,
		BusinessTypeId: payload.BusinessTypeId,
		CreatedById:    actorId,
	}

	if err := tx.WithContext(ctx).Create(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// CreateBusinessFromPayload persists a candidate payload as a new business.
func CreateBusinessFromPayload(ctx context.Context, payload BusinessPayload, actorId int) (*Business, error) {
	db := config.GetDB()
	var business *Business
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		business, txErr = createBusinessTx(ctx, tx, payload, actorId)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	RecordAudit(ctx, "create", "business", business.ID, business.Name)
	return business, nil
}

// CreateBusiness is the direct API path; it validates contact details, then
// shares the generation path with the import pipeline.
func CreateBusiness(ctx context.Context, input *NewBusiness) (*Business, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	actorId, _ := utils.GetUserIdFromContext(ctx)
	return CreateBusinessFromPayload(ctx, BusinessPayload{
		Name:           input.Name,
		OwnerName:      input.OwnerName,
		TaxId:          input.TaxId,
		Address:        input.Address,
		District:       input.District,
		Department:     input.Department,
		ContactPhone:   input.ContactPhone,
		ContactEmail:   input.ContactEmail,
		BusinessTypeId: input.BusinessTypeId,
	}, actorId)
}

// UpdateBusinessFromPayload overwrites the existing business's fields with
// the candidate payload (duplicate policy "update").
func UpdateBusinessFromPayload(ctx context.Context, businessId int, payload BusinessPayload) error {
	business, err := utils.FetchModel[Business](ctx, businessId)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"name":       strings.TrimSpace(payload.Name),
		"owner_name": strings.TrimSpace(payload.OwnerName),
	}
	if strings.TrimSpace(payload.TaxId) != "" {
		updates["tax_id"] = strings.TrimSpace(payload.TaxId)
	}
	if payload.Address != "" {
		updates["address"] = payload.Address
	}
	if payload.District != "" {
		updates["district"] = payload.District
	}
	if payload.Department != "" {
		updates["department"] = payload.Department
	}
	if payload.ContactPhone != "" {
		updates["contact_phone"] = payload.ContactPhone
	}
	if payload.ContactEmail != "" {
		updates["contact_email"] = payload.ContactEmail
	}
	if payload.BusinessTypeId > 0 {
		updates["business_type_id"] = payload.BusinessTypeId
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(business).Updates(updates).Error; err != nil {
		return err
	}
	RecordAudit(ctx, "update", "business", business.ID, business.Name)
	return nil
}

// MergeAbsentFields returns column updates for snapshot fields that are
// absent on the existing business. Populated fields are never overwritten.
func MergeAbsentFields(existing *Business, snapshot BusinessPayload) map[string]interface{} {
	updates := map[string]interface{}{}
	if existing.OwnerName == "" && strings.TrimSpace(snapshot.OwnerName) != "" {
		updates["owner_name"] = strings.TrimSpace(snapshot.OwnerName)
	}
	if existing.Address == "" && snapshot.Address != "" {
		updates["address"] = snapshot.Address
	}
	if existing.District == "" && snapshot.District != "" {
		updates["district"] = snapshot.District
	}
	if existing.Department == "" && snapshot.Department != "" {
		updates["department"] = snapshot.Department
	}
	if existing.ContactPhone == "" && snapshot.ContactPhone != "" {
		updates["contact_phone"] = snapshot.ContactPhone
	}
	if existing.ContactEmail == "" && snapshot.ContactEmail != "" {
		updates["contact_email"] = snapshot.ContactEmail
	}
	if existing.BusinessTypeId == 0 && snapshot.BusinessTypeId > 0 {
		updates["business_type_id"] = snapshot.BusinessTypeId
	}
	return updates
}

func GetBusiness(ctx context.Context, id int) (*Business, error) {
	return utils.FetchModel[Business](ctx, id, "BusinessType")
}

func SearchBusinesses(ctx context.Context, name *string, district *string) ([]*Business, error) {
	db := config.GetDB()
	var results []*Business

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if district != nil && len(*district) > 0 {
		dbCtx = dbCtx.Where("district = ?", *district)
	}
	err := dbCtx.Order("name").Limit(config.SearchLimit * 5).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
