package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/utils"
	"github.com/google/uuid"
)

type Business struct {
	ID          uuid.UUID `gorm:"primary_key" json:"id"`
	LogoUrl     string    `json:"logo_url"`
	Name        string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	ContactName string    `gorm:"size:100" json:"contact_name"`
	Email       string    `gorm:"size:255" json:"email"`
	Phone       string    `gorm:"size:20" json:"phone"`
	Website     string    `gorm:"size:255" json:"website"`
	Address     string    `gorm:"type:text" json:"address"`
	Country     string    `gorm:"size:100" json:"country"`
	City        string    `gorm:"size:100" json:"city"`
	// customs identifiers used on clearance paperwork
	EoriNumber string `gorm:"size:50" json:"eori_number"`
	VatNumber  string `gorm:"size:50" json:"vat_number"`
	Timezone   string `gorm:"size:50" json:"timezone"`
	IsActive   *bool  `gorm:"not null;default:true" json:"is_active"`
	// container-tracking provider settings (empty = global env defaults)
	TrackingApiBaseUrl string    `gorm:"size:255" json:"tracking_api_base_url"`
	TrackingApiKeyRef  string    `gorm:"size:255" json:"tracking_api_key_ref"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBusiness struct {
	LogoUrl     string `json:"logo_url"`
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" binding:"required"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Address     string `json:"address"`
	Country     string `json:"country"`
	City        string `json:"city"`
	EoriNumber  string `json:"eori_number"`
	VatNumber   string `json:"vat_number"`
	Timezone    string `json:"timezone"`
}

func (business *Business) StoreRedis() error {
	return config.SetRedisObject("Business:"+business.ID.String(), business, utils.GetCacheLifespan())
}

func (business *Business) RemoveRedis() error {
	return config.RemoveRedisKey("Business:" + business.ID.String())
}

func (input *NewBusiness) validate(ctx context.Context) error {
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	return nil
}

func CreateBusiness(ctx context.Context, input *NewBusiness) (*Business, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	business := Business{
		ID:          uuid.New(),
		LogoUrl:     input.LogoUrl,
		Name:        input.Name,
		ContactName: input.ContactName,
		Email:       input.Email,
		Phone:       input.Phone,
		Website:     input.Website,
		Address:     input.Address,
		Country:     input.Country,
		City:        input.City,
		EoriNumber:  input.EoriNumber,
		VatNumber:   input.VatNumber,
		Timezone:    input.Timezone,
		IsActive:    utils.NewTrue(),
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&business).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// seed the number series so the first job and invoice get refs
	series := []*JobNumberSeries{
		{BusinessId: business.ID.String(), ModuleName: JobNumberModuleShipment, StartNumber: 1000},
		{BusinessId: business.ID.String(), ModuleName: JobNumberModuleInvoice, Prefix: "INV-", StartNumber: 0},
	}
	for _, s := range series {
		if err := tx.WithContext(ctx).Create(s).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func UpdateBusiness(ctx context.Context, input *NewBusiness) (*Business, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	business, err := GetBusinessById(ctx, businessId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&business).Updates(map[string]interface{}{
		"LogoUrl":     input.LogoUrl,
		"Name":        input.Name,
		"ContactName": input.ContactName,
		"Email":       input.Email,
		"Phone":       input.Phone,
		"Website":     input.Website,
		"Address":     input.Address,
		"Country":     input.Country,
		"City":        input.City,
		"EoriNumber":  input.EoriNumber,
		"VatNumber":   input.VatNumber,
		"Timezone":    input.Timezone,
	}).Error
	if err != nil {
		return nil, err
	}

	// invalidate cache
	if err := business.RemoveRedis(); err != nil {
		return nil, err
	}
	return business, nil
}

func GetBusinessById(ctx context.Context, id string) (*Business, error) {
	var result Business

	exists, err := config.GetRedisObject("Business:"+id, &result)
	if err != nil {
		return nil, err
	}

	if !exists {
		db := config.GetDB()
		err := db.WithContext(ctx).Where("id = ?", id).First(&result).Error
		if err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		// caching
		if err := result.StoreRedis(); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

func GetBusiness(ctx context.Context) (*Business, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return GetBusinessById(ctx, businessId)
}
