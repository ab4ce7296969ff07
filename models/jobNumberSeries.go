package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/utils"
)

const (
	JobNumberModuleShipment = "shipments"
	JobNumberModuleInvoice  = "invoices"
)

// JobNumberSeries allocates human-facing reference numbers per business.
// Shipments get a bare integer ref (start number + sequence); invoices get
// a prefixed, zero-padded number.
type JobNumberSeries struct {
	ID          int       `gorm:"primary_key" json:"id"`
	BusinessId  string    `gorm:"size:64;not null;index:uniq_series,unique" json:"business_id"`
	ModuleName  string    `gorm:"size:50;not null;index:uniq_series,unique" json:"module_name"`
	Prefix      string    `gorm:"size:20" json:"prefix"`
	StartNumber int64     `gorm:"not null;default:1000" json:"start_number"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewJobNumberSeries struct {
	ModuleName  string `json:"module_name" binding:"required"`
	Prefix      string `json:"prefix"`
	StartNumber int64  `json:"start_number"`
}

func getSeries(ctx context.Context, businessId string, moduleName string) (*JobNumberSeries, error) {
	db := config.GetDB()
	var series JobNumberSeries
	err := db.WithContext(ctx).
		Where("business_id = ? AND module_name = ?", businessId, moduleName).
		First(&series).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &series, nil
}

// nextJobRef allocates the next shipment job ref for the business.
func nextJobRef(ctx context.Context, businessId string) (int, int64, error) {
	series, err := getSeries(ctx, businessId, JobNumberModuleShipment)
	if err != nil {
		return 0, 0, err
	}
	seqNo, err := utils.GetSequence[Shipment](ctx, businessId)
	if err != nil {
		return 0, 0, err
	}
	return int(series.StartNumber + seqNo), seqNo, nil
}

// nextInvoiceNumber allocates the next formatted invoice number.
func nextInvoiceNumber(ctx context.Context, businessId string) (string, int64, error) {
	prefix, err := getNumberPrefix(ctx, businessId, JobNumberModuleInvoice)
	if err != nil {
		return "", 0, err
	}
	series, err := getSeries(ctx, businessId, JobNumberModuleInvoice)
	if err != nil {
		return "", 0, err
	}
	seqNo, err := utils.GetSequence[Invoice](ctx, businessId)
	if err != nil {
		return "", 0, err
	}
	return fmt.Sprintf("%s%06d", prefix, series.StartNumber+seqNo), seqNo, nil
}

func UpdateJobNumberSeries(ctx context.Context, input *NewJobNumberSeries) (*JobNumberSeries, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if input.ModuleName != JobNumberModuleShipment && input.ModuleName != JobNumberModuleInvoice {
		return nil, errors.New("invalid module name")
	}

	series, err := getSeries(ctx, businessId, input.ModuleName)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&series).Updates(map[string]interface{}{
		"Prefix":      input.Prefix,
		"StartNumber": input.StartNumber,
	}).Error
	if err != nil {
		return nil, err
	}

	// invalidate the cached prefix map
	if err := config.RemoveRedisKey("numberPrefixMap:" + businessId); err != nil {
		return nil, err
	}
	return series, nil
}

func GetJobNumberSeries(ctx context.Context) ([]*JobNumberSeries, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[JobNumberSeries](ctx, businessId)
}
