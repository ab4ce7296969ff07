package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/utils"
	"github.com/shopspring/decimal"
)

type ClearanceRecord struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id" binding:"required"`
	ShipmentId    int             `gorm:"index;not null" json:"shipment_id" binding:"required"`
	EntryNumber   string          `gorm:"size:50;not null" json:"entry_number" binding:"required"`
	ClearanceDate *time.Time      `json:"clearance_date"`
	DutyAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"duty_amount"`
	VatAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_amount"`
	CurrentStatus ClearanceStatus `gorm:"type:enum('Pending','Submitted','Cleared','Held');not null;default:'Pending'" json:"current_status"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Documents     []*Document     `gorm:"polymorphic:Reference" json:"documents"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClearanceRecord struct {
	ShipmentId    int             `json:"shipment_id" binding:"required"`
	EntryNumber   string          `json:"entry_number" binding:"required"`
	ClearanceDate *time.Time      `json:"clearance_date"`
	DutyAmount    decimal.Decimal `json:"duty_amount"`
	VatAmount     decimal.Decimal `json:"vat_amount"`
	CurrentStatus ClearanceStatus `json:"current_status"`
	Notes         string          `json:"notes"`
	Documents     []*NewDocument  `json:"documents"`
}

func (input *NewClearanceRecord) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[ClearanceRecord](ctx, businessId, id); err != nil {
			return err
		}
	}
	// validate shipment
	if err := utils.ValidateResourceId[Shipment](ctx, businessId, input.ShipmentId); err != nil {
		return errors.New("shipment not found")
	}
	// validate unique entry number
	if err := utils.ValidateUnique[ClearanceRecord](ctx, businessId, "entry_number", input.EntryNumber, id); err != nil {
		return err
	}
	if input.DutyAmount.IsNegative() || input.VatAmount.IsNegative() {
		return errors.New("amounts cannot be negative")
	}
	return nil
}

func CreateClearanceRecord(ctx context.Context, input *NewClearanceRecord) (*ClearanceRecord, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	documents, err := mapNewDocuments(ctx, input.Documents, "clearance_records", 0)
	if err != nil {
		return nil, err
	}

	status := input.CurrentStatus
	if status == "" {
		status = ClearanceStatusPending
	}

	record := ClearanceRecord{
		BusinessId:    businessId,
		ShipmentId:    input.ShipmentId,
		EntryNumber:   input.EntryNumber,
		ClearanceDate: normalizeDatePtr(input.ClearanceDate),
		DutyAmount:    input.DutyAmount,
		VatAmount:     input.VatAmount,
		CurrentStatus: status,
		Notes:         input.Notes,
		Documents:     documents,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func UpdateClearanceRecord(ctx context.Context, id int, input *NewClearanceRecord) (*ClearanceRecord, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	record, err := utils.FetchModel[ClearanceRecord](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&record).Updates(map[string]interface{}{
		"ShipmentId":    input.ShipmentId,
		"EntryNumber":   input.EntryNumber,
		"ClearanceDate": normalizeDatePtr(input.ClearanceDate),
		"DutyAmount":    input.DutyAmount,
		"VatAmount":     input.VatAmount,
		"CurrentStatus": input.CurrentStatus,
		"Notes":         input.Notes,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	documents, err := upsertDocuments(ctx, tx, input.Documents, "clearance_records", id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	record.Documents = documents

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return record, nil
}

func DeleteClearanceRecord(ctx context.Context, id int) (*ClearanceRecord, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[ClearanceRecord](ctx, businessId, id, "Documents")
	if err != nil {
		return nil, err
	}

	if result.CurrentStatus == ClearanceStatusCleared {
		return nil, errors.New("cannot delete a cleared record")
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Delete(&result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := deleteDocuments(ctx, tx, result.Documents); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetClearanceRecord(ctx context.Context, id int) (*ClearanceRecord, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[ClearanceRecord](ctx, businessId, id, "Documents")
}

func GetClearanceRecords(ctx context.Context, shipmentId *int) ([]*ClearanceRecord, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*ClearanceRecord
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if shipmentId != nil && *shipmentId > 0 {
		dbCtx = dbCtx.Where("shipment_id = ?", *shipmentId)
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
