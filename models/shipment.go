package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/reconcile"
	"bitbucket.org/lanefocus/freight_backend/utils"
)

type Shipment struct {
	ID         int    `gorm:"primary_key" json:"id"`
	BusinessId string `gorm:"index;not null" json:"business_id" binding:"required"`
	// human-facing job reference, allocated from the number series
	JobRef     int   `gorm:"not null;index:uniq_job_ref,unique" json:"job_ref"`
	SequenceNo int64 `gorm:"not null" json:"sequence_no"`
	CustomerId int   `gorm:"index;not null" json:"customer_id" binding:"required"`
	Customer   *Customer `json:"customer"`

	Direction     ShipmentDirection `gorm:"type:enum('Import','Export');not null;default:'Import'" json:"direction"`
	CurrentStatus ShipmentStatus    `gorm:"type:enum('Draft','InProgress','Arrived','Delivered','Closed');not null;default:'Draft'" json:"current_status"`

	ContainerNumber string `gorm:"size:20;index" json:"container_number"`
	BillOfLading    string `gorm:"size:50" json:"bill_of_lading"`
	PortOfLoading   string `gorm:"size:100" json:"port_of_loading"`

	// operator-recorded fields the reconciliation engine compares against
	// live tracking data
	RecordedPortOfArrival string     `gorm:"size:100" json:"recorded_port_of_arrival"`
	RecordedVessel        string     `gorm:"size:100" json:"recorded_vessel"`
	RecordedEta           *time.Time `json:"recorded_eta"`
	RecordedDispatchDate  *time.Time `json:"recorded_dispatch_date"`
	RecordedDeliveryDate  *time.Time `json:"recorded_delivery_date"`

	GoodsDescription string      `gorm:"type:text" json:"goods_description"`
	Notes            string      `gorm:"type:text" json:"notes"`
	Documents        []*Document `gorm:"polymorphic:Reference" json:"documents"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewShipment struct {
	CustomerId            int               `json:"customer_id" binding:"required"`
	Direction             ShipmentDirection `json:"direction" binding:"required"`
	CurrentStatus         ShipmentStatus    `json:"current_status"`
	ContainerNumber       string            `json:"container_number"`
	BillOfLading          string            `json:"bill_of_lading"`
	PortOfLoading         string            `json:"port_of_loading"`
	RecordedPortOfArrival string            `json:"recorded_port_of_arrival"`
	RecordedVessel        string            `json:"recorded_vessel"`
	RecordedEta           *time.Time        `json:"recorded_eta"`
	RecordedDispatchDate  *time.Time        `json:"recorded_dispatch_date"`
	RecordedDeliveryDate  *time.Time        `json:"recorded_delivery_date"`
	GoodsDescription      string            `json:"goods_description"`
	Notes                 string            `json:"notes"`
	Documents             []*NewDocument    `json:"documents"`
}

func (input *NewShipment) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Shipment](ctx, businessId, id); err != nil {
			return err
		}
	}
	// validate customer
	if err := utils.ValidateResourceId[Customer](ctx, businessId, input.CustomerId); err != nil {
		return errors.New("customer not found")
	}
	if !input.Direction.IsValid() {
		return errors.New("invalid direction")
	}
	if input.CurrentStatus != "" && !input.CurrentStatus.IsValid() {
		return errors.New("invalid status")
	}
	return nil
}

func CreateShipment(ctx context.Context, input *NewShipment) (*Shipment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	documents, err := mapNewDocuments(ctx, input.Documents, "shipments", 0)
	if err != nil {
		return nil, err
	}

	jobRef, seqNo, err := nextJobRef(ctx, businessId)
	if err != nil {
		return nil, err
	}

	status := input.CurrentStatus
	if status == "" {
		status = ShipmentStatusDraft
	}

	shipment := Shipment{
		BusinessId:            businessId,
		JobRef:                jobRef,
		SequenceNo:            seqNo,
		CustomerId:            input.CustomerId,
		Direction:             input.Direction,
		CurrentStatus:         status,
		ContainerNumber:       input.ContainerNumber,
		BillOfLading:          input.BillOfLading,
		PortOfLoading:         input.PortOfLoading,
		RecordedPortOfArrival: input.RecordedPortOfArrival,
		RecordedVessel:        input.RecordedVessel,
		RecordedEta:           normalizeDatePtr(input.RecordedEta),
		RecordedDispatchDate:  normalizeDatePtr(input.RecordedDispatchDate),
		RecordedDeliveryDate:  normalizeDatePtr(input.RecordedDeliveryDate),
		GoodsDescription:      input.GoodsDescription,
		Notes:                 input.Notes,
		Documents:             documents,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&shipment).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

func UpdateShipment(ctx context.Context, id int, input *NewShipment) (*Shipment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	shipment, err := utils.FetchModel[Shipment](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	if shipment.CurrentStatus == ShipmentStatusClosed {
		return nil, errors.New("cannot update a closed shipment")
	}

	db := config.GetDB()
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&shipment).Updates(map[string]interface{}{
		"CustomerId":            input.CustomerId,
		"Direction":             input.Direction,
		"CurrentStatus":         input.CurrentStatus,
		"ContainerNumber":       input.ContainerNumber,
		"BillOfLading":          input.BillOfLading,
		"PortOfLoading":         input.PortOfLoading,
		"RecordedPortOfArrival": input.RecordedPortOfArrival,
		"RecordedVessel":        input.RecordedVessel,
		"RecordedEta":           normalizeDatePtr(input.RecordedEta),
		"RecordedDispatchDate":  normalizeDatePtr(input.RecordedDispatchDate),
		"RecordedDeliveryDate":  normalizeDatePtr(input.RecordedDeliveryDate),
		"GoodsDescription":      input.GoodsDescription,
		"Notes":                 input.Notes,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	documents, err := upsertDocuments(ctx, tx, input.Documents, "shipments", id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	shipment.Documents = documents

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return shipment, nil
}

func DeleteShipment(ctx context.Context, id int) (*Shipment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Shipment](ctx, businessId, id, "Documents")
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Invoice](ctx, businessId, "shipment_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("invoice associated with shipment exists")
	}

	count, err = utils.ResourceCountWhere[ClearanceRecord](ctx, businessId, "shipment_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("clearance record associated with shipment exists")
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
	if err := tx.WithContext(ctx).Where("business_id = ? AND shipment_id = ?", businessId, id).
		Delete(&Message{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetShipment(ctx context.Context, id int) (*Shipment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Shipment](ctx, businessId, id, "Customer", "Documents")
}

func GetShipmentByJobRef(ctx context.Context, jobRef int) (*Shipment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var result Shipment
	err := db.WithContext(ctx).
		Where("business_id = ? AND job_ref = ?", businessId, jobRef).
		First(&result).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

func GetShipments(ctx context.Context, status *ShipmentStatus, direction *ShipmentDirection, containerNumber *string) ([]*Shipment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*Shipment
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("current_status = ?", *status)
	}
	if direction != nil && *direction != "" {
		dbCtx = dbCtx.Where("direction = ?", *direction)
	}
	if containerNumber != nil && *containerNumber != "" {
		dbCtx = dbCtx.Where("container_number = ?", *containerNumber)
	}
	err := dbCtx.Preload("Customer").Order("job_ref DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ListActiveImportShipments returns the reconciliation engine's input set:
// in-progress (and arrived but undelivered) import shipments.
func ListActiveImportShipments(ctx context.Context, businessId string) ([]reconcile.Job, error) {
	db := config.GetDB()
	var shipments []*Shipment
	err := db.WithContext(ctx).
		Where("business_id = ?", businessId).
		Where("direction = ?", ShipmentDirectionImport).
		Where("current_status IN (?)", []string{string(ShipmentStatusInProgress), string(ShipmentStatusArrived)}).
		Preload("Customer").
		Order("job_ref").
		Find(&shipments).Error
	if err != nil {
		return nil, err
	}

	jobs := make([]reconcile.Job, 0, len(shipments))
	for _, s := range shipments {
		jobs = append(jobs, s.ToReconcileJob())
	}
	return jobs, nil
}

func (s *Shipment) ToReconcileJob() reconcile.Job {
	customerName := ""
	if s.Customer != nil {
		customerName = s.Customer.Name
	}
	return reconcile.Job{
		ShipmentId:            fmt.Sprint(s.ID),
		JobRef:                s.JobRef,
		CustomerName:          customerName,
		ContainerNumber:       s.ContainerNumber,
		RecordedPortOfArrival: s.RecordedPortOfArrival,
		RecordedVessel:        s.RecordedVessel,
		RecordedEta:           toReconcileDate(s.RecordedEta),
		RecordedDispatchDate:  toReconcileDate(s.RecordedDispatchDate),
		RecordedDeliveryDate:  toReconcileDate(s.RecordedDeliveryDate),
	}
}

// Trackable shipment fields the operator may overwrite with the provider's
// value after reviewing a discrepancy.
const (
	TrackingFieldEta           = "eta"
	TrackingFieldDispatchDate  = "dispatch_date"
	TrackingFieldPortOfArrival = "port_of_arrival"
	TrackingFieldVessel        = "vessel"
)

// ApplyTrackingValue overwrites one recorded shipment field with the value
// reported by the tracking provider. This is the only path by which tracking
// data flows back into a shipment, and it is always operator-triggered.
func ApplyTrackingValue(ctx context.Context, id int, field string, value string) (*Shipment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	shipment, err := utils.FetchModel[Shipment](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if shipment.CurrentStatus == ShipmentStatusClosed {
		return nil, errors.New("cannot update a closed shipment")
	}

	updates := map[string]interface{}{}
	switch field {
	case TrackingFieldEta, TrackingFieldDispatchDate:
		d, err := reconcile.ParseDate(value)
		if err != nil {
			return nil, err
		}
		t := d.Time()
		if field == TrackingFieldEta {
			updates["RecordedEta"] = &t
		} else {
			updates["RecordedDispatchDate"] = &t
		}
	case TrackingFieldPortOfArrival:
		if value == "" {
			return nil, errors.New("value is required")
		}
		updates["RecordedPortOfArrival"] = value
	case TrackingFieldVessel:
		if value == "" {
			return nil, errors.New("value is required")
		}
		updates["RecordedVessel"] = value
	default:
		return nil, errors.New("invalid field")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&shipment).Updates(updates).Error; err != nil {
		return nil, err
	}
	return shipment, nil
}

func normalizeDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dateOnly(*t)
	return &d
}

func toReconcileDate(t *time.Time) *reconcile.Date {
	if t == nil {
		return nil
	}
	d := reconcile.DateOf(*t)
	return &d
}
