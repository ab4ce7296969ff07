package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/utils"
	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID            int    `gorm:"primary_key" json:"id"`
	BusinessId    string `gorm:"index;not null" json:"business_id" binding:"required"`
	InvoiceNumber string `gorm:"size:50;not null" json:"invoice_number"`
	SequenceNo    int64  `gorm:"not null" json:"sequence_no"`
	CustomerId    int    `gorm:"index;not null" json:"customer_id" binding:"required"`
	ShipmentId    int    `gorm:"index" json:"shipment_id"`

	InvoiceDate time.Time  `gorm:"not null" json:"invoice_date"`
	DueDate     *time.Time `json:"due_date"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(6,4);default:0" json:"tax_rate"`
	TaxTotal    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_total"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`

	CurrentStatus InvoiceStatus  `gorm:"type:enum('Draft','Confirmed','Paid','Void');not null;default:'Draft'" json:"current_status"`
	Notes         string         `gorm:"type:text" json:"notes"`
	Items         []*InvoiceItem `gorm:"foreignKey:InvoiceId" json:"items"`
	Documents     []*Document    `gorm:"polymorphic:Reference" json:"documents"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	InvoiceId   int             `gorm:"index;not null" json:"invoice_id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
}

type NewInvoiceItem struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type NewInvoice struct {
	CustomerId  int               `json:"customer_id" binding:"required"`
	ShipmentId  int               `json:"shipment_id"`
	InvoiceDate time.Time         `json:"invoice_date" binding:"required"`
	DueDate     *time.Time        `json:"due_date"`
	TaxRate     decimal.Decimal   `json:"tax_rate"`
	Notes       string            `json:"notes"`
	Items       []*NewInvoiceItem `json:"items" binding:"required"`
	Documents   []*NewDocument    `json:"documents"`
}

// ComputeInvoiceTotals derives line amounts and the subtotal/tax/total from
// the item inputs. Quantity defaults to 1 when zero.
func ComputeInvoiceTotals(items []*NewInvoiceItem, taxRate decimal.Decimal) ([]*InvoiceItem, decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	subtotal := decimal.Zero
	lines := make([]*InvoiceItem, 0, len(items))
	for _, item := range items {
		qty := item.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		amount := qty.Mul(item.UnitPrice).Round(4)
		subtotal = subtotal.Add(amount)
		lines = append(lines, &InvoiceItem{
			Description: item.Description,
			Quantity:    qty,
			UnitPrice:   item.UnitPrice,
			Amount:      amount,
		})
	}
	taxTotal := subtotal.Mul(taxRate).Round(4)
	total := subtotal.Add(taxTotal)
	return lines, subtotal, taxTotal, total
}

func (input *NewInvoice) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Invoice](ctx, businessId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateResourceId[Customer](ctx, businessId, input.CustomerId); err != nil {
		return errors.New("customer not found")
	}
	if input.ShipmentId > 0 {
		if err := utils.ValidateResourceId[Shipment](ctx, businessId, input.ShipmentId); err != nil {
			return errors.New("shipment not found")
		}
	}
	if len(input.Items) == 0 {
		return errors.New("invoice requires at least one item")
	}
	for _, item := range input.Items {
		if item.UnitPrice.IsNegative() || item.Quantity.IsNegative() {
			return errors.New("item amounts cannot be negative")
		}
	}
	if input.TaxRate.IsNegative() {
		return errors.New("tax rate cannot be negative")
	}
	return nil
}

func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	documents, err := mapNewDocuments(ctx, input.Documents, "invoices", 0)
	if err != nil {
		return nil, err
	}

	invoiceNumber, seqNo, err := nextInvoiceNumber(ctx, businessId)
	if err != nil {
		return nil, err
	}

	items, subtotal, taxTotal, total := ComputeInvoiceTotals(input.Items, input.TaxRate)

	invoice := Invoice{
		BusinessId:    businessId,
		InvoiceNumber: invoiceNumber,
		SequenceNo:    seqNo,
		CustomerId:    input.CustomerId,
		ShipmentId:    input.ShipmentId,
		InvoiceDate:   dateOnly(input.InvoiceDate),
		DueDate:       normalizeDatePtr(input.DueDate),
		Subtotal:      subtotal,
		TaxRate:       input.TaxRate,
		TaxTotal:      taxTotal,
		TotalAmount:   total,
		CurrentStatus: InvoiceStatusDraft,
		Notes:         input.Notes,
		Items:         items,
		Documents:     documents,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func UpdateInvoice(ctx context.Context, id int, input *NewInvoice) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	invoice, err := utils.FetchModel[Invoice](ctx, businessId, id, "Items")
	if err != nil {
		return nil, err
	}

	// only drafts are editable
	if invoice.CurrentStatus != InvoiceStatusDraft {
		if config.StrictInvoiceImmutability() {
			return nil, errors.New("only draft invoices can be updated")
		}
		if invoice.CurrentStatus != InvoiceStatusConfirmed {
			return nil, errors.New("only draft or confirmed invoices can be updated")
		}
	}

	items, subtotal, taxTotal, total := ComputeInvoiceTotals(input.Items, input.TaxRate)

	db := config.GetDB()
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&invoice).Updates(map[string]interface{}{
		"CustomerId":  input.CustomerId,
		"ShipmentId":  input.ShipmentId,
		"InvoiceDate": dateOnly(input.InvoiceDate),
		"DueDate":     normalizeDatePtr(input.DueDate),
		"Subtotal":    subtotal,
		"TaxRate":     input.TaxRate,
		"TaxTotal":    taxTotal,
		"TotalAmount": total,
		"Notes":       input.Notes,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// replace line items wholesale
	if err := tx.WithContext(ctx).Where("invoice_id = ?", id).Delete(&InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, item := range items {
		item.InvoiceId = id
		if err := tx.WithContext(ctx).Create(item).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	invoice.Items = items

	documents, err := upsertDocuments(ctx, tx, input.Documents, "invoices", id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	invoice.Documents = documents

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// ConfirmInvoice transitions Draft -> Confirmed and enqueues the customer
// notification through the outbox, atomically.
func ConfirmInvoice(ctx context.Context, id int) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	invoice, err := utils.FetchModel[Invoice](ctx, businessId, id, "Items")
	if err != nil {
		return nil, err
	}
	if invoice.CurrentStatus != InvoiceStatusDraft {
		return nil, errors.New("only draft invoices can be confirmed")
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(&invoice).
		UpdateColumn("CurrentStatus", InvoiceStatusConfirmed).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	invoice.CurrentStatus = InvoiceStatusConfirmed
	err = PublishToNotification(ctx, tx, businessId, time.Now(), invoice.ID,
		NotificationReferenceTypeInvoice, invoice, nil, PubSubMessageActionCreate)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func MarkInvoicePaid(ctx context.Context, id int) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	invoice, err := utils.FetchModel[Invoice](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if invoice.CurrentStatus != InvoiceStatusConfirmed {
		return nil, errors.New("only confirmed invoices can be marked paid")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&invoice).
		UpdateColumn("CurrentStatus", InvoiceStatusPaid).Error; err != nil {
		return nil, err
	}
	invoice.CurrentStatus = InvoiceStatusPaid
	return invoice, nil
}

func VoidInvoice(ctx context.Context, id int) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	invoice, err := utils.FetchModel[Invoice](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if invoice.CurrentStatus == InvoiceStatusPaid {
		return nil, errors.New("paid invoices cannot be voided")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&invoice).
		UpdateColumn("CurrentStatus", InvoiceStatusVoid).Error; err != nil {
		return nil, err
	}
	invoice.CurrentStatus = InvoiceStatusVoid
	return invoice, nil
}

func DeleteInvoice(ctx context.Context, id int) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Invoice](ctx, businessId, id, "Documents")
	if err != nil {
		return nil, err
	}
	if result.CurrentStatus != InvoiceStatusDraft {
		return nil, errors.New("only draft invoices can be deleted")
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("invoice_id = ?", id).Delete(&InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
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

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Invoice](ctx, businessId, id, "Items", "Documents")
}

func GetInvoices(ctx context.Context, customerId *int, shipmentId *int, status *InvoiceStatus) ([]*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*Invoice
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if customerId != nil && *customerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", *customerId)
	}
	if shipmentId != nil && *shipmentId > 0 {
		dbCtx = dbCtx.Where("shipment_id = ?", *shipmentId)
	}
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("current_status = ?", *status)
	}
	if err := dbCtx.Preload("Items").Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
