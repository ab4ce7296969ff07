package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/utils"
)

type Customer struct {
	ID           int         `gorm:"primary_key" json:"id"`
	BusinessId   string      `gorm:"index;not null" json:"business_id" binding:"required"`
	Name         string      `gorm:"size:100;not null" json:"name" binding:"required"`
	Email        string      `gorm:"size:100" json:"email"`
	Phone        string      `gorm:"size:20" json:"phone"`
	ContactName  string      `gorm:"size:100" json:"contact_name"`
	Address      string      `gorm:"type:text" json:"address"`
	Country      string      `gorm:"size:100" json:"country"`
	EoriNumber   string      `gorm:"size:50" json:"eori_number"`
	VatNumber    string      `gorm:"size:50" json:"vat_number"`
	PaymentDays  int         `gorm:"default:30" json:"payment_days"`
	Notes        string      `gorm:"type:text" json:"notes"`
	Documents    []*Document `gorm:"polymorphic:Reference" json:"documents"`
	IsActive     *bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name        string         `json:"name" binding:"required"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	ContactName string         `json:"contact_name"`
	Address     string         `json:"address"`
	Country     string         `json:"country"`
	EoriNumber  string         `json:"eori_number"`
	VatNumber   string         `json:"vat_number"`
	PaymentDays int            `json:"payment_days"`
	Notes       string         `json:"notes"`
	Documents   []*NewDocument `json:"documents"`
}

func (input *NewCustomer) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, businessId, id); err != nil {
			return err
		}
	}
	// validate unique name
	if err := utils.ValidateUnique[Customer](ctx, businessId, "name", input.Name, id); err != nil {
		return err
	}
	// validate email
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return errors.New("invalid email")
		}
		if err := utils.ValidateUnique[Customer](ctx, businessId, "email", input.Email, id); err != nil {
			return err
		}
	}
	// validate phone
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	documents, err := mapNewDocuments(ctx, input.Documents, "customers", 0)
	if err != nil {
		return nil, err
	}

	customer := Customer{
		BusinessId:  businessId,
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		ContactName: input.ContactName,
		Address:     input.Address,
		Country:     input.Country,
		EoriNumber:  input.EoriNumber,
		VatNumber:   input.VatNumber,
		PaymentDays: input.PaymentDays,
		Notes:       input.Notes,
		Documents:   documents,
		IsActive:    utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	if err := customer.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&customer).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Email":       input.Email,
		"Phone":       input.Phone,
		"ContactName": input.ContactName,
		"Address":     input.Address,
		"Country":     input.Country,
		"EoriNumber":  input.EoriNumber,
		"VatNumber":   input.VatNumber,
		"PaymentDays": input.PaymentDays,
		"Notes":       input.Notes,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	documents, err := upsertDocuments(ctx, tx, input.Documents, "customers", id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	customer.Documents = documents

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	if err := customer.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	return customer, nil
}

func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Customer](ctx, businessId, id, "Documents")
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Shipment](ctx, businessId, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("shipment associated with customer exists")
	}

	count, err = utils.ResourceCountWhere[Invoice](ctx, businessId, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("invoice associated with customer exists")
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
	if err := result.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveInstanceRedis drops both the cached instance and the business list.
func (customer *Customer) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Customer](customer.ID); err != nil {
		return err
	}
	return utils.RemoveRedisList[Customer](customer.BusinessId)
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.RetrieveRedis[Customer](id)
	if err != nil {
		return nil, err
	}
	if result != nil && result.BusinessId != businessId {
		return nil, utils.ErrorRecordNotFound
	}

	if result == nil {
		result, err = utils.FetchModel[Customer](ctx, businessId, id, "Documents")
		if err != nil {
			return nil, err
		}
		if err := utils.StoreRedis[Customer](result, id); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func GetCustomers(ctx context.Context, name *string) ([]*Customer, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	// unfiltered lists are cached per business
	if name == nil || len(*name) == 0 {
		cached, err := utils.RetrieveRedisList[Customer](businessId)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached, nil
		}
	}

	var results []*Customer
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	if name == nil || len(*name) == 0 {
		if err := utils.StoreRedisList[Customer](results, businessId); err != nil {
			return nil, err
		}
	}
	return results, nil
}
