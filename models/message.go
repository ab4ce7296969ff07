package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/utils"
)

// Message is an internal operator note attached to a shipment. Rows are
// also materialized by the notification workflow for reconciliation
// discrepancies (SenderName "system").
type Message struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id" binding:"required"`
	ShipmentId int       `gorm:"index;not null" json:"shipment_id" binding:"required"`
	SenderId   int       `gorm:"index" json:"sender_id"`
	SenderName string    `gorm:"size:100" json:"sender_name"`
	Body       string    `gorm:"type:text;not null" json:"body" binding:"required"`
	IsSystem   bool      `gorm:"not null;default:false" json:"is_system"`
	IsRead     *bool     `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMessage struct {
	ShipmentId int    `json:"shipment_id" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

func CreateMessage(ctx context.Context, input *NewMessage) (*Message, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateResourceId[Shipment](ctx, businessId, input.ShipmentId); err != nil {
		return nil, errors.New("shipment not found")
	}

	senderId, _ := utils.GetUserIdFromContext(ctx)
	senderName, _ := utils.GetUserNameFromContext(ctx)

	message := Message{
		BusinessId: businessId,
		ShipmentId: input.ShipmentId,
		SenderId:   senderId,
		SenderName: senderName,
		Body:       input.Body,
		IsSystem:   false,
		IsRead:     utils.NewFalse(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func MarkMessageRead(ctx context.Context, id int) (*Message, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	message, err := utils.FetchModel[Message](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&message).
		UpdateColumn("IsRead", true).Error; err != nil {
		return nil, err
	}
	message.IsRead = utils.NewTrue()
	return message, nil
}

func DeleteMessage(ctx context.Context, id int) (*Message, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Message](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if result.IsSystem {
		return nil, errors.New("system messages cannot be deleted")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetMessages(ctx context.Context, shipmentId int, unreadOnly bool) ([]*Message, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*Message
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if shipmentId > 0 {
		dbCtx = dbCtx.Where("shipment_id = ?", shipmentId)
	}
	if unreadOnly {
		dbCtx = dbCtx.Where("is_read = ?", false)
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
