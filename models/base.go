package models

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PublishToNotification implements the transactional outbox: it writes the
// message record inside the caller's DB transaction but does NOT publish to
// Pub/Sub. Publishing is performed asynchronously by the outbox dispatcher
// after commit.
func PublishToNotification(ctx context.Context, db *gorm.DB, businessId string, eventDateTime time.Time, refId int, refType NotificationReferenceType, obj interface{}, oldObj interface{}, msgAction PubSubMessageAction) error {

	var objInByte []byte
	var oldObjInByte []byte
	var err error

	if msgAction == PubSubMessageActionCreate || msgAction == PubSubMessageActionUpdate {
		objInByte, err = ToJSONWithoutField(obj, "Documents")
		if err != nil {
			return err
		}
	}
	if msgAction == PubSubMessageActionUpdate || msgAction == PubSubMessageActionDelete {
		oldObjInByte, err = ToJSONWithoutField(oldObj, "Documents")
		if err != nil {
			return err
		}
	}

	record := OutboxMessageRecord{
		BusinessId:    businessId,
		EventDateTime: eventDateTime,
		ReferenceId:   refId,
		ReferenceType: refType,
		Action:        msgAction,
		NewObj:        objInByte,
		OldObj:        oldObjInByte,
		IsProcessed:   false,
		PublishStatus: OutboxPublishStatusPending,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	err = db.Create(&record).Error
	if err != nil {
		return err
	}
	return nil
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// ToJSONWithoutField converts an object to JSON after temporarily removing a specified field
func ToJSONWithoutField(obj interface{}, fieldName string) ([]byte, error) {
	val := reflect.ValueOf(obj)

	if val.Kind() == reflect.Interface {
		val = val.Elem()
	}
	if val.Kind() != reflect.Ptr {
		valPtr := reflect.New(val.Type())
		valPtr.Elem().Set(val)
		val = valPtr
	}
	val = val.Elem()

	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected a struct, got %v", val.Kind())
	}

	field := val.FieldByName(fieldName)
	var err error
	var jsonData []byte
	if field.IsValid() {
		// Store the original value of the field
		originalValue := reflect.New(field.Type()).Elem()
		originalValue.Set(field)

		// Clear the field value
		field.Set(reflect.Zero(field.Type()))

		jsonData, err = json.Marshal(val.Interface())

		// Restore the original value
		field.Set(originalValue)
	} else {
		jsonData, err = json.Marshal(val.Interface())
	}
	if err != nil {
		return nil, err
	}
	return jsonData, nil
}

// get job/invoice number prefix for the business, redis or db
func getNumberPrefix(ctx context.Context, businessId string, moduleName string) (string, error) {
	prefixes := make(map[string]string, 0) // moduleName => prefix
	redisKey := "numberPrefixMap:" + businessId
	exists, err := config.GetRedisObject(redisKey, &prefixes)
	if err != nil {
		return "", err
	}
	if !exists {
		db := config.GetDB()
		var series []*JobNumberSeries
		if err := db.WithContext(ctx).Model(&JobNumberSeries{}).
			Where("business_id = ?", businessId).Find(&series).Error; err != nil {
			return "", err
		}

		for _, s := range series {
			prefixes[s.ModuleName] = s.Prefix
		}
		if err := config.SetRedisObject(redisKey, &prefixes, 0); err != nil {
			return "", err
		}
	}

	prefix, ok := prefixes[moduleName]
	if !ok || prefix == "" {
		return "", nil
	}
	return prefix, nil
}

// normalize to the calendar date, dropping time-of-day
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
