package models

import (
	"log"

	"bitbucket.org/lanefocus/freight_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Business{}, &User{},
		&Customer{}, &Shipment{}, &ClearanceRecord{},
		&Invoice{}, &InvoiceItem{},
		&Message{}, &Document{},
		&JobNumberSeries{},
		&ReconcileRun{}, &ReconcileRunError{},
		&OutboxMessageRecord{},
		&IdempotencyKey{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
