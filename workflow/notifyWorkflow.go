package workflow

import (
	"encoding/json"
	"errors"
	"fmt"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/models"
	"bitbucket.org/lanefocus/freight_backend/reconcile"
	"bitbucket.org/lanefocus/freight_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const systemSenderName = "System"

// ProcessReconcileRunNotification materializes one system message per
// discrepant shipment from a finished reconcile run. Not-tracked and
// matched jobs produce no message.
func ProcessReconcileRunNotification(tx *gorm.DB, logger *logrus.Logger, msg config.PubSubMessage) error {
	var run models.ReconcileRun
	if err := json.Unmarshal(msg.NewObj, &run); err != nil {
		config.LogError(logger, "notifyWorkflow", "ProcessReconcileRunNotification", "Unmarshal run", msg.ReferenceId, err)
		return err
	}
	if run.BusinessId == "" {
		return errors.New("reconcile run payload missing business id")
	}

	var results []reconcile.Result
	if len(run.ResultsJSON) > 0 {
		if err := json.Unmarshal(run.ResultsJSON, &results); err != nil {
			config.LogError(logger, "notifyWorkflow", "ProcessReconcileRunNotification", "Unmarshal results", run.ID, err)
			return err
		}
	}

	for _, result := range results {
		if result.Status != reconcile.StatusDiscrepancy {
			continue
		}
		body := FormatDiscrepancyMessage(result)
		if body == "" {
			continue
		}

		var shipment models.Shipment
		err := tx.Where("business_id = ? AND job_ref = ?", run.BusinessId, result.JobRef).Take(&shipment).Error
		if err != nil {
			// The shipment may have been deleted between the run and this
			// delivery. Skip rather than poison the whole message.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}

		message := models.Message{
			BusinessId: run.BusinessId,
			ShipmentId: shipment.ID,
			SenderName: systemSenderName,
			Body:       body,
			IsSystem:   true,
			IsRead:     utils.NewFalse(),
		}
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
	}

	return nil
}

// ProcessInvoiceNotification posts a confirmation note on the linked
// shipment when an invoice is confirmed. Invoices without a shipment
// are ignored.
func ProcessInvoiceNotification(tx *gorm.DB, logger *logrus.Logger, msg config.PubSubMessage) error {
	var invoice models.Invoice
	if err := json.Unmarshal(msg.NewObj, &invoice); err != nil {
		config.LogError(logger, "notifyWorkflow", "ProcessInvoiceNotification", "Unmarshal invoice", msg.ReferenceId, err)
		return err
	}
	if invoice.BusinessId == "" {
		return errors.New("invoice payload missing business id")
	}
	if invoice.ShipmentId == 0 || invoice.CurrentStatus != models.InvoiceStatusConfirmed {
		return nil
	}

	var shipment models.Shipment
	err := tx.Where("business_id = ? AND id = ?", invoice.BusinessId, invoice.ShipmentId).Take(&shipment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	message := models.Message{
		BusinessId: invoice.BusinessId,
		ShipmentId: shipment.ID,
		SenderName: systemSenderName,
		Body:       fmt.Sprintf("Invoice %s confirmed for job %d (total %s)", invoice.InvoiceNumber, shipment.JobRef, invoice.TotalAmount.StringFixed(2)),
		IsSystem:   true,
		IsRead:     utils.NewFalse(),
	}
	return tx.Create(&message).Error
}
