package models

type ShipmentDirection string

const (
	ShipmentDirectionImport ShipmentDirection = "Import"
	ShipmentDirectionExport ShipmentDirection = "Export"
)

func (d ShipmentDirection) IsValid() bool {
	switch d {
	case ShipmentDirectionImport, ShipmentDirectionExport:
		return true
	}
	return false
}

type ShipmentStatus string

const (
	ShipmentStatusDraft      ShipmentStatus = "Draft"
	ShipmentStatusInProgress ShipmentStatus = "InProgress"
	ShipmentStatusArrived    ShipmentStatus = "Arrived"
	ShipmentStatusDelivered  ShipmentStatus = "Delivered"
	ShipmentStatusClosed     ShipmentStatus = "Closed"
)

func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentStatusDraft, ShipmentStatusInProgress, ShipmentStatusArrived,
		ShipmentStatusDelivered, ShipmentStatusClosed:
		return true
	}
	return false
}

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "Draft"
	InvoiceStatusConfirmed InvoiceStatus = "Confirmed"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusVoid      InvoiceStatus = "Void"
)

type ClearanceStatus string

const (
	ClearanceStatusPending   ClearanceStatus = "Pending"
	ClearanceStatusSubmitted ClearanceStatus = "Submitted"
	ClearanceStatusCleared   ClearanceStatus = "Cleared"
	ClearanceStatusHeld      ClearanceStatus = "Held"
)

// NotificationReferenceType identifies the entity an outbox record refers to.
type NotificationReferenceType string

const (
	NotificationReferenceTypeReconcileRun NotificationReferenceType = "RR"
	NotificationReferenceTypeInvoice      NotificationReferenceType = "IV"
	NotificationReferenceTypeShipment     NotificationReferenceType = "SH"
)

type PubSubMessageAction string

const (
	PubSubMessageActionCreate PubSubMessageAction = "C"
	PubSubMessageActionUpdate PubSubMessageAction = "U"
	PubSubMessageActionDelete PubSubMessageAction = "D"
)

const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)

const (
	ReconcileRunStatusQueued  = "queued"
	ReconcileRunStatusRunning = "running"
	ReconcileRunStatusSuccess = "success"
	ReconcileRunStatusPartial = "partial"
	ReconcileRunStatusFailed  = "failed"
)

const (
	ReconcileTriggeredManual = "manual"
	ReconcileTriggeredRetry  = "retry"
	ReconcileTriggeredSystem = "system"
)
