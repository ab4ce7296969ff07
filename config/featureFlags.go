package config

import (
	"os"
	"strconv"
	"strings"
)

// ReconcileDeliveryGapDays returns the threshold (in calendar days) above
// which the gap between a shipment's arrival date and its recorded delivery
// date is flagged during reconciliation.
//
// Set via env:
// - RECONCILE_DELIVERY_GAP_DAYS (default 5)
func ReconcileDeliveryGapDays() int {
	v := strings.TrimSpace(os.Getenv("RECONCILE_DELIVERY_GAP_DAYS"))
	if v == "" {
		return 5
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 5
	}
	return n
}

// ReconcileLookupWorkers returns the number of concurrent tracking-provider
// lookups allowed per reconciliation batch. The provider is rate-limited;
// keep this small.
//
// Set via env:
// - RECONCILE_LOOKUP_WORKERS (default 4)
func ReconcileLookupWorkers() int {
	v := strings.TrimSpace(os.Getenv("RECONCILE_LOOKUP_WORKERS"))
	if v == "" {
		return 4
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 4
	}
	return n
}

// StrictInvoiceImmutability disables edits to confirmed invoices;
// they must be voided and recreated.
//
// Set via env:
// - STRICT_INVOICE_IMMUTABLE=true
func StrictInvoiceImmutability() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_INVOICE_IMMUTABLE")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
