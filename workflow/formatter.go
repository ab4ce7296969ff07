package workflow

import (
	"fmt"
	"strings"

	"bitbucket.org/lanefocus/freight_backend/reconcile"
)

// FormatDiscrepancyMessage renders one reconciliation result as the
// operator-facing text posted to the shipment's message thread.
func FormatDiscrepancyMessage(result reconcile.Result) string {
	var parts []string

	if result.Eta != nil {
		parts = append(parts, formatDateDiscrepancy("ETA", result.Eta))
	}
	if result.Dispatch != nil {
		parts = append(parts, formatDateDiscrepancy("Dispatch date", result.Dispatch))
	}
	if result.Port != nil {
		parts = append(parts, fmt.Sprintf("Port of arrival differs: recorded %q, tracking reports %q",
			result.Port.JobValue, result.Port.TrackingValue))
	}
	if result.Vessel != nil {
		parts = append(parts, fmt.Sprintf("Vessel differs: recorded %q, tracking reports %q",
			result.Vessel.JobValue, result.Vessel.TrackingValue))
	}
	if result.Delivery != nil {
		parts = append(parts, formatDeliveryGap(result.Delivery))
	}

	if len(parts) == 0 {
		return ""
	}

	header := fmt.Sprintf("Tracking check for job %d (container %s):", result.JobRef, result.ContainerNumber)
	return header + "\n- " + strings.Join(parts, "\n- ")
}

func formatDateDiscrepancy(label string, d *reconcile.DateDiscrepancy) string {
	if d.MissingJobData || d.JobValue == nil {
		return fmt.Sprintf("%s not recorded on the job; tracking reports %s", label, d.TrackingValue)
	}
	diff := ""
	if d.DaysDiff != nil {
		diff = fmt.Sprintf(" (%s)", formatDays(*d.DaysDiff))
	}
	return fmt.Sprintf("%s differs: recorded %s, tracking reports %s%s", label, d.JobValue, d.TrackingValue, diff)
}

func formatDeliveryGap(gap *reconcile.DeliveryGap) string {
	weekend := ""
	if gap.WeekendDays > 0 {
		weekend = fmt.Sprintf(", including %d weekend day(s)", gap.WeekendDays)
	}
	return fmt.Sprintf("Delivery recorded %d day(s) after arrival on %s%s", gap.Days, gap.EffectiveArrival, weekend)
}

func formatDays(days int) string {
	if days > 0 {
		return fmt.Sprintf("%d day(s) later", days)
	}
	if days < 0 {
		return fmt.Sprintf("%d day(s) earlier", -days)
	}
	return "same day"
}
