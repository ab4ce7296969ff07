package workflow

import (
	"strings"
	"testing"
	"time"

	"bitbucket.org/lanefocus/freight_backend/reconcile"
)

func intPtr(v int) *int { return &v }

func datePtr(year, month, day int) *reconcile.Date {
	d := reconcile.NewDate(year, time.Month(month), day)
	return &d
}

func TestFormatDiscrepancyMessageEta(t *testing.T) {
	result := reconcile.Result{
		JobRef:          26010,
		ContainerNumber: "MSCU1234567",
		Status:          reconcile.StatusDiscrepancy,
		Eta: &reconcile.DateDiscrepancy{
			JobValue:      datePtr(2025, 3, 10),
			TrackingValue: reconcile.NewDate(2025, 3, 13),
			DaysDiff:      intPtr(3),
		},
	}

	text := FormatDiscrepancyMessage(result)
	if !strings.Contains(text, "Tracking check for job 26010 (container MSCU1234567):") {
		t.Errorf("missing header: %q", text)
	}
	if !strings.Contains(text, "ETA differs: recorded 2025-03-10, tracking reports 2025-03-13 (3 day(s) later)") {
		t.Errorf("missing eta line: %q", text)
	}
}

func TestFormatDiscrepancyMessageEarlierEta(t *testing.T) {
	result := reconcile.Result{
		JobRef:          26011,
		ContainerNumber: "TRLU7654321",
		Status:          reconcile.StatusDiscrepancy,
		Eta: &reconcile.DateDiscrepancy{
			JobValue:      datePtr(2025, 3, 13),
			TrackingValue: reconcile.NewDate(2025, 3, 10),
			DaysDiff:      intPtr(-3),
		},
	}

	text := FormatDiscrepancyMessage(result)
	if !strings.Contains(text, "3 day(s) earlier") {
		t.Errorf("expected earlier wording: %q", text)
	}
}

func TestFormatDiscrepancyMessageMissingJobData(t *testing.T) {
	result := reconcile.Result{
		JobRef:          26012,
		ContainerNumber: "MSCU1111111",
		Status:          reconcile.StatusDiscrepancy,
		Dispatch: &reconcile.DateDiscrepancy{
			TrackingValue:  reconcile.NewDate(2025, 2, 20),
			MissingJobData: true,
		},
	}

	text := FormatDiscrepancyMessage(result)
	if !strings.Contains(text, "Dispatch date not recorded on the job; tracking reports 2025-02-20") {
		t.Errorf("missing dispatch line: %q", text)
	}
}

func TestFormatDiscrepancyMessageAllSlots(t *testing.T) {
	result := reconcile.Result{
		JobRef:          26013,
		ContainerNumber: "MSCU2222222",
		Status:          reconcile.StatusDiscrepancy,
		Eta: &reconcile.DateDiscrepancy{
			JobValue:      datePtr(2025, 3, 10),
			TrackingValue: reconcile.NewDate(2025, 3, 13),
			DaysDiff:      intPtr(3),
		},
		Port: &reconcile.StringDiscrepancy{
			JobValue:      "Felixstowe",
			TrackingValue: "Rotterdam",
		},
		Vessel: &reconcile.StringDiscrepancy{
			JobValue:      "MSC OSCAR",
			TrackingValue: "MSC MAYA",
		},
		Delivery: &reconcile.DeliveryGap{
			EffectiveArrival: reconcile.NewDate(2025, 3, 13),
			DeliveryDate:     reconcile.NewDate(2025, 3, 22),
			Days:             9,
			WeekendDays:      2,
		},
	}

	text := FormatDiscrepancyMessage(result)
	for _, want := range []string{
		`Port of arrival differs: recorded "Felixstowe", tracking reports "Rotterdam"`,
		`Vessel differs: recorded "MSC OSCAR", tracking reports "MSC MAYA"`,
		"Delivery recorded 9 day(s) after arrival on 2025-03-13, including 2 weekend day(s)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	if got := strings.Count(text, "\n- "); got != 4 {
		t.Errorf("expected 4 bullet lines, got %d:\n%s", got, text)
	}
}

func TestFormatDiscrepancyMessageNoSlots(t *testing.T) {
	result := reconcile.Result{
		JobRef:          26014,
		ContainerNumber: "MSCU3333333",
		Status:          reconcile.StatusMatched,
	}
	if text := FormatDiscrepancyMessage(result); text != "" {
		t.Errorf("expected empty text for matched result, got %q", text)
	}
}
