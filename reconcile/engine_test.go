package reconcile

import (
	"testing"
	"time"
)

func datePtr(d Date) *Date { return &d }

func baseJob() Job {
	return Job{
		ShipmentId:            "shp-1",
		JobRef:                26010,
		CustomerName:          "Acme Imports",
		ContainerNumber:       "MSCU1234567",
		RecordedPortOfArrival: "Felixstowe",
		RecordedVessel:        "MSC OSCAR",
		RecordedEta:           datePtr(NewDate(2025, time.March, 10)),
	}
}

func matchingSnapshot() *Snapshot {
	return &Snapshot{
		ContainerNumber: "MSCU1234567",
		Eta:             datePtr(NewDate(2025, time.March, 10)),
		PortOfArrival:   "Felixstowe",
		VesselName:      "MSC OSCAR",
	}
}

func TestClassify_AllFieldsEqual_IsMatched(t *testing.T) {
	result := Classify(baseJob(), matchingSnapshot(), Options{})

	if result.Status != StatusMatched {
		t.Fatalf("expected matched, got %s", result.Status)
	}
	if result.HasDiscrepancy() {
		t.Fatalf("matched result must carry no discrepancy slots: %+v", result)
	}
}

func TestClassify_EtaDiffersByThreeDays(t *testing.T) {
	snapshot := matchingSnapshot()
	snapshot.Eta = datePtr(NewDate(2025, time.March, 13))

	result := Classify(baseJob(), snapshot, Options{})

	if result.Status != StatusDiscrepancy {
		t.Fatalf("expected discrepancy, got %s", result.Status)
	}
	if result.Eta == nil {
		t.Fatal("expected eta discrepancy")
	}
	if result.Eta.DaysDiff == nil || *result.Eta.DaysDiff != 3 {
		t.Fatalf("expected daysDiff 3, got %v", result.Eta.DaysDiff)
	}
	if result.Eta.MissingJobData {
		t.Fatal("missingJobData must be false when both dates are present")
	}
	if result.Port != nil || result.Vessel != nil || result.Dispatch != nil || result.Delivery != nil {
		t.Fatalf("only the eta slot should be populated: %+v", result)
	}
}

func TestClassify_EtaDiffSignIsTrackingMinusJob(t *testing.T) {
	snapshot := matchingSnapshot()
	snapshot.Eta = datePtr(NewDate(2025, time.March, 7))

	result := Classify(baseJob(), snapshot, Options{})

	if result.Eta == nil || result.Eta.DaysDiff == nil {
		t.Fatalf("expected eta discrepancy with daysDiff: %+v", result.Eta)
	}
	if *result.Eta.DaysDiff != -3 {
		t.Fatalf("expected daysDiff -3 when tracking is earlier, got %d", *result.Eta.DaysDiff)
	}
}

func TestClassify_MissingJobEta(t *testing.T) {
	job := baseJob()
	job.RecordedEta = nil
	snapshot := matchingSnapshot()
	snapshot.Eta = datePtr(NewDate(2025, time.March, 13))

	result := Classify(job, snapshot, Options{})

	if result.Status != StatusDiscrepancy {
		t.Fatalf("expected discrepancy, got %s", result.Status)
	}
	if result.Eta == nil || !result.Eta.MissingJobData {
		t.Fatalf("expected missingJobData eta discrepancy: %+v", result.Eta)
	}
	if result.Eta.DaysDiff != nil {
		t.Fatalf("daysDiff must be absent when the job side is missing, got %d", *result.Eta.DaysDiff)
	}
}

func TestClassify_TrackingEtaAbsent_NoEtaDiscrepancy(t *testing.T) {
	snapshot := matchingSnapshot()
	snapshot.Eta = nil

	result := Classify(baseJob(), snapshot, Options{})

	if result.Eta != nil {
		t.Fatalf("no eta discrepancy expected when tracking has no eta: %+v", result.Eta)
	}
	if result.Status != StatusMatched {
		t.Fatalf("expected matched, got %s", result.Status)
	}
}

func TestClassify_PortAndVessel_CaseSensitive(t *testing.T) {
	snapshot := matchingSnapshot()
	snapshot.PortOfArrival = "FELIXSTOWE"
	snapshot.VesselName = "MSC Oscar"

	result := Classify(baseJob(), snapshot, Options{})

	if result.Port == nil || result.Port.TrackingValue != "FELIXSTOWE" {
		t.Fatalf("expected case-sensitive port discrepancy: %+v", result.Port)
	}
	if result.Vessel == nil || result.Vessel.JobValue != "MSC OSCAR" {
		t.Fatalf("expected case-sensitive vessel discrepancy: %+v", result.Vessel)
	}
}

func TestClassify_PortEmptyOnJob_NotCompared(t *testing.T) {
	job := baseJob()
	job.RecordedPortOfArrival = ""

	result := Classify(job, matchingSnapshot(), Options{})

	if result.Port != nil {
		t.Fatalf("empty job port must not produce a discrepancy: %+v", result.Port)
	}
}

func TestClassify_DispatchDateDiffers(t *testing.T) {
	job := baseJob()
	job.RecordedDispatchDate = datePtr(NewDate(2025, time.February, 10))
	snapshot := matchingSnapshot()
	snapshot.DispatchDate = datePtr(NewDate(2025, time.February, 12))

	result := Classify(job, snapshot, Options{})

	if result.Dispatch == nil || result.Dispatch.DaysDiff == nil || *result.Dispatch.DaysDiff != 2 {
		t.Fatalf("expected dispatch discrepancy with daysDiff 2: %+v", result.Dispatch)
	}
}

func TestClassify_NotTracked(t *testing.T) {
	result := Classify(baseJob(), nil, Options{})

	if result.Status != StatusNotTracked {
		t.Fatalf("expected not_tracked, got %s", result.Status)
	}
	if result.HasDiscrepancy() {
		t.Fatalf("not_tracked result must carry no discrepancy slots: %+v", result)
	}
}

func TestClassify_DeliveryGapAboveThreshold(t *testing.T) {
	// Arrival Monday 2025-03-10, delivery 9 days later, threshold 5.
	job := baseJob()
	job.RecordedDeliveryDate = datePtr(NewDate(2025, time.March, 19))
	opts := Options{Today: NewDate(2025, time.March, 20), DeliveryGapDays: 5}

	result := Classify(job, matchingSnapshot(), opts)

	if result.Delivery == nil {
		t.Fatal("expected delivery gap discrepancy")
	}
	if result.Delivery.Days != 9 {
		t.Fatalf("expected 9 day gap, got %d", result.Delivery.Days)
	}
	if result.Delivery.WeekendDays != 2 {
		t.Fatalf("expected 2 weekend days in span, got %d", result.Delivery.WeekendDays)
	}
	if result.Status != StatusDiscrepancy {
		t.Fatalf("expected discrepancy, got %s", result.Status)
	}
}

func TestClassify_DeliveryGapAtThreshold_NotReported(t *testing.T) {
	job := baseJob()
	job.RecordedDeliveryDate = datePtr(NewDate(2025, time.March, 15))
	opts := Options{Today: NewDate(2025, time.March, 20), DeliveryGapDays: 5}

	result := Classify(job, matchingSnapshot(), opts)

	if result.Delivery != nil {
		t.Fatalf("gap equal to threshold must not be reported: %+v", result.Delivery)
	}
}

func TestClassify_DeliveryGapUsesTrackingEtaWhenEtaChanged(t *testing.T) {
	job := baseJob()
	job.RecordedDeliveryDate = datePtr(NewDate(2025, time.March, 21))
	snapshot := matchingSnapshot()
	snapshot.Eta = datePtr(NewDate(2025, time.March, 13))
	opts := Options{Today: NewDate(2025, time.March, 25), DeliveryGapDays: 5}

	result := Classify(job, snapshot, opts)

	if result.Delivery == nil {
		t.Fatal("expected delivery gap discrepancy")
	}
	if !result.Delivery.EffectiveArrival.Equal(NewDate(2025, time.March, 13)) {
		t.Fatalf("effective arrival must follow the tracking eta, got %s", result.Delivery.EffectiveArrival)
	}
	if result.Delivery.Days != 8 {
		t.Fatalf("expected 8 day gap from tracking eta, got %d", result.Delivery.Days)
	}
}

func TestClassify_DeliveryGapSkippedForFutureArrival(t *testing.T) {
	job := baseJob()
	job.RecordedEta = datePtr(NewDate(2025, time.April, 10))
	job.RecordedDeliveryDate = datePtr(NewDate(2025, time.April, 25))
	opts := Options{Today: NewDate(2025, time.March, 20), DeliveryGapDays: 5}

	result := Classify(job, &Snapshot{ContainerNumber: "MSCU1234567", Eta: datePtr(NewDate(2025, time.April, 10))}, opts)

	if result.Delivery != nil {
		t.Fatalf("provisional gap before arrival must not be reported: %+v", result.Delivery)
	}
}

func TestClassify_DeliveryGapNeedsBothDates(t *testing.T) {
	job := baseJob()
	job.RecordedEta = nil
	job.RecordedDeliveryDate = datePtr(NewDate(2025, time.March, 25))
	snapshot := matchingSnapshot()
	snapshot.Eta = nil

	result := Classify(job, snapshot, Options{Today: NewDate(2025, time.March, 30)})

	if result.Delivery != nil {
		t.Fatalf("delivery gap needs an effective arrival date: %+v", result.Delivery)
	}
}
