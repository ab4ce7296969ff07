package trackingsync

import (
	"testing"

	"bitbucket.org/lanefocus/freight_backend/reconcile"
)

func TestToSnapshotFullPayload(t *testing.T) {
	wire := trackingContainer{
		ContainerNumber: "MSCU1234567",
		Eta:             "2025-03-13",
		DispatchDate:    "2025-02-20",
		PortOfArrival:   "Felixstowe",
		VesselName:      "MSC OSCAR",
	}

	snapshot, err := wire.toSnapshot()
	if err != nil {
		t.Fatalf("toSnapshot: %v", err)
	}
	if snapshot.ContainerNumber != "MSCU1234567" {
		t.Errorf("container = %q", snapshot.ContainerNumber)
	}
	if snapshot.Eta == nil || !snapshot.Eta.Equal(reconcile.NewDate(2025, 3, 13)) {
		t.Errorf("eta = %v", snapshot.Eta)
	}
	if snapshot.DispatchDate == nil || !snapshot.DispatchDate.Equal(reconcile.NewDate(2025, 2, 20)) {
		t.Errorf("dispatchDate = %v", snapshot.DispatchDate)
	}
	if snapshot.PortOfArrival != "Felixstowe" || snapshot.VesselName != "MSC OSCAR" {
		t.Errorf("port = %q vessel = %q", snapshot.PortOfArrival, snapshot.VesselName)
	}
}

func TestToSnapshotOptionalFieldsAbsent(t *testing.T) {
	wire := trackingContainer{ContainerNumber: "TRLU7654321"}

	snapshot, err := wire.toSnapshot()
	if err != nil {
		t.Fatalf("toSnapshot: %v", err)
	}
	if snapshot.Eta != nil || snapshot.DispatchDate != nil {
		t.Errorf("expected nil dates, got eta=%v dispatch=%v", snapshot.Eta, snapshot.DispatchDate)
	}
	if snapshot.PortOfArrival != "" || snapshot.VesselName != "" {
		t.Errorf("expected empty strings, got port=%q vessel=%q", snapshot.PortOfArrival, snapshot.VesselName)
	}
}

func TestToSnapshotMissingContainerNumber(t *testing.T) {
	wire := trackingContainer{Eta: "2025-03-13"}
	if _, err := wire.toSnapshot(); err == nil {
		t.Fatal("expected error for payload without container number")
	}

	wire = trackingContainer{ContainerNumber: "   "}
	if _, err := wire.toSnapshot(); err == nil {
		t.Fatal("expected error for blank container number")
	}
}

func TestToSnapshotInvalidDates(t *testing.T) {
	wire := trackingContainer{ContainerNumber: "MSCU1234567", Eta: "13/03/2025"}
	if _, err := wire.toSnapshot(); err == nil {
		t.Fatal("expected error for non-ISO eta")
	}

	wire = trackingContainer{ContainerNumber: "MSCU1234567", DispatchDate: "soon"}
	if _, err := wire.toSnapshot(); err == nil {
		t.Fatal("expected error for unparseable dispatch date")
	}
}

func TestToSnapshotTrimsWhitespace(t *testing.T) {
	wire := trackingContainer{
		ContainerNumber: " MSCU1234567 ",
		PortOfArrival:   " Felixstowe ",
		VesselName:      " MSC OSCAR ",
	}

	snapshot, err := wire.toSnapshot()
	if err != nil {
		t.Fatalf("toSnapshot: %v", err)
	}
	if snapshot.ContainerNumber != "MSCU1234567" {
		t.Errorf("container = %q", snapshot.ContainerNumber)
	}
	if snapshot.PortOfArrival != "Felixstowe" || snapshot.VesselName != "MSC OSCAR" {
		t.Errorf("port = %q vessel = %q", snapshot.PortOfArrival, snapshot.VesselName)
	}
}
