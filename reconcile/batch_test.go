package reconcile

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

type mapFetcher struct {
	mu        sync.Mutex
	snapshots map[string]*Snapshot
	failures  map[string]error
	calls     map[string]int
	inFlight  int
	peak      int
}

func newMapFetcher() *mapFetcher {
	return &mapFetcher{
		snapshots: map[string]*Snapshot{},
		failures:  map[string]error{},
		calls:     map[string]int{},
	}
}

func (f *mapFetcher) Lookup(ctx context.Context, containerNumber string) (*Snapshot, error) {
	f.mu.Lock()
	f.calls[containerNumber]++
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	snapshot := f.snapshots[containerNumber]
	failure := f.failures[containerNumber]
	f.mu.Unlock()

	if failure != nil {
		return nil, failure
	}
	return snapshot, nil
}

func TestReconcile_FiltersJobsWithoutContainerNumber(t *testing.T) {
	jobs := []Job{
		{ShipmentId: "shp-1", JobRef: 100, ContainerNumber: "MSCU0000001"},
		{ShipmentId: "shp-2", JobRef: 101, ContainerNumber: ""},
		{ShipmentId: "shp-3", JobRef: 102, ContainerNumber: "MSCU0000003"},
	}
	fetcher := newMapFetcher()

	results, lookupErrs, summary := Reconcile(context.Background(), jobs, fetcher, Options{})

	if len(lookupErrs) != 0 {
		t.Fatalf("unexpected lookup errors: %+v", lookupErrs)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.JobRef == 101 {
			t.Fatal("job without container number must not appear in the output")
		}
	}
	if fetcher.calls[""] != 0 {
		t.Fatal("no lookup may be issued for an empty container number")
	}
	if summary.NotTracked != 2 {
		t.Fatalf("expected 2 not_tracked, got %+v", summary)
	}
}

func TestReconcile_LookupFailureDoesNotAbortBatch(t *testing.T) {
	jobs := []Job{
		{ShipmentId: "shp-1", JobRef: 100, ContainerNumber: "MSCU0000001"},
		{ShipmentId: "shp-2", JobRef: 101, ContainerNumber: "MSCU0000002"},
		{ShipmentId: "shp-3", JobRef: 102, ContainerNumber: "MSCU0000003"},
	}
	fetcher := newMapFetcher()
	fetcher.snapshots["MSCU0000001"] = &Snapshot{ContainerNumber: "MSCU0000001"}
	fetcher.failures["MSCU0000002"] = errors.New("provider timeout")
	fetcher.snapshots["MSCU0000003"] = &Snapshot{ContainerNumber: "MSCU0000003"}

	results, lookupErrs, summary := Reconcile(context.Background(), jobs, fetcher, Options{})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if len(lookupErrs) != 1 {
		t.Fatalf("expected 1 lookup error, got %d", len(lookupErrs))
	}
	if lookupErrs[0].JobRef != 101 || lookupErrs[0].ContainerNumber != "MSCU0000002" {
		t.Fatalf("wrong job in error list: %+v", lookupErrs[0])
	}
	if summary.Failed != 1 || summary.Matched != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	for _, r := range results {
		if r.JobRef == 101 {
			t.Fatal("failed job must not appear in the success list")
		}
	}
}

func TestReconcile_NotFoundIsNotTracked(t *testing.T) {
	jobs := []Job{{ShipmentId: "shp-1", JobRef: 100, ContainerNumber: "MSCU0000001"}}
	fetcher := newMapFetcher()

	results, _, summary := Reconcile(context.Background(), jobs, fetcher, Options{})

	if len(results) != 1 || results[0].Status != StatusNotTracked {
		t.Fatalf("expected a single not_tracked result, got %+v", results)
	}
	if summary.NotTracked != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestReconcile_BoundsConcurrency(t *testing.T) {
	var jobs []Job
	fetcher := newMapFetcher()
	for i := 0; i < 30; i++ {
		container := fmt.Sprintf("MSCU%07d", i)
		jobs = append(jobs, Job{ShipmentId: fmt.Sprintf("shp-%d", i), JobRef: 100 + i, ContainerNumber: container})
		fetcher.snapshots[container] = &Snapshot{ContainerNumber: container}
	}

	Reconcile(context.Background(), jobs, fetcher, Options{LookupWorkers: 3})

	if fetcher.peak > 3 {
		t.Fatalf("expected at most 3 concurrent lookups, saw %d", fetcher.peak)
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	jobs := []Job{
		{ShipmentId: "shp-3", JobRef: 300, ContainerNumber: "MSCU0000003", RecordedEta: datePtr(NewDate(2025, time.March, 10))},
		{ShipmentId: "shp-1", JobRef: 100, ContainerNumber: "MSCU0000001"},
		{ShipmentId: "shp-2", JobRef: 200, ContainerNumber: "MSCU0000002", RecordedVessel: "EVER GIVEN"},
	}
	fetcher := newMapFetcher()
	fetcher.snapshots["MSCU0000003"] = &Snapshot{ContainerNumber: "MSCU0000003", Eta: datePtr(NewDate(2025, time.March, 13))}
	fetcher.snapshots["MSCU0000002"] = &Snapshot{ContainerNumber: "MSCU0000002", VesselName: "EVER GOLDEN"}

	opts := Options{Today: NewDate(2025, time.March, 20)}
	first, firstErrs, firstSummary := Reconcile(context.Background(), jobs, fetcher, opts)
	second, secondErrs, secondSummary := Reconcile(context.Background(), jobs, fetcher, opts)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must produce identical results:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(firstErrs, secondErrs) || firstSummary != secondSummary {
		t.Fatal("identical inputs must produce identical errors and summary")
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].JobRef >= first[i].JobRef {
			t.Fatalf("results must be ordered by jobRef: %+v", first)
		}
	}
}

func TestReconcile_ConcreteScenario26010(t *testing.T) {
	jobs := []Job{{
		ShipmentId:            "shp-26010",
		JobRef:                26010,
		ContainerNumber:       "MSCU1234567",
		RecordedEta:           datePtr(NewDate(2025, time.March, 10)),
		RecordedPortOfArrival: "Felixstowe",
		RecordedVessel:        "MSC OSCAR",
	}}
	fetcher := newMapFetcher()
	fetcher.snapshots["MSCU1234567"] = &Snapshot{
		ContainerNumber: "MSCU1234567",
		Eta:             datePtr(NewDate(2025, time.March, 13)),
		PortOfArrival:   "Felixstowe",
		VesselName:      "MSC OSCAR",
	}

	results, lookupErrs, summary := Reconcile(context.Background(), jobs, fetcher, Options{})

	if len(lookupErrs) != 0 || len(results) != 1 {
		t.Fatalf("expected a single clean result, got %+v / %+v", results, lookupErrs)
	}
	r := results[0]
	if r.Status != StatusDiscrepancy {
		t.Fatalf("expected discrepancy, got %s", r.Status)
	}
	if r.Eta == nil || r.Eta.DaysDiff == nil || *r.Eta.DaysDiff != 3 {
		t.Fatalf("expected eta daysDiff 3: %+v", r.Eta)
	}
	if r.Port != nil || r.Vessel != nil || r.Dispatch != nil || r.Delivery != nil {
		t.Fatalf("only the eta slot should be populated: %+v", r)
	}
	if summary.Discrepancies != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
