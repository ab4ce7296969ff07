package reconcile

// Per-field comparison outcomes. Each field is classified into exactly one
// case so no absent/present combination slips through an ad hoc nil check.
type dateOutcome int

const (
	dateNotComparable dateOutcome = iota // tracking side absent
	dateEqual
	dateDiffers
	dateMissingOnJob // job side absent, tracking present
)

func compareDateField(job, tracking *Date) (dateOutcome, int) {
	if tracking == nil {
		return dateNotComparable, 0
	}
	if job == nil {
		return dateMissingOnJob, 0
	}
	diff := DaysBetween(*job, *tracking)
	if diff == 0 {
		return dateEqual, 0
	}
	return dateDiffers, diff
}

type stringOutcome int

const (
	stringNotComparable stringOutcome = iota // either side empty
	stringEqual
	stringDiffers
)

func compareStringField(job, tracking string) stringOutcome {
	if job == "" || tracking == "" {
		return stringNotComparable
	}
	if job == tracking {
		return stringEqual
	}
	return stringDiffers
}

func dateDiscrepancy(job, tracking *Date, outcome dateOutcome, diff int) *DateDiscrepancy {
	switch outcome {
	case dateDiffers:
		d := diff
		return &DateDiscrepancy{JobValue: job, TrackingValue: *tracking, DaysDiff: &d}
	case dateMissingOnJob:
		return &DateDiscrepancy{TrackingValue: *tracking, MissingJobData: true}
	default:
		return nil
	}
}

// Classify reconciles one job against its tracking snapshot. A nil
// snapshot means the provider had no data for the container.
func Classify(job Job, snapshot *Snapshot, opts Options) Result {
	result := Result{
		ShipmentId:      job.ShipmentId,
		JobRef:          job.JobRef,
		CustomerName:    job.CustomerName,
		ContainerNumber: job.ContainerNumber,
	}

	if snapshot == nil {
		result.Status = StatusNotTracked
		return result
	}

	etaOutcome, etaDiff := compareDateField(job.RecordedEta, snapshot.Eta)
	result.Eta = dateDiscrepancy(job.RecordedEta, snapshot.Eta, etaOutcome, etaDiff)

	dispatchOutcome, dispatchDiff := compareDateField(job.RecordedDispatchDate, snapshot.DispatchDate)
	result.Dispatch = dateDiscrepancy(job.RecordedDispatchDate, snapshot.DispatchDate, dispatchOutcome, dispatchDiff)

	if compareStringField(job.RecordedPortOfArrival, snapshot.PortOfArrival) == stringDiffers {
		result.Port = &StringDiscrepancy{
			JobValue:      job.RecordedPortOfArrival,
			TrackingValue: snapshot.PortOfArrival,
		}
	}
	if compareStringField(job.RecordedVessel, snapshot.VesselName) == stringDiffers {
		result.Vessel = &StringDiscrepancy{
			JobValue:      job.RecordedVessel,
			TrackingValue: snapshot.VesselName,
		}
	}

	result.Delivery = deliveryGap(job, snapshot, etaOutcome, opts)

	if result.HasDiscrepancy() {
		result.Status = StatusDiscrepancy
	} else {
		result.Status = StatusMatched
	}
	return result
}

// deliveryGap checks the span from the effective arrival date to the
// recorded delivery date. The effective arrival is the job ETA, except
// when tracking reports a different ETA, in which case tracking wins.
// Spans whose arrival is after Today are provisional and not reported.
func deliveryGap(job Job, snapshot *Snapshot, etaOutcome dateOutcome, opts Options) *DeliveryGap {
	if job.RecordedDeliveryDate == nil {
		return nil
	}

	var arrival *Date
	switch etaOutcome {
	case dateEqual:
		arrival = job.RecordedEta
	case dateDiffers, dateMissingOnJob:
		arrival = snapshot.Eta
	case dateNotComparable:
		arrival = job.RecordedEta
	}
	if arrival == nil {
		return nil
	}
	if !opts.Today.IsZero() && arrival.After(opts.Today) {
		return nil
	}

	days := DaysBetween(*arrival, *job.RecordedDeliveryDate)
	if days <= opts.deliveryGapDays() {
		return nil
	}

	return &DeliveryGap{
		EffectiveArrival: *arrival,
		DeliveryDate:     *job.RecordedDeliveryDate,
		Days:             days,
		WeekendDays:      CountWeekendDays(*arrival, *job.RecordedDeliveryDate),
	}
}
