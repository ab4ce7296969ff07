package reconcile

// Job is the read-only view of a shipment record the engine reconciles.
// String fields use "" for absent; date fields use nil.
type Job struct {
	ShipmentId            string `json:"shipmentId"`
	JobRef                int    `json:"jobRef"`
	CustomerName          string `json:"customerName"`
	ContainerNumber       string `json:"containerNumber"`
	RecordedPortOfArrival string `json:"recordedPortOfArrival"`
	RecordedVessel        string `json:"recordedVessel"`
	RecordedEta           *Date  `json:"recordedEta"`
	RecordedDispatchDate  *Date  `json:"recordedDispatchDate"`
	RecordedDeliveryDate  *Date  `json:"recordedDeliveryDate"`
}

// Snapshot holds the live tracking facts for one container.
type Snapshot struct {
	ContainerNumber string `json:"containerNumber"`
	Eta             *Date  `json:"eta"`
	DispatchDate    *Date  `json:"dispatchDate"`
	PortOfArrival   string `json:"portOfArrival"`
	VesselName      string `json:"vesselName"`
}

type Status string

const (
	StatusMatched     Status = "matched"
	StatusDiscrepancy Status = "discrepancy"
	StatusNotTracked  Status = "not_tracked"
)

// DateDiscrepancy reports a date field where tracking disagrees with the
// job record. DaysDiff is tracking minus job; it is nil when the job side
// is absent, in which case MissingJobData is set instead.
type DateDiscrepancy struct {
	JobValue       *Date `json:"jobValue,omitempty"`
	TrackingValue  Date  `json:"trackingValue"`
	DaysDiff       *int  `json:"daysDiff,omitempty"`
	MissingJobData bool  `json:"missingJobData,omitempty"`
}

// StringDiscrepancy reports a string field differing case-sensitively.
// Only produced when both sides are non-empty.
type StringDiscrepancy struct {
	JobValue      string `json:"jobValue"`
	TrackingValue string `json:"trackingValue"`
}

// DeliveryGap reports a span between the effective arrival date and the
// recorded delivery date that exceeds the configured threshold.
type DeliveryGap struct {
	EffectiveArrival Date `json:"effectiveArrival"`
	DeliveryDate     Date `json:"deliveryDate"`
	Days             int  `json:"days"`
	WeekendDays      int  `json:"weekendDays"`
}

// Result is the per-job reconciliation outcome. Exactly one of the three
// statuses holds; discrepancy slots are populated only when Status is
// StatusDiscrepancy, and at least one is present in that case.
type Result struct {
	ShipmentId      string             `json:"shipmentId"`
	JobRef          int                `json:"jobRef"`
	CustomerName    string             `json:"customerName"`
	ContainerNumber string             `json:"containerNumber"`
	Status          Status             `json:"status"`
	Eta             *DateDiscrepancy   `json:"etaDiscrepancy,omitempty"`
	Dispatch        *DateDiscrepancy   `json:"dispatchDiscrepancy,omitempty"`
	Port            *StringDiscrepancy `json:"portDiscrepancy,omitempty"`
	Vessel          *StringDiscrepancy `json:"vesselDiscrepancy,omitempty"`
	Delivery        *DeliveryGap       `json:"deliveryDiscrepancy,omitempty"`
}

// HasDiscrepancy reports whether any field slot is populated.
func (r Result) HasDiscrepancy() bool {
	return r.Eta != nil || r.Dispatch != nil || r.Port != nil || r.Vessel != nil || r.Delivery != nil
}

// LookupError records a job whose tracking lookup failed. The job is
// omitted from the result list and reported here instead.
type LookupError struct {
	ShipmentId      string `json:"shipmentId"`
	JobRef          int    `json:"jobRef"`
	ContainerNumber string `json:"containerNumber"`
	Err             error  `json:"-"`
	Message         string `json:"message"`
}

func (e LookupError) Error() string {
	return e.Message
}

// Summary aggregates the batch outcome.
type Summary struct {
	Matched       int `json:"matched"`
	Discrepancies int `json:"discrepancies"`
	NotTracked    int `json:"notTracked"`
	Failed        int `json:"failed"`
}

const DefaultDeliveryGapDays = 5

// Options controls a reconciliation run. The caller supplies Today so the
// engine never reads the system clock.
type Options struct {
	// Today is the reference date for the delivery-gap check. Gaps whose
	// effective arrival is after Today are provisional and not reported.
	Today Date

	// DeliveryGapDays is the threshold above which an arrival-to-delivery
	// span is reported. Values <= 0 fall back to DefaultDeliveryGapDays.
	DeliveryGapDays int

	// LookupWorkers bounds the concurrent tracking lookups. Values <= 0
	// fall back to 4.
	LookupWorkers int
}

func (o Options) deliveryGapDays() int {
	if o.DeliveryGapDays <= 0 {
		return DefaultDeliveryGapDays
	}
	return o.DeliveryGapDays
}

func (o Options) lookupWorkers() int {
	if o.LookupWorkers <= 0 {
		return 4
	}
	return o.LookupWorkers
}
