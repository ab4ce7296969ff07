package trackingsync

import (
	"errors"
	"fmt"
	"strings"

	"bitbucket.org/lanefocus/freight_backend/reconcile"
)

// trackingContainer is the provider's wire shape for one container.
// Dates arrive as yyyy-mm-dd strings and may be absent.
type trackingContainer struct {
	ContainerNumber string `json:"container_number"`
	Eta             string `json:"eta"`
	DispatchDate    string `json:"dispatch_date"`
	PortOfArrival   string `json:"port_of_arrival"`
	VesselName      string `json:"vessel_name"`
}

// toSnapshot validates the wire payload and converts it for comparison.
// A payload without a container number, or with an unparseable date, is
// malformed and rejected as a whole.
func (tc trackingContainer) toSnapshot() (*reconcile.Snapshot, error) {
	containerNumber := strings.TrimSpace(tc.ContainerNumber)
	if containerNumber == "" {
		return nil, errors.New("container number missing in tracking payload")
	}

	snapshot := &reconcile.Snapshot{
		ContainerNumber: containerNumber,
		PortOfArrival:   strings.TrimSpace(tc.PortOfArrival),
		VesselName:      strings.TrimSpace(tc.VesselName),
	}

	if v := strings.TrimSpace(tc.Eta); v != "" {
		d, err := reconcile.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid eta %q: %w", v, err)
		}
		snapshot.Eta = &d
	}
	if v := strings.TrimSpace(tc.DispatchDate); v != "" {
		d, err := reconcile.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid dispatch_date %q: %w", v, err)
		}
		snapshot.DispatchDate = &d
	}

	return snapshot, nil
}

type TriggerRunRequest struct {
	// reserved for future per-run options
}

type ApplyTrackingRequest struct {
	ShipmentId int    `json:"shipmentId" binding:"required"`
	Field      string `json:"field" binding:"required"`
	Value      string `json:"value" binding:"required"`
}

type RunResponse struct {
	ID          uint    `json:"id"`
	Status      string  `json:"status"`
	TriggeredBy string  `json:"triggeredBy"`
	StartedAt   *string `json:"startedAt"`
	FinishedAt  *string `json:"finishedAt"`
	DurationMs  int64   `json:"durationMs"`
	JobCount    int     `json:"jobCount"`
	Matched     int     `json:"matched"`
	Discrepant  int     `json:"discrepant"`
	NotTracked  int     `json:"notTracked"`
	ErrorCount  int     `json:"errorCount"`
}

type RunHistoryResponse struct {
	Items []RunResponse `json:"items"`
}

type RunDetailResponse struct {
	RunResponse
	Results []reconcile.Result `json:"results"`
	Errors  []RunErrorResponse `json:"errors"`
}

type RunErrorResponse struct {
	ID              uint   `json:"id"`
	JobRef          int    `json:"jobRef"`
	ContainerNumber string `json:"containerNumber"`
	Message         string `json:"message"`
	Retryable       bool   `json:"retryable"`
}

type PubSubPushEnvelope struct {
	Message struct {
		Data []byte `json:"data"`
		ID   string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

type RunPubSubPayload struct {
	RunId      uint   `json:"run_id"`
	BusinessId string `json:"business_id"`
}
