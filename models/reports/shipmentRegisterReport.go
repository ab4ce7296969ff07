package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/models"
	"bitbucket.org/lanefocus/freight_backend/reconcile"
	"bitbucket.org/lanefocus/freight_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type ShipmentRegisterRow struct {
	JobRef          int             `json:"JobRef"`
	CustomerName    *string         `json:"CustomerName,omitempty"`
	Direction       string          `json:"Direction"`
	CurrentStatus   string          `json:"CurrentStatus"`
	ContainerNumber string          `json:"ContainerNumber"`
	PortOfLoading   string          `json:"PortOfLoading"`
	PortOfArrival   string          `json:"PortOfArrival"`
	Vessel          string          `json:"Vessel"`
	RecordedEta     *time.Time      `json:"RecordedEta"`
	InvoicedTotal   decimal.Decimal `json:"InvoicedTotal"`
	InvoiceCount    int             `json:"InvoiceCount"`
	// status of the shipment in the business's latest reconcile run,
	// empty when the shipment was not part of it
	ReconcileStatus string `json:"ReconcileStatus" gorm:"-"`
}

func GetShipmentRegisterReport(ctx context.Context, fromDate, toDate time.Time) ([]*ShipmentRegisterRow, error) {

	sql := `
SELECT
    s.job_ref,
    customers.name AS customer_name,
    s.direction,
    s.current_status,
    s.container_number,
    s.port_of_loading,
    s.recorded_port_of_arrival AS port_of_arrival,
    s.recorded_vessel AS vessel,
    s.recorded_eta,
    COALESCE(iv.invoiced_total, 0) AS invoiced_total,
    COALESCE(iv.invoice_count, 0) AS invoice_count
FROM
    shipments s
        LEFT JOIN
    customers ON customers.id = s.customer_id
        LEFT JOIN
    (SELECT
        shipment_id,
            SUM(total_amount) AS invoiced_total,
            COUNT(id) AS invoice_count
    FROM
        invoices
    WHERE
        business_id = @businessId
            AND current_status IN ('Confirmed' , 'Paid')
    GROUP BY shipment_id) AS iv ON iv.shipment_id = s.id
WHERE
    s.business_id = @businessId
        AND s.created_at BETWEEN @fromDate AND @toDate
ORDER BY s.job_ref;
`

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var records []*ShipmentRegisterRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"businessId": businessId,
		"fromDate":   fromDate,
		"toDate":     toDate,
	}).Scan(&records).Error; err != nil {
		return nil, err
	}

	// annotate each row with its status in the latest reconcile run
	statusByJobRef, err := latestReconcileStatuses(ctx, businessId)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		r.ReconcileStatus = statusByJobRef[r.JobRef]
	}

	return records, nil
}

func latestReconcileStatuses(ctx context.Context, businessId string) (map[int]string, error) {
	db := config.GetDB()
	var run models.ReconcileRun
	err := db.WithContext(ctx).
		Where("business_id = ? AND status IN (?)", businessId,
			[]string{models.ReconcileRunStatusSuccess, models.ReconcileRunStatusPartial}).
		Order("id DESC").
		First(&run).Error
	if err != nil {
		// no completed run yet
		return map[int]string{}, nil
	}

	var results []reconcile.Result
	if len(run.ResultsJSON) > 0 {
		if err := json.Unmarshal(run.ResultsJSON, &results); err != nil {
			return nil, err
		}
	}

	statuses := make(map[int]string, len(results))
	for _, r := range results {
		statuses[r.JobRef] = string(r.Status)
	}
	return statuses, nil
}

func (r ShipmentRegisterRow) GetCellValues() []interface{} {
	eta := ""
	if r.RecordedEta != nil {
		eta = r.RecordedEta.Format("2006-01-02")
	}
	return []interface{}{
		r.JobRef,
		utils.DereferencePtr(r.CustomerName, ""),
		r.Direction,
		r.CurrentStatus,
		r.ContainerNumber,
		r.PortOfLoading,
		r.PortOfArrival,
		r.Vessel,
		eta,
		r.InvoicedTotal,
		r.InvoiceCount,
		r.ReconcileStatus,
	}
}

var shipmentRegisterHeadings = []string{
	"Job Ref", "Customer", "Direction", "Status", "Container",
	"Port Of Loading", "Port Of Arrival", "Vessel", "ETA",
	"Invoiced Total", "Invoice Count", "Reconcile Status",
}

// WriteShipmentRegisterExcel renders the report as a single-sheet xlsx.
func WriteShipmentRegisterExcel(w io.Writer, rows []*ShipmentRegisterRow) error {

	f := excelize.NewFile()
	sheetName := "Sheet1"
	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Add headers
	for i, h := range shipmentRegisterHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheetName, cell, h)
	}

	// Add data
	for rowNo, r := range rows {
		for colNo, value := range r.GetCellValues() {
			cell, err := excelize.CoordinatesToCellName(colNo+1, rowNo+2)
			if err != nil {
				return err
			}
			f.SetCellValue(sheetName, cell, fmt.Sprint(value))
		}
	}

	return f.Write(w)
}
