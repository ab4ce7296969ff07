package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/utils"
)

// ReconcileRun records one execution of the tracking reconciliation batch
// for a business: queued -> running -> success/partial/failed.
type ReconcileRun struct {
	ID          uint       `gorm:"primary_key" json:"id"`
	BusinessId  string     `gorm:"index;not null" json:"business_id"`
	Status      string     `gorm:"size:20;not null" json:"status"`
	TriggeredBy string     `gorm:"size:20" json:"triggered_by"`
	ResultsJSON []byte     `gorm:"type:json" json:"results"`
	SummaryJSON []byte     `gorm:"type:json" json:"summary"`
	JobCount    int        `json:"job_count"`
	Matched     int        `json:"matched"`
	Discrepant  int        `json:"discrepant"`
	NotTracked  int        `json:"not_tracked"`
	ErrorCount  int        `json:"error_count"`
	ParentRunId *uint      `gorm:"index" json:"parent_run_id"`
	StartedAt   *time.Time `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at"`
	DurationMs  int64      `json:"duration_ms"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// ReconcileRunError is one failed tracking lookup inside a run.
type ReconcileRunError struct {
	ID              uint      `gorm:"primary_key" json:"id"`
	ReconcileRunId  uint      `gorm:"index;not null" json:"reconcile_run_id"`
	BusinessId      string    `gorm:"index;not null" json:"business_id"`
	JobRef          int       `json:"job_ref"`
	ContainerNumber string    `gorm:"size:20" json:"container_number"`
	ErrorCode       string    `gorm:"size:64" json:"error_code"`
	Message         string    `gorm:"type:text" json:"message"`
	Retryable       bool      `gorm:"default:false" json:"retryable"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func CreateReconcileRun(ctx context.Context, businessId string, triggeredBy string, parentRunId *uint) (*ReconcileRun, error) {
	if businessId == "" {
		return nil, errors.New("business id is required")
	}

	run := ReconcileRun{
		BusinessId:  businessId,
		Status:      ReconcileRunStatusQueued,
		TriggeredBy: triggeredBy,
		ParentRunId: parentRunId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func GetReconcileRun(ctx context.Context, id uint) (*ReconcileRun, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var run ReconcileRun
	err := db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessId, id).
		First(&run).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &run, nil
}

func GetReconcileRuns(ctx context.Context, limit int) ([]*ReconcileRun, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	db := config.GetDB()
	var runs []*ReconcileRun
	err := db.WithContext(ctx).
		Where("business_id = ?", businessId).
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func GetReconcileRunErrors(ctx context.Context, runId uint) ([]*ReconcileRunError, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var errs []*ReconcileRunError
	err := db.WithContext(ctx).
		Where("business_id = ? AND reconcile_run_id = ?", businessId, runId).
		Order("job_ref").
		Find(&errs).Error
	if err != nil {
		return nil, err
	}
	return errs, nil
}
