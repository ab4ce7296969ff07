package trackingsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/models"
	"bitbucket.org/lanefocus/freight_backend/reconcile"
	"bitbucket.org/lanefocus/freight_backend/utils"
	"github.com/bsm/redislock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const runLockTTL = 10 * time.Minute

var tracer = otel.Tracer("trackingsync")

// ProcessRun executes a queued reconcile run outside of a Pub/Sub delivery,
// for ops tooling that needs to drive a run directly.
func ProcessRun(ctx context.Context, runId uint, businessId string) error {
	return processReconcileRun(ctx, RunPubSubPayload{RunId: runId, BusinessId: businessId})
}

func processReconcileRun(ctx context.Context, payload RunPubSubPayload) error {
	logger := config.GetLogger()
	if payload.RunId == 0 || payload.BusinessId == "" {
		return errors.New("invalid payload")
	}

	ctx, span := tracer.Start(ctx, "processReconcileRun", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	ctx = utils.SetBusinessIdInContext(ctx, payload.BusinessId)
	db := config.GetDB().WithContext(ctx)

	var run models.ReconcileRun
	if err := db.Where("id = ? AND business_id = ?", payload.RunId, payload.BusinessId).Take(&run).Error; err != nil {
		return err
	}

	if run.Status == models.ReconcileRunStatusSuccess ||
		run.Status == models.ReconcileRunStatusPartial ||
		run.Status == models.ReconcileRunStatusFailed {
		return nil
	}

	// One reconcile run per business at a time. A second delivery or a
	// concurrent trigger backs off and lets Pub/Sub redeliver.
	locker := config.GetRedisLock()
	if locker != nil {
		lock, err := locker.Obtain(ctx, "ReconcileRun:"+payload.BusinessId, runLockTTL, nil)
		if err == redislock.ErrNotObtained {
			return errors.New("reconcile run already in progress for business")
		} else if err != nil {
			return err
		}
		defer func() {
			_ = lock.Release(ctx)
		}()
	}

	business, err := models.GetBusinessById(ctx, payload.BusinessId)
	if err != nil {
		return err
	}

	now := time.Now()
	startedAt := run.StartedAt
	if startedAt == nil {
		startedAt = &now
	}
	if err := db.Model(&run).Updates(map[string]interface{}{
		"status":     models.ReconcileRunStatusRunning,
		"started_at": startedAt,
	}).Error; err != nil {
		return err
	}

	jobs, err := models.ListActiveImportShipments(ctx, payload.BusinessId)
	if err != nil {
		return finishRunFailed(ctx, db, &run, startedAt, err)
	}

	client, err := newTrackingClient(business.TrackingApiBaseUrl, business.TrackingApiKeyRef)
	if err != nil {
		return finishRunFailed(ctx, db, &run, startedAt, err)
	}

	fetcher := newSnapshotFetcher(payload.BusinessId, client)
	opts := reconcile.Options{
		Today:           reconcile.DateOf(time.Now().UTC()),
		DeliveryGapDays: config.ReconcileDeliveryGapDays(),
		LookupWorkers:   config.ReconcileLookupWorkers(),
	}
	results, lookupErrs, summary := reconcile.Reconcile(ctx, jobs, fetcher, opts)

	for _, lookupErr := range lookupErrs {
		errRec := models.ReconcileRunError{
			ReconcileRunId:  run.ID,
			BusinessId:      payload.BusinessId,
			JobRef:          lookupErr.JobRef,
			ContainerNumber: lookupErr.ContainerNumber,
			ErrorCode:       "lookup_failed",
			Message:         lookupErr.Message,
			Retryable:       true,
		}
		if err := db.Create(&errRec).Error; err != nil {
			config.LogError(logger, "trackingsync", "processReconcileRun", "Failed to record lookup error", lookupErr, err)
		}
	}

	finishedAt := time.Now()
	durationMs := finishedAt.Sub(*startedAt).Milliseconds()
	status := models.ReconcileRunStatusSuccess
	if summary.Failed > 0 && len(results) == 0 {
		status = models.ReconcileRunStatusFailed
	} else if summary.Failed > 0 {
		status = models.ReconcileRunStatusPartial
	}

	resultsJSON, _ := json.Marshal(results)
	summaryJSON, _ := json.Marshal(summary)

	tx := db.Begin()
	if err := tx.Model(&models.ReconcileRun{}).
		Where("id = ? AND business_id = ?", run.ID, payload.BusinessId).
		Updates(map[string]interface{}{
			"status":       status,
			"finished_at":  finishedAt,
			"duration_ms":  durationMs,
			"results_json": resultsJSON,
			"summary_json": summaryJSON,
			"job_count":    len(jobs),
			"matched":      summary.Matched,
			"discrepant":   summary.Discrepancies,
			"not_tracked":  summary.NotTracked,
			"error_count":  summary.Failed,
		}).Error; err != nil {
		tx.Rollback()
		return err
	}

	run.Status = status
	run.FinishedAt = &finishedAt
	run.DurationMs = durationMs
	run.JobCount = len(jobs)
	run.Matched = summary.Matched
	run.Discrepant = summary.Discrepancies
	run.NotTracked = summary.NotTracked
	run.ErrorCount = summary.Failed

	if err := models.PublishToNotification(ctx, tx, payload.BusinessId, finishedAt, int(run.ID),
		models.NotificationReferenceTypeReconcileRun, &run, nil, models.PubSubMessageActionUpdate); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func finishRunFailed(ctx context.Context, db *gorm.DB, run *models.ReconcileRun, startedAt *time.Time, cause error) error {
	finishedAt := time.Now()
	_ = db.Model(run).Updates(map[string]interface{}{
		"status":      models.ReconcileRunStatusFailed,
		"finished_at": finishedAt,
		"duration_ms": finishedAt.Sub(*startedAt).Milliseconds(),
		"error_count": 1,
	}).Error

	errRec := models.ReconcileRunError{
		ReconcileRunId: run.ID,
		BusinessId:     run.BusinessId,
		ErrorCode:      "run_failed",
		Message:        cause.Error(),
		Retryable:      true,
	}
	_ = db.Create(&errRec).Error
	return cause
}

// newSnapshotFetcher wraps the tracking client with a short-lived redis
// cache so retried runs within the cache window do not re-hit the
// provider for the same containers. Malformed provider payloads are
// logged and treated as not tracked.
func newSnapshotFetcher(businessId string, client *trackingClient) reconcile.Fetcher {
	logger := config.GetLogger()
	cacheTTL := snapshotCacheTTL()

	return reconcile.FetcherFunc(func(ctx context.Context, containerNumber string) (*reconcile.Snapshot, error) {
		cacheKey := fmt.Sprintf("TrackingSnapshot:%s:%s", businessId, containerNumber)
		var cached reconcile.Snapshot
		if exists, err := config.GetRedisObject(cacheKey, &cached); err == nil && exists {
			return &cached, nil
		}

		wire, err := client.getContainer(ctx, containerNumber)
		if err != nil {
			return nil, err
		}
		if wire == nil {
			return nil, nil
		}

		snapshot, err := wire.toSnapshot()
		if err != nil {
			config.LogError(logger, "trackingsync", "snapshotFetcher", "Malformed tracking payload", containerNumber, err)
			return nil, nil
		}

		_ = config.SetRedisObject(cacheKey, snapshot, cacheTTL)
		return snapshot, nil
	})
}

func snapshotCacheTTL() time.Duration {
	minutes := 10
	if v := strings.TrimSpace(os.Getenv("TRACKING_SNAPSHOT_CACHE_MINUTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			minutes = n
		}
	}
	return time.Duration(minutes) * time.Minute
}
