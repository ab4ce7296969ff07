package trackingsync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/lanefocus/freight_backend/models"
	"bitbucket.org/lanefocus/freight_backend/reconcile"
	"bitbucket.org/lanefocus/freight_backend/utils"
	"github.com/gin-gonic/gin"
)

func TriggerRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)

		business, err := models.GetBusinessById(ctx, businessId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if strings.TrimSpace(business.TrackingApiBaseUrl) == "" && strings.TrimSpace(os.Getenv("TRACKING_API_BASE_URL")) == "" {
			c.JSON(http.StatusConflict, gin.H{"error": "tracking provider is not configured"})
			return
		}

		run, err := models.CreateReconcileRun(ctx, businessId, models.ReconcileTriggeredManual, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		_ = PublishReconcileRun(ctx, run.ID, businessId)

		c.JSON(http.StatusOK, gin.H{"id": run.ID})
	}
}

func RunHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit := 20
		if v := strings.TrimSpace(c.Query("limit")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		runs, err := models.GetReconcileRuns(ctx, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]RunResponse, 0, len(runs))
		for _, run := range runs {
			items = append(items, mapRunToResponse(run))
		}
		c.JSON(http.StatusOK, RunHistoryResponse{Items: items})
	}
}

func RunDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		run, err := models.GetReconcileRun(ctx, uint(id))
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		runErrs, err := models.GetReconcileRunErrors(ctx, run.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var results []reconcile.Result
		if len(run.ResultsJSON) > 0 {
			if err := json.Unmarshal(run.ResultsJSON, &results); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		c.JSON(http.StatusOK, RunDetailResponse{
			RunResponse: mapRunToResponse(run),
			Results:     results,
			Errors:      mapRunErrors(runErrs),
		})
	}
}

func RetryRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		parent, err := models.GetReconcileRun(ctx, uint(id))
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		run, err := models.CreateReconcileRun(ctx, businessId, models.ReconcileTriggeredRetry, &parent.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		_ = PublishReconcileRun(ctx, run.ID, businessId)

		c.JSON(http.StatusOK, gin.H{"id": run.ID})
	}
}

// ApplyTrackingHandler writes one tracking-reported value back onto a
// shipment. This is the only path by which tracking data reaches a
// shipment record, and it is always operator-triggered.
func ApplyTrackingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req ApplyTrackingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		shipment, err := models.ApplyTrackingValue(ctx, req.ShipmentId, req.Field, req.Value)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, shipment)
	}
}

func resolveBusinessID(c *gin.Context) (string, error) {
	username, ok := utils.GetUsernameFromContext(c.Request.Context())
	if !ok || strings.TrimSpace(username) == "" {
		return "", errors.New("unauthorized")
	}

	businessId := strings.TrimSpace(c.Query("business_id"))
	if businessId != "" {
		if err := authorizeInternalBusiness(c.Request.Context(), businessId); err != nil {
			return "", err
		}
		return businessId, nil
	}

	user, err := models.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		return "", errors.New("unauthorized")
	}
	businessId = strings.TrimSpace(user.BusinessId)
	if businessId == "" {
		return "", errors.New("business_id is required")
	}
	return businessId, nil
}

func authorizeInternalBusiness(ctx context.Context, businessId string) error {
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return errors.New("unauthorized")
	}
	if businessId == "" {
		return errors.New("business_id is required")
	}

	user, err := models.GetUserByUsername(ctx, username)
	if err != nil {
		return errors.New("unauthorized")
	}
	if user.Role == models.UserRoleAdmin {
		return nil
	}
	if user.BusinessId != businessId {
		return errors.New("unauthorized")
	}
	return nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func mapRunToResponse(run *models.ReconcileRun) RunResponse {
	return RunResponse{
		ID:          run.ID,
		Status:      run.Status,
		TriggeredBy: run.TriggeredBy,
		StartedAt:   formatTime(run.StartedAt),
		FinishedAt:  formatTime(run.FinishedAt),
		DurationMs:  run.DurationMs,
		JobCount:    run.JobCount,
		Matched:     run.Matched,
		Discrepant:  run.Discrepant,
		NotTracked:  run.NotTracked,
		ErrorCount:  run.ErrorCount,
	}
}

func mapRunErrors(errorsList []*models.ReconcileRunError) []RunErrorResponse {
	out := make([]RunErrorResponse, 0, len(errorsList))
	for _, errItem := range errorsList {
		out = append(out, RunErrorResponse{
			ID:              errItem.ID,
			JobRef:          errItem.JobRef,
			ContainerNumber: errItem.ContainerNumber,
			Message:         errItem.Message,
			Retryable:       errItem.Retryable,
		})
	}
	return out
}
