package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/lanefocus/freight_backend/models"
	"bitbucket.org/lanefocus/freight_backend/models/reports"
	"bitbucket.org/lanefocus/freight_backend/utils"
	"github.com/gin-gonic/gin"
)

// sessionContext resolves the logged-in user and returns a request context
// carrying the tenant identity every model call expects.
func sessionContext(c *gin.Context) (context.Context, *models.User, error) {
	user, err := getSessionUser(c.Request.Context())
	if err != nil {
		return nil, nil, err
	}

	ctx := c.Request.Context()
	ctx = utils.SetBusinessIdInContext(ctx, user.BusinessId)
	ctx = utils.SetUserIdInContext(ctx, user.ID)
	ctx = utils.SetUserNameInContext(ctx, user.Name)
	if user.Role == models.UserRoleAdmin {
		ctx = utils.SetIsAdminInContext(ctx, true)
	}
	return ctx, user, nil
}

func respondModelError(c *gin.Context, err error) {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// Auth

func loginHandler() gin.HandlerFunc {
	type loginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}
		info, err := models.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": info})
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil || !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "logout failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": true})
	}
}

func createUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, user, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if user.Role != models.UserRoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		created, err := models.CreateUser(ctx, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": created})
	}
}

func changePasswordHandler() gin.HandlerFunc {
	type changePasswordRequest struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "old_password and new_password are required"})
			return
		}
		user, err := models.ChangePassword(ctx, req.OldPassword, req.NewPassword)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": user})
	}
}

// Business

func getBusinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		business, err := models.GetBusiness(ctx)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": business})
	}
}

func createBusinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, user, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if user.Role != models.UserRoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var input models.NewBusiness
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		business, err := models.CreateBusiness(ctx, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": business})
	}
}

func updateBusinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var input models.NewBusiness
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		business, err := models.UpdateBusiness(ctx, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": business})
	}
}

// Customers

func createCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		customer, err := models.CreateCustomer(ctx, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": customer})
	}
}

func updateCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		customer, err := models.UpdateCustomer(ctx, id, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": customer})
	}
}

func deleteCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		customer, err := models.DeleteCustomer(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": customer})
	}
}

func getCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		customer, err := models.GetCustomer(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": customer})
	}
}

func listCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		name := utils.NilIfEmpty(c.Query("name"))
		customers, err := models.GetCustomers(ctx, name)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": customers})
	}
}

// Shipments

func createShipmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var input models.NewShipment
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		shipment, err := models.CreateShipment(ctx, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": shipment})
	}
}

func updateShipmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input models.NewShipment
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		shipment, err := models.UpdateShipment(ctx, id, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": shipment})
	}
}

func deleteShipmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		shipment, err := models.DeleteShipment(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": shipment})
	}
}

func getShipmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		shipment, err := models.GetShipment(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": shipment})
	}
}

func listShipmentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var status *models.ShipmentStatus
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			s := models.ShipmentStatus(raw)
			status = &s
		}
		var direction *models.ShipmentDirection
		if raw := strings.TrimSpace(c.Query("direction")); raw != "" {
			d := models.ShipmentDirection(raw)
			direction = &d
		}
		containerNumber := utils.NilIfEmpty(c.Query("container_number"))
		shipments, err := models.GetShipments(ctx, status, direction, containerNumber)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": shipments})
	}
}

// Clearance records

func createClearanceRecordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var input models.NewClearanceRecord
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		record, err := models.CreateClearanceRecord(ctx, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": record})
	}
}

func updateClearanceRecordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input models.NewClearanceRecord
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		record, err := models.UpdateClearanceRecord(ctx, id, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": record})
	}
}

func deleteClearanceRecordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		record, err := models.DeleteClearanceRecord(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": record})
	}
}

func getClearanceRecordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		record, err := models.GetClearanceRecord(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": record})
	}
}

func listClearanceRecordsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var shipmentId *int
		if raw := strings.TrimSpace(c.Query("shipment_id")); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil || id <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shipment_id"})
				return
			}
			shipmentId = &id
		}
		records, err := models.GetClearanceRecords(ctx, shipmentId)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": records})
	}
}

// Invoices

func createInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var input models.NewInvoice
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		invoice, err := models.CreateInvoice(ctx, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": invoice})
	}
}

func updateInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input models.NewInvoice
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		invoice, err := models.UpdateInvoice(ctx, id, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": invoice})
	}
}

func invoiceTransitionHandler(transition func(context.Context, int) (*models.Invoice, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		invoice, err := transition(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": invoice})
	}
}

func deleteInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		invoice, err := models.DeleteInvoice(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": invoice})
	}
}

func getInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		invoice, err := models.GetInvoice(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": invoice})
	}
}

func listInvoicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var customerId, shipmentId *int
		for _, q := range []struct {
			name string
			dest **int
		}{
			{"customer_id", &customerId},
			{"shipment_id", &shipmentId},
		} {
			raw := strings.TrimSpace(c.Query(q.name))
			if raw == "" {
				continue
			}
			id, err := strconv.Atoi(raw)
			if err != nil || id <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + q.name})
				return
			}
			*q.dest = &id
		}
		var status *models.InvoiceStatus
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			s := models.InvoiceStatus(raw)
			status = &s
		}
		invoices, err := models.GetInvoices(ctx, customerId, shipmentId, status)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": invoices})
	}
}

// Messages

func createMessageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var input models.NewMessage
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		message, err := models.CreateMessage(ctx, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": message})
	}
}

func markMessageReadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		message, err := models.MarkMessageRead(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": message})
	}
}

func deleteMessageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		message, err := models.DeleteMessage(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": message})
	}
}

func listMessagesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		shipmentId, err := strconv.Atoi(c.Param("id"))
		if err != nil || shipmentId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shipment id"})
			return
		}
		unreadOnly := strings.EqualFold(c.Query("unread_only"), "true")
		messages, err := models.GetMessages(ctx, shipmentId, unreadOnly)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": messages})
	}
}

// Number series

func getJobNumberSeriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		series, err := models.GetJobNumberSeries(ctx)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": series})
	}
}

func updateJobNumberSeriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var input models.NewJobNumberSeries
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		series, err := models.UpdateJobNumberSeries(ctx, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": series})
	}
}

// Documents

func getDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		doc, err := models.GetDocument(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": doc})
	}
}

func removeFileHandler() gin.HandlerFunc {
	type removeFileRequest struct {
		FileUrl string `json:"file_url" binding:"required"`
	}
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var req removeFileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file_url is required"})
			return
		}
		resp, err := models.RemoveFile(ctx, req.FileUrl)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
	}
}

// Reports

// shipmentRegisterReportHandler exports the shipment register for a date
// range, either as JSON or as an xlsx attachment.
func shipmentRegisterReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := sessionContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		fromDate, err := time.Parse("2006-01-02", c.Query("from"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be a YYYY-MM-DD date"})
			return
		}
		toDate, err := time.Parse("2006-01-02", c.Query("to"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be a YYYY-MM-DD date"})
			return
		}
		if toDate.Before(fromDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
			return
		}

		rows, err := reports.GetShipmentRegisterReport(ctx, fromDate, toDate)
		if err != nil {
			respondModelError(c, err)
			return
		}

		if strings.EqualFold(c.DefaultQuery("format", "json"), "xlsx") {
			filename := "shipment_register_" + fromDate.Format("20060102") + "_" + toDate.Format("20060102") + ".xlsx"
			c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
			c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			if err := reports.WriteShipmentRegisterExcel(c.Writer, rows); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write report"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
	}
}
