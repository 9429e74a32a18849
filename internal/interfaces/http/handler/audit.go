package handler

import (
	"context"

	inventoryapp "github.com/dishware/backend/internal/application/inventory"
	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditHandler handles physical-count audit API endpoints
type AuditHandler struct {
	BaseHandler
	auditService *inventoryapp.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *inventoryapp.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// CreateAudit godoc
// @ID           createAudit
// @Summary      Open a physical-count audit
// @Description  Opens a DRAFT audit for a period, snapshotting system quantities of the selected items
// @Tags         audits
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateAuditRequest true "Audit data"
// @Success      201 {object} APIResponse[inventoryapp.AuditResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audits [post]
func (h *AuditHandler) CreateAudit(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user context")
		return
	}

	var req inventoryapp.CreateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	audit, err := h.auditService.Create(c.Request.Context(), outletID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, audit)
}

// GetAudit godoc
// @ID           getAudit
// @Summary      Get an audit
// @Description  Returns one audit with its lines
// @Tags         audits
// @Produce      json
// @Param        id path string true "Audit ID"
// @Success      200 {object} APIResponse[inventoryapp.AuditResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audits/{id} [get]
func (h *AuditHandler) GetAudit(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	auditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}

	audit, err := h.auditService.GetByID(c.Request.Context(), outletID, auditID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, audit)
}

// ListAudits godoc
// @ID           listAudits
// @Summary      List audits
// @Description  Returns audits for the current outlet, newest period first
// @Tags         audits
// @Produce      json
// @Param        status query string false "Status filter" Enums(DRAFT, COUNTING, PENDING_APPROVAL, APPROVED, REJECTED)
// @Param        period query string false "Period filter (YYYY-MM)"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]inventoryapp.AuditResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audits [get]
func (h *AuditHandler) ListAudits(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}

	var filter inventoryapp.AuditListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	audits, total, err := h.auditService.List(c.Request.Context(), outletID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, audits, total, filter.Page, filter.PageSize)
}

// StartCounting godoc
// @ID           startAuditCounting
// @Summary      Start counting
// @Description  Moves a DRAFT audit to COUNTING so physical counts can be recorded
// @Tags         audits
// @Produce      json
// @Param        id path string true "Audit ID"
// @Success      200 {object} APIResponse[inventoryapp.AuditResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audits/{id}/start [post]
func (h *AuditHandler) StartCounting(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	auditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}

	audit, err := h.auditService.StartCounting(c.Request.Context(), outletID, auditID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, audit)
}

// RecordCount godoc
// @ID           recordAuditCount
// @Summary      Record a physical count
// @Description  Records the counted quantity for one line; negative variances require a reason code
// @Tags         audits
// @Accept       json
// @Produce      json
// @Param        id path string true "Audit ID"
// @Param        request body inventoryapp.RecordAuditCountRequest true "Count data"
// @Success      200 {object} APIResponse[inventoryapp.AuditResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audits/{id}/counts [post]
func (h *AuditHandler) RecordCount(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	auditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}

	var req inventoryapp.RecordAuditCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	audit, err := h.auditService.RecordCount(c.Request.Context(), outletID, auditID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, audit)
}

// ReviewLine godoc
// @ID           reviewAuditLine
// @Summary      Mark an audit line reviewed
// @Description  Marks one counted line as reviewed before submission
// @Tags         audits
// @Produce      json
// @Param        id path string true "Audit ID"
// @Param        itemId path string true "Item ID"
// @Success      200 {object} APIResponse[inventoryapp.AuditResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audits/{id}/lines/{itemId}/review [post]
func (h *AuditHandler) ReviewLine(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	auditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	audit, err := h.auditService.ReviewLine(c.Request.Context(), outletID, auditID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, audit)
}

// SubmitAudit godoc
// @ID           submitAudit
// @Summary      Submit an audit
// @Description  Submits a fully counted audit; audits without negative variance approve automatically
// @Tags         audits
// @Produce      json
// @Param        id path string true "Audit ID"
// @Success      200 {object} APIResponse[inventoryapp.AuditResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audits/{id}/submit [post]
func (h *AuditHandler) SubmitAudit(c *gin.Context) {
	h.resolve(c, h.auditService.Submit)
}

// ApproveAudit godoc
// @ID           approveAudit
// @Summary      Approve an audit
// @Description  Approves a pending audit and emits adjustment movements for its variances; admin only
// @Tags         audits
// @Produce      json
// @Param        id path string true "Audit ID"
// @Success      200 {object} APIResponse[inventoryapp.AuditResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audits/{id}/approve [post]
func (h *AuditHandler) ApproveAudit(c *gin.Context) {
	h.resolve(c, h.auditService.Approve)
}

func (h *AuditHandler) resolve(
	c *gin.Context,
	apply func(ctx context.Context, outletID, auditID uuid.UUID, actor inventory.Actor) (*inventoryapp.AuditResponse, error),
) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	auditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user context")
		return
	}

	audit, err := apply(c.Request.Context(), outletID, auditID, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, audit)
}

// RejectAudit godoc
// @ID           rejectAudit
// @Summary      Reject an audit
// @Description  Rejects a pending audit with a mandatory reason, sending it back to COUNTING; admin only
// @Tags         audits
// @Accept       json
// @Produce      json
// @Param        id path string true "Audit ID"
// @Param        request body inventoryapp.RejectAuditRequest true "Rejection reason"
// @Success      200 {object} APIResponse[inventoryapp.AuditResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audits/{id}/reject [post]
func (h *AuditHandler) RejectAudit(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	auditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user context")
		return
	}

	var req inventoryapp.RejectAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	audit, err := h.auditService.Reject(c.Request.Context(), outletID, auditID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, audit)
}
