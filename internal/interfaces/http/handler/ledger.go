package handler

import (
	inventoryapp "github.com/dishware/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles movement ledger API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *inventoryapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RecordMovement godoc
// @ID           recordMovement
// @Summary      Record a stock movement
// @Description  Validates and appends one ledger entry, applying its effect to the item's pools in one transaction
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.RecordMovementRequest true "Movement data"
// @Success      201 {object} APIResponse[inventoryapp.RecordMovementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /movements [post]
func (h *LedgerHandler) RecordMovement(c *gin.Context) {
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

	var req inventoryapp.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.ledgerService.RecordMovement(c.Request.Context(), outletID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// GetMovement godoc
// @ID           getMovement
// @Summary      Get a ledger entry
// @Description  Returns one movement by ID
// @Tags         movements
// @Produce      json
// @Param        id path string true "Movement ID"
// @Success      200 {object} APIResponse[inventoryapp.MovementResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /movements/{id} [get]
func (h *LedgerHandler) GetMovement(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	movementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid movement ID")
		return
	}

	movement, err := h.ledgerService.GetMovement(c.Request.Context(), outletID, movementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, movement)
}

// ListMovements godoc
// @ID           listMovements
// @Summary      List ledger entries
// @Description  Returns movements for the current outlet with optional item, category, reference and date filters
// @Tags         movements
// @Produce      json
// @Param        item_id query string false "Item ID filter"
// @Param        category query string false "Category filter" Enums(INFLOW, OUTFLOW, RETURN, WRITEOFF, ADJUSTMENT, REPAIR)
// @Param        reference_type query string false "Reference type filter" Enums(SUBSCRIPTION, EVENT, MANUAL)
// @Param        start_date query string false "Start date (YYYY-MM-DD)"
// @Param        end_date query string false "End date (YYYY-MM-DD)"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]inventoryapp.MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /movements [get]
func (h *LedgerHandler) ListMovements(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}

	var filter inventoryapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	movements, total, err := h.ledgerService.ListMovements(c.Request.Context(), outletID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// ListItemMovements godoc
// @ID           listItemMovements
// @Summary      List movements for an item
// @Description  Returns the ledger entries of one item, newest first
// @Tags         movements
// @Produce      json
// @Param        id path string true "Item ID"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]inventoryapp.MovementResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id}/movements [get]
func (h *LedgerHandler) ListItemMovements(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var filter inventoryapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	movements, total, err := h.ledgerService.ListItemMovements(c.Request.Context(), outletID, itemID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// GetBalances godoc
// @ID           getItemBalances
// @Summary      Get item balances
// @Description  Returns the materialized pools next to a fresh ledger replay for drift inspection
// @Tags         balances
// @Produce      json
// @Param        id path string true "Item ID"
// @Success      200 {object} APIResponse[inventoryapp.BalancesResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id}/balances [get]
func (h *LedgerHandler) GetBalances(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	balances, err := h.ledgerService.GetBalances(c.Request.Context(), outletID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balances)
}

// RebuildBalances godoc
// @ID           rebuildItemBalances
// @Summary      Rebuild item balances
// @Description  Replays the full ledger of one item and overwrites the materialized pools with the result
// @Tags         balances
// @Produce      json
// @Param        id path string true "Item ID"
// @Success      200 {object} APIResponse[inventoryapp.BalancesResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id}/balances/rebuild [post]
func (h *LedgerHandler) RebuildBalances(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	balances, err := h.ledgerService.RebuildBalances(c.Request.Context(), outletID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balances)
}
