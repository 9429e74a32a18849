package handler

import (
	inventoryapp "github.com/dishware/backend/internal/application/inventory"
	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AllocationHandler handles allocation tracking API endpoints
type AllocationHandler struct {
	BaseHandler
	allocationService *inventoryapp.AllocationService
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(allocationService *inventoryapp.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService}
}

// referenceFromParams parses the reference type and ID path parameters
func referenceFromParams(c *gin.Context) (inventory.Reference, bool) {
	refType := inventory.ReferenceType(c.Param("type"))
	if refType != inventory.ReferenceTypeSubscription && refType != inventory.ReferenceTypeEvent {
		return inventory.Reference{}, false
	}
	refID, err := uuid.Parse(c.Param("refId"))
	if err != nil {
		return inventory.Reference{}, false
	}
	return inventory.Reference{Type: refType, ID: refID}, true
}

// GetReferenceOutstanding godoc
// @ID           getReferenceOutstanding
// @Summary      Get outstanding stock for a reference
// @Description  Returns what one subscription or event still holds, item by item, derived from the ledger
// @Tags         allocations
// @Produce      json
// @Param        type path string true "Reference type" Enums(SUBSCRIPTION, EVENT)
// @Param        refId path string true "Reference ID"
// @Success      200 {object} APIResponse[inventoryapp.OutstandingResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /allocations/references/{type}/{refId} [get]
func (h *AllocationHandler) GetReferenceOutstanding(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	ref, ok := referenceFromParams(c)
	if !ok {
		h.BadRequest(c, "Invalid reference")
		return
	}

	outstanding, err := h.allocationService.OutstandingForReference(c.Request.Context(), outletID, ref)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, outstanding)
}

// CheckReferenceClosable godoc
// @ID           checkReferenceClosable
// @Summary      Check whether a reference can be closed
// @Description  Reports whether a subscription or event has returned everything it holds
// @Tags         allocations
// @Produce      json
// @Param        type path string true "Reference type" Enums(SUBSCRIPTION, EVENT)
// @Param        refId path string true "Reference ID"
// @Success      200 {object} APIResponse[ClosableData]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /allocations/references/{type}/{refId}/closable [get]
func (h *AllocationHandler) CheckReferenceClosable(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	ref, ok := referenceFromParams(c)
	if !ok {
		h.BadRequest(c, "Invalid reference")
		return
	}

	closable, held, err := h.allocationService.CheckReferenceClosable(c.Request.Context(), outletID, ref)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ClosableData{Closable: closable, OutstandingHeld: held})
}

// CloseReference godoc
// @ID           closeReference
// @Summary      Close a cancelled reference
// @Description  Deactivates the remaining allocation rows of a fully resolved subscription or event
// @Tags         allocations
// @Produce      json
// @Param        type path string true "Reference type" Enums(SUBSCRIPTION, EVENT)
// @Param        refId path string true "Reference ID"
// @Success      200 {object} APIResponse[CloseReferenceData]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /allocations/references/{type}/{refId}/close [post]
func (h *AllocationHandler) CloseReference(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	ref, ok := referenceFromParams(c)
	if !ok {
		h.BadRequest(c, "Invalid reference")
		return
	}

	closed, err := h.allocationService.CloseReference(c.Request.Context(), outletID, ref)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CloseReferenceData{AllocationsClosed: closed})
}

// CloseReferenceData reports the result of closing a reference
// @Description Reference close result
type CloseReferenceData struct {
	AllocationsClosed int `json:"allocations_closed"`
}

// ClosableData reports whether a reference still holds stock
// @Description Reference closability check result
type ClosableData struct {
	Closable        bool `json:"closable"`
	OutstandingHeld int  `json:"outstanding_held"`
}

// ListItemAllocations godoc
// @ID           listItemAllocations
// @Summary      List active allocations of an item
// @Description  Returns the active allocations of one item with ledger-derived outstanding quantities
// @Tags         allocations
// @Produce      json
// @Param        id path string true "Item ID"
// @Success      200 {object} APIResponse[[]inventoryapp.AllocationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id}/allocations [get]
func (h *AllocationHandler) ListItemAllocations(c *gin.Context) {
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

	allocations, err := h.allocationService.OutstandingForItem(c.Request.Context(), outletID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, allocations)
}
