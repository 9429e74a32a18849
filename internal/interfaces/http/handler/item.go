package handler

import (
	"context"

	inventoryapp "github.com/dishware/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ItemHandler handles item registry API endpoints
type ItemHandler struct {
	BaseHandler
	itemService *inventoryapp.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService *inventoryapp.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// CreateItem godoc
// @ID           createItem
// @Summary      Register a new item
// @Description  Registers a new dishware item in DRAFT lifecycle for the current outlet
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateItemRequest true "Item data"
// @Success      201 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items [post]
func (h *ItemHandler) CreateItem(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user context")
		return
	}

	var req inventoryapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), outletID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, item)
}

// GetItem godoc
// @ID           getItem
// @Summary      Get an item
// @Description  Returns one item with its balance pools
// @Tags         items
// @Produce      json
// @Param        id path string true "Item ID"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id} [get]
func (h *ItemHandler) GetItem(c *gin.Context) {
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

	item, err := h.itemService.GetByID(c.Request.Context(), outletID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// ListItems godoc
// @ID           listItems
// @Summary      List items
// @Description  Returns items for the current outlet with optional lifecycle, category and stock filters
// @Tags         items
// @Produce      json
// @Param        lifecycle query string false "Lifecycle filter" Enums(DRAFT, ACTIVE, DISCONTINUED, ARCHIVED)
// @Param        category query string false "Category filter"
// @Param        search query string false "Name search"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items [get]
func (h *ItemHandler) ListItems(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}

	var filter inventoryapp.ItemListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	items, total, err := h.itemService.List(c.Request.Context(), outletID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// UpdateItem godoc
// @ID           updateItem
// @Summary      Update item master data
// @Description  Updates name, category, material, unit or replacement cost of an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id path string true "Item ID"
// @Param        request body inventoryapp.UpdateItemRequest true "Fields to update"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id} [put]
func (h *ItemHandler) UpdateItem(c *gin.Context) {
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

	var req inventoryapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), outletID, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// ActivateItem godoc
// @ID           activateItem
// @Summary      Activate an item
// @Description  Moves a DRAFT or DISCONTINUED item to ACTIVE
// @Tags         items
// @Produce      json
// @Param        id path string true "Item ID"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id}/activate [post]
func (h *ItemHandler) ActivateItem(c *gin.Context) {
	h.transition(c, h.itemService.Activate)
}

// DiscontinueItem godoc
// @ID           discontinueItem
// @Summary      Discontinue an item
// @Description  Moves an ACTIVE item to DISCONTINUED; existing stock keeps moving through the ledger
// @Tags         items
// @Produce      json
// @Param        id path string true "Item ID"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id}/discontinue [post]
func (h *ItemHandler) DiscontinueItem(c *gin.Context) {
	h.transition(c, h.itemService.Discontinue)
}

// ArchiveItem godoc
// @ID           archiveItem
// @Summary      Archive an item
// @Description  Archives a DISCONTINUED item once all pools are empty
// @Tags         items
// @Produce      json
// @Param        id path string true "Item ID"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id}/archive [post]
func (h *ItemHandler) ArchiveItem(c *gin.Context) {
	h.transition(c, h.itemService.Archive)
}

func (h *ItemHandler) transition(
	c *gin.Context,
	apply func(ctx context.Context, outletID, itemID uuid.UUID) (*inventoryapp.ItemResponse, error),
) {
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

	item, err := apply(c.Request.Context(), outletID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// DeleteItem godoc
// @ID           deleteItem
// @Summary      Delete a draft item
// @Description  Deletes an item that never left DRAFT and has no ledger history
// @Tags         items
// @Produce      json
// @Param        id path string true "Item ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id} [delete]
func (h *ItemHandler) DeleteItem(c *gin.Context) {
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

	if err := h.itemService.Delete(c.Request.Context(), outletID, itemID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ArchiveIdleItems godoc
// @ID           archiveIdleItems
// @Summary      Archive idle items
// @Description  Archives every discontinued item with empty pools and no recent movement
// @Tags         items
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Security     BearerAuth
// @Router       /items/archive-idle [post]
func (h *ItemHandler) ArchiveIdleItems(c *gin.Context) {
	outletID, err := getOutletID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid outlet context")
		return
	}

	archived, err := h.itemService.ArchiveIdleItems(c.Request.Context(), outletID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CountData{Count: int64(archived)})
}
