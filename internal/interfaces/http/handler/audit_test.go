package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	inventoryapp "github.com/dishware/backend/internal/application/inventory"
	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/dishware/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditHandlerFixture struct {
	handler   *AuditHandler
	itemRepo  *mockItemRepository
	moveRepo  *mockMovementRepository
	auditRepo *mockAuditRepository
	outletID  uuid.UUID
	userID    uuid.UUID
	role      inventory.Role
	router    *gin.Engine
}

func newAuditHandlerFixture(t *testing.T, role inventory.Role) *auditHandlerFixture {
	t.Helper()

	itemRepo := newMockItemRepository()
	moveRepo := newMockMovementRepository()
	auditRepo := newMockAuditRepository()
	scope := inventoryapp.NewNoOpTransactionScope(itemRepo, moveRepo, newMockAllocationRepository(), auditRepo)
	service := inventoryapp.NewAuditService(scope, auditRepo, itemRepo)
	h := NewAuditHandler(service)

	f := &auditHandlerFixture{
		handler:   h,
		itemRepo:  itemRepo,
		moveRepo:  moveRepo,
		auditRepo: auditRepo,
		outletID:  uuid.New(),
		userID:    uuid.New(),
		role:      role,
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		setJWTContext(c, f.outletID, f.userID, f.role)
	})
	router.POST("/audits", h.CreateAudit)
	router.GET("/audits", h.ListAudits)
	router.GET("/audits/:id", h.GetAudit)
	router.POST("/audits/:id/start", h.StartCounting)
	router.POST("/audits/:id/counts", h.RecordCount)
	router.POST("/audits/:id/lines/:itemId/review", h.ReviewLine)
	router.POST("/audits/:id/submit", h.SubmitAudit)
	router.POST("/audits/:id/approve", h.ApproveAudit)
	router.POST("/audits/:id/reject", h.RejectAudit)
	f.router = router
	return f
}

func (f *auditHandlerFixture) storeItem(t *testing.T, name string, available int) *inventory.Item {
	t.Helper()
	item, err := inventory.NewItem(f.outletID, name, "plate", "ceramic", "piece")
	require.NoError(t, err)
	require.NoError(t, item.SetReplacementCost(decimal.NewFromInt(5)))
	require.NoError(t, item.Activate())
	if available > 0 {
		require.NoError(t, item.ApplyInflow(available, time.Now()))
	}
	f.itemRepo.items[item.ID] = item
	return item
}

func (f *auditHandlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// createCountingAudit drives an audit through create and start via the API
func (f *auditHandlerFixture) createCountingAudit(t *testing.T, period string) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/audits", inventoryapp.CreateAuditRequest{Period: period})
	require.Equal(t, http.StatusCreated, w.Code)
	auditID := decodeData(t, w)["id"].(string)

	w = f.do(t, http.MethodPost, "/audits/"+auditID+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	return auditID
}

func TestAuditHandler_CreateAudit(t *testing.T) {
	f := newAuditHandlerFixture(t, inventory.RoleOperator)
	f.storeItem(t, "Dinner Plate", 40)
	f.storeItem(t, "Soup Bowl", 25)

	w := f.do(t, http.MethodPost, "/audits", inventoryapp.CreateAuditRequest{Period: "2026-09"})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "DRAFT", data["status"])
	assert.Equal(t, "2026-09", data["period"])
	assert.Equal(t, float64(2), data["items_total"])

	lines := data["lines"].([]interface{})
	require.Len(t, lines, 2)
	first := lines[0].(map[string]interface{})
	assert.Equal(t, "Dinner Plate", first["item_name"])
	assert.Equal(t, float64(40), first["system_quantity"])
}

func TestAuditHandler_CreateAudit_DuplicatePeriod(t *testing.T) {
	f := newAuditHandlerFixture(t, inventory.RoleOperator)
	f.storeItem(t, "Fork", 10)

	w := f.do(t, http.MethodPost, "/audits", inventoryapp.CreateAuditRequest{Period: "2026-09"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/audits", inventoryapp.CreateAuditRequest{Period: "2026-09"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuditHandler_CreateAudit_InvalidPeriod(t *testing.T) {
	f := newAuditHandlerFixture(t, inventory.RoleOperator)

	w := f.do(t, http.MethodPost, "/audits", inventoryapp.CreateAuditRequest{Period: "2026/09"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditHandler_CountAndAutoApprove(t *testing.T) {
	f := newAuditHandlerFixture(t, inventory.RoleOperator)
	item := f.storeItem(t, "Wine Glass", 30)
	auditID := f.createCountingAudit(t, "2026-09")

	// counted quantity matches plus a small surplus: no shortage anywhere
	w := f.do(t, http.MethodPost, "/audits/"+auditID+"/counts", inventoryapp.RecordAuditCountRequest{
		ItemID:           item.ID,
		PhysicalQuantity: 32,
		ReasonCode:       "FOUND_IN_STORAGE",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(1), data["items_counted"])

	w = f.do(t, http.MethodPost, "/audits/"+auditID+"/submit", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Equal(t, "APPROVED", data["status"])
	assert.Equal(t, true, data["auto_approved"])

	// the surplus came back through the ledger as an adjustment
	require.Len(t, f.moveRepo.movements, 1)
	adj := f.moveRepo.movements[0]
	assert.Equal(t, inventory.MovementCategoryAdjustment, adj.Category)
	assert.Equal(t, inventory.SubtypeAdjustmentIncrease, adj.Subtype)
	assert.Equal(t, 2, adj.Quantity)
	assert.Equal(t, 32, item.AvailableQuantity)
}

func TestAuditHandler_ShortageNeedsApproval(t *testing.T) {
	f := newAuditHandlerFixture(t, inventory.RoleAdmin)
	item := f.storeItem(t, "Teapot", 20)
	auditID := f.createCountingAudit(t, "2026-09")

	w := f.do(t, http.MethodPost, "/audits/"+auditID+"/counts", inventoryapp.RecordAuditCountRequest{
		ItemID:           item.ID,
		PhysicalQuantity: 17,
		ReasonCode:       "BREAKAGE",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/audits/"+auditID+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "PENDING_APPROVAL", data["status"])
	assert.Equal(t, false, data["auto_approved"])
	// nothing hits the ledger until approval
	assert.Empty(t, f.moveRepo.movements)

	w = f.do(t, http.MethodPost, "/audits/"+auditID+"/approve", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Equal(t, "APPROVED", data["status"])

	require.Len(t, f.moveRepo.movements, 1)
	adj := f.moveRepo.movements[0]
	assert.Equal(t, inventory.SubtypeAdjustmentDecrease, adj.Subtype)
	assert.Equal(t, 3, adj.Quantity)
	assert.Equal(t, 17, item.AvailableQuantity)
}

func TestAuditHandler_ShortageWithoutReason_Rejected(t *testing.T) {
	f := newAuditHandlerFixture(t, inventory.RoleOperator)
	item := f.storeItem(t, "Saucer", 12)
	auditID := f.createCountingAudit(t, "2026-09")

	w := f.do(t, http.MethodPost, "/audits/"+auditID+"/counts", inventoryapp.RecordAuditCountRequest{
		ItemID:           item.ID,
		PhysicalQuantity: 9,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// submission is blocked until every variance line carries a reason
	w = f.do(t, http.MethodPost, "/audits/"+auditID+"/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeBusinessRule, decodeError(t, w).Code)
	assert.Empty(t, f.moveRepo.movements)
}

func TestAuditHandler_Approve_RequiresAdmin(t *testing.T) {
	f := newAuditHandlerFixture(t, inventory.RoleOperator)
	item := f.storeItem(t, "Platter", 15)
	auditID := f.createCountingAudit(t, "2026-09")

	w := f.do(t, http.MethodPost, "/audits/"+auditID+"/counts", inventoryapp.RecordAuditCountRequest{
		ItemID:           item.ID,
		PhysicalQuantity: 13,
		ReasonCode:       "LOSS",
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodPost, "/audits/"+auditID+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/audits/"+auditID+"/approve", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuditHandler_Reject_IsTerminal(t *testing.T) {
	f := newAuditHandlerFixture(t, inventory.RoleAdmin)
	item := f.storeItem(t, "Carafe", 10)
	auditID := f.createCountingAudit(t, "2026-09")

	w := f.do(t, http.MethodPost, "/audits/"+auditID+"/counts", inventoryapp.RecordAuditCountRequest{
		ItemID:           item.ID,
		PhysicalQuantity: 8,
		ReasonCode:       "BREAKAGE",
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodPost, "/audits/"+auditID+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/audits/"+auditID+"/reject", inventoryapp.RejectAuditRequest{
		Reason: "Recount the damaged shelf",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "REJECTED", data["status"])
	assert.Equal(t, "Recount the damaged shelf", data["rejection_reason"])
	assert.Empty(t, f.moveRepo.movements)

	// a rejected audit is closed; the shortage is investigated in a fresh one
	w = f.do(t, http.MethodPost, "/audits/"+auditID+"/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAuditHandler_Reject_RequiresReason(t *testing.T) {
	f := newAuditHandlerFixture(t, inventory.RoleAdmin)

	w := f.do(t, http.MethodPost, "/audits/"+uuid.NewString()+"/reject", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditHandler_ReviewLine(t *testing.T) {
	f := newAuditHandlerFixture(t, inventory.RoleOperator)
	item := f.storeItem(t, "Gravy Boat", 6)
	auditID := f.createCountingAudit(t, "2026-09")

	w := f.do(t, http.MethodPost, "/audits/"+auditID+"/counts", inventoryapp.RecordAuditCountRequest{
		ItemID:           item.ID,
		PhysicalQuantity: 6,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/audits/"+auditID+"/lines/"+item.ID.String()+"/review", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	lines := decodeData(t, w)["lines"].([]interface{})
	require.Len(t, lines, 1)
	assert.Equal(t, "REVIEWED", lines[0].(map[string]interface{})["status"])
}

func TestAuditHandler_GetAndList(t *testing.T) {
	f := newAuditHandlerFixture(t, inventory.RoleOperator)
	f.storeItem(t, "Fork", 10)

	w := f.do(t, http.MethodPost, "/audits", inventoryapp.CreateAuditRequest{Period: "2026-09"})
	require.Equal(t, http.StatusCreated, w.Code)
	auditID := decodeData(t, w)["id"].(string)

	w = f.do(t, http.MethodGet, "/audits/"+auditID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, auditID, decodeData(t, w)["id"])

	w = f.do(t, http.MethodGet, "/audits?status=DRAFT", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.([]interface{}), 1)

	w = f.do(t, http.MethodGet, "/audits/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuditHandler_SecondInFlightAuditBlocked(t *testing.T) {
	f := newAuditHandlerFixture(t, inventory.RoleOperator)
	f.storeItem(t, "Knife", 10)
	f.createCountingAudit(t, "2026-08")

	w := f.do(t, http.MethodPost, "/audits", inventoryapp.CreateAuditRequest{Period: "2026-09"})

	assert.Equal(t, http.StatusConflict, w.Code)
}
