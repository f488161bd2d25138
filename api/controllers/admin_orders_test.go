package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	orderssvc "github.com/gardenaqua/gardenaqua-backend/internal/orders"
	"github.com/gardenaqua/gardenaqua-backend/pkg/enums"
	pkgerrors "github.com/gardenaqua/gardenaqua-backend/pkg/errors"
)

func TestAdminOrderStatusSuccess(t *testing.T) {
	svc := &stubOrdersService{view: &orderssvc.View{OrderNumber: "GA-1A2B3C4D", Status: enums.OrderStatusConfirmed}}
	handler := AdminOrderStatus(svc, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/GA-1A2B3C4D/status", strings.NewReader(`{"status":"confirmed"}`))
	req = withURLParam(req, "orderNumber", "GA-1A2B3C4D")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.updatedTo != enums.OrderStatusConfirmed {
		t.Fatalf("unexpected status passed to service: %s", svc.updatedTo)
	}
}

func TestAdminOrderStatusUnknownValue(t *testing.T) {
	svc := &stubOrdersService{}
	handler := AdminOrderStatus(svc, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/GA-1A2B3C4D/status", strings.NewReader(`{"status":"teleported"}`))
	req = withURLParam(req, "orderNumber", "GA-1A2B3C4D")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminOrderStatusIllegalTransition(t *testing.T) {
	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "invalid status transition")}
	handler := AdminOrderStatus(svc, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/GA-1A2B3C4D/status", strings.NewReader(`{"status":"shipped"}`))
	req = withURLParam(req, "orderNumber", "GA-1A2B3C4D")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
