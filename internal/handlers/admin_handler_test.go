package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campuscanteen/canteen-api/internal/models"
)

// adminDo performs an authenticated admin request.
func (a *testApp) adminDo(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	w, _ := a.doWithHeader(t, method, path, body, "api_key", testAdminKey)
	return w
}

func (a *testApp) doWithHeader(t *testing.T, method, path string, body interface{}, header, value string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	req := httptest.NewRequest(method, path, marshalBody(t, body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(header, value)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w, w.Header().Get("X-Session-Token")
}

func TestAdminRoutes_RequireKey(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, http.MethodGet, "/api/admin/orders", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", w.Code)
	}

	w, _ = app.doWithHeader(t, http.MethodGet, "/api/admin/orders", nil, "api_key", "wrong")
	if w.Code != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", w.Code)
	}
}

func TestAdminHandler_UpdateOrderStatus(t *testing.T) {
	app := newTestApp(t)
	token := app.loggedInSession(t, "CS21B001")
	placed := app.confirmOrder(t, token)

	w := app.adminDo(t, http.MethodPut, "/api/admin/orders/"+placed.ID+"/status", map[string]string{"status": "Ready"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var ord models.Order
	decodeBody(t, w, &ord)
	if ord.Status != models.StatusReady {
		t.Errorf("status = %q, want Ready", ord.Status)
	}

	// The student's own view picks the change up on the next poll.
	w2, _ := app.do(t, http.MethodGet, "/api/orders/"+placed.ID, token, nil)
	var seen models.Order
	decodeBody(t, w2, &seen)
	if seen.Status != models.StatusReady {
		t.Errorf("student view status = %q, want Ready", seen.Status)
	}

	w = app.adminDo(t, http.MethodPut, "/api/admin/orders/"+placed.ID+"/status", map[string]string{"status": "Delivered"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad status: status code = %d, want 400", w.Code)
	}

	w = app.adminDo(t, http.MethodPut, "/api/admin/orders/ORD-missing/status", map[string]string{"status": "Ready"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown order: status = %d, want 404", w.Code)
	}
}

func TestAdminHandler_ListOrders(t *testing.T) {
	app := newTestApp(t)
	token := app.loggedInSession(t, "CS21B001")
	app.confirmOrder(t, token)

	w := app.adminDo(t, http.MethodGet, "/api/admin/orders", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var orders []models.Order
	decodeBody(t, w, &orders)
	if len(orders) != 1 {
		t.Errorf("got %d orders, want 1", len(orders))
	}
}

func TestAdminHandler_MenuCRUD(t *testing.T) {
	app := newTestApp(t)

	w := app.adminDo(t, http.MethodPost, "/api/admin/menu", map[string]interface{}{
		"name": "Masala Dosa", "category": "Indian", "price": 60, "veg": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var item models.MenuItem
	decodeBody(t, w, &item)
	if item.ID == "" || !item.Available {
		t.Fatalf("created item = %+v", item)
	}

	w = app.adminDo(t, http.MethodPut, "/api/admin/menu/"+item.ID, map[string]interface{}{
		"name": "Masala Dosa", "category": "Indian", "price": 70, "veg": true,
	})
	if w.Code != http.StatusOK {
		t.Errorf("update: status = %d, want 200", w.Code)
	}

	// The storefront sees the price change.
	w2, _ := app.do(t, http.MethodGet, "/api/menu/"+item.ID, "", nil)
	var updated models.MenuItem
	decodeBody(t, w2, &updated)
	if updated.Price != 70 {
		t.Errorf("storefront price = %d, want 70", updated.Price)
	}

	w = app.adminDo(t, http.MethodDelete, "/api/admin/menu/"+item.ID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete: status = %d, want 200", w.Code)
	}

	// Soft delete: hidden from the storefront, present in the admin list.
	w2, _ = app.do(t, http.MethodGet, "/api/menu/"+item.ID, "", nil)
	if w2.Code != http.StatusNotFound {
		t.Errorf("storefront after delete: status = %d, want 404", w2.Code)
	}
	w = app.adminDo(t, http.MethodGet, "/api/admin/menu", nil)
	var all []models.MenuItem
	decodeBody(t, w, &all)
	var found bool
	for _, it := range all {
		if it.ID == item.ID {
			found = true
		}
	}
	if !found {
		t.Error("soft-deleted item missing from the admin list")
	}
}

func TestAdminHandler_OfferCRUD(t *testing.T) {
	app := newTestApp(t)

	w := app.adminDo(t, http.MethodPost, "/api/admin/offers", map[string]interface{}{
		"code": "FRESH10", "title": "Fresh Deal", "percentage": 10,
		"validFrom": "2020-01-01", "validUntil": "2099-12-31",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.Offer
	decodeBody(t, w, &created)
	if created.ID == "" || !created.Active {
		t.Fatalf("created offer = %+v", created)
	}

	// The evaluator sees the new code right away.
	w2, token := app.do(t, http.MethodPost, "/api/cart/items", "", map[string]interface{}{"itemId": "m002"})
	if w2.Code != http.StatusOK {
		t.Fatalf("add failed: %d", w2.Code)
	}
	w2, _ = app.do(t, http.MethodPost, "/api/cart/offer", token, map[string]string{"code": "FRESH10"})
	if w2.Code != http.StatusOK {
		t.Errorf("apply new code: status = %d, want 200: %s", w2.Code, w2.Body.String())
	}

	w = app.adminDo(t, http.MethodPost, "/api/admin/offers", map[string]interface{}{
		"code": "BAD", "percentage": 150,
		"validFrom": "2020-01-01", "validUntil": "2099-12-31",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid percentage: status = %d, want 400", w.Code)
	}

	w = app.adminDo(t, http.MethodPost, "/api/admin/offers", map[string]interface{}{
		"code": "BAD", "percentage": 10,
		"validFrom": "not-a-date", "validUntil": "2099-12-31",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date: status = %d, want 400", w.Code)
	}

	w = app.adminDo(t, http.MethodDelete, "/api/admin/offers/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete: status = %d, want 200", w.Code)
	}

	// Once deleted the code stops applying.
	w2, _ = app.do(t, http.MethodPost, "/api/cart/offer", token, map[string]string{"code": "FRESH10"})
	if w2.Code != http.StatusNotFound {
		t.Errorf("apply deleted code: status = %d, want 404", w2.Code)
	}
}

func TestAdminHandler_Complaints(t *testing.T) {
	app := newTestApp(t)
	token := app.loggedInSession(t, "CS21B001")

	w, _ := app.do(t, http.MethodPost, "/api/complaints", token, map[string]string{
		"subject": "Cold food", "description": "Served cold.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("file failed: %d", w.Code)
	}
	var filed models.Complaint
	decodeBody(t, w, &filed)

	w2 := app.adminDo(t, http.MethodGet, "/api/admin/complaints", nil)
	var queue []models.Complaint
	decodeBody(t, w2, &queue)
	if len(queue) != 1 {
		t.Fatalf("admin queue has %d complaints, want 1", len(queue))
	}

	w2 = app.adminDo(t, http.MethodPut, "/api/admin/complaints/"+filed.ID+"/status", map[string]string{"status": "Resolved"})
	if w2.Code != http.StatusOK {
		t.Fatalf("update: status = %d, want 200: %s", w2.Code, w2.Body.String())
	}
	var updated models.Complaint
	decodeBody(t, w2, &updated)
	if updated.Status != models.ComplaintResolved {
		t.Errorf("status = %q, want Resolved", updated.Status)
	}

	w2 = app.adminDo(t, http.MethodPut, "/api/admin/complaints/"+filed.ID+"/status", map[string]string{"status": "Escalated"})
	if w2.Code != http.StatusBadRequest {
		t.Errorf("bad status: status code = %d, want 400", w2.Code)
	}
}

func TestAdminHandler_ListStudents(t *testing.T) {
	app := newTestApp(t)
	app.loggedInSession(t, "CS21B001")
	app.loggedInSession(t, "CS21B002")

	w := app.adminDo(t, http.MethodGet, "/api/admin/students", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var students []models.StudentAccount
	decodeBody(t, w, &students)
	if len(students) != 2 {
		t.Errorf("got %d students, want 2", len(students))
	}
}
