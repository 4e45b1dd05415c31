package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campuscanteen/canteen-api/internal/account"
	"github.com/campuscanteen/canteen-api/internal/cart"
	"github.com/campuscanteen/canteen-api/internal/catalog"
	"github.com/campuscanteen/canteen-api/internal/complaint"
	"github.com/campuscanteen/canteen-api/internal/config"
	"github.com/campuscanteen/canteen-api/internal/events"
	"github.com/campuscanteen/canteen-api/internal/middleware"
	"github.com/campuscanteen/canteen-api/internal/models"
	"github.com/campuscanteen/canteen-api/internal/offer"
	"github.com/campuscanteen/canteen-api/internal/order"
	"github.com/campuscanteen/canteen-api/internal/payment"
	"github.com/campuscanteen/canteen-api/internal/repository"
	"github.com/campuscanteen/canteen-api/internal/session"
	"github.com/campuscanteen/canteen-api/pkg/logger"
)

// testApp wires the full route surface against in-memory stores, the
// same shape the server assembles at startup.
type testApp struct {
	router   *chi.Mux
	sessions session.Store
	orders   *order.Manager
	accounts *account.Store
	catalog  *catalog.Catalog
}

const testAdminKey = "test-admin-key"

func testSeed() *catalog.Seed {
	wideOpen := func(code, title string, pct int) models.Offer {
		return models.Offer{
			ID: "c-" + code, Code: code, Title: title, Percentage: pct,
			ValidFrom:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			ValidUntil: time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC),
			Active:     true,
		}
	}
	return &catalog.Seed{
		MenuItems: []models.MenuItem{
			{ID: "m001", Name: "Idly", Category: "Indian", Price: 20, Veg: true, Available: true},
			{ID: "m002", Name: "Chicken Biryani", Category: "Indian", Price: 180, Available: true},
			{ID: "m003", Name: "Gone Dish", Category: "Indian", Price: 50, Available: false},
		},
		Offers: []models.Offer{
			wideOpen("VEGSTART", "Veg Starter Deal", 10),
			wideOpen("SNACKS50", "Snack Attack", 20),
		},
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := logger.New("error")

	sessions := session.NewMemoryStore()
	cat := catalog.New(nil, testSeed(), log)
	bus := events.NewBus()

	accounts := account.NewStore(repository.NewInMemoryStudentRepository(), log)
	orders := order.NewManager(repository.NewInMemoryOrderRepository(), bus, log)
	engine := cart.NewEngine(sessions, orders, bus, log)
	evaluator := offer.NewEvaluator(cat, sessions, log)
	complaints := complaint.NewService(repository.NewInMemoryComplaintRepository(), log)
	settlement := payment.NewSettlement(orders, accounts, sessions, bus, payment.NewQREncoder(64), 0, log)

	menuHandler := NewMenuHandler(cat, log)
	cartHandler := NewCartHandler(engine, cat, log)
	offerHandler := NewOfferHandler(cat, evaluator, log)
	orderHandler := NewOrderHandler(orders, log)
	paymentHandler := NewPaymentHandler(settlement, log)
	studentHandler := NewStudentHandler(accounts, sessions, log)
	complaintHandler := NewComplaintHandler(complaints, log)
	adminHandler := NewAdminHandler(orders, cat, evaluator, accounts, complaints, log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.WithSession(sessions, log))

		r.Get("/menu", menuHandler.List)
		r.Get("/menu/{itemID}", menuHandler.Get)
		r.Get("/offers", offerHandler.ListActive)

		r.Get("/cart", cartHandler.Get)
		r.Post("/cart/items", cartHandler.AddItem)
		r.Put("/cart/items/{itemID}", cartHandler.SetQuantity)
		r.Delete("/cart/items/{itemID}", cartHandler.RemoveItem)
		r.Post("/cart/offer", offerHandler.Apply)
		r.Post("/cart/confirm", cartHandler.Confirm)

		r.Get("/orders", orderHandler.ListMine)
		r.Get("/orders/{orderID}", orderHandler.Get)

		r.Post("/payment/redeem", paymentHandler.Redeem)
		r.Post("/payment/settle", paymentHandler.Settle)

		r.Post("/students/register", studentHandler.Register)
		r.Post("/students/login", studentHandler.Login)
		r.Post("/students/logout", studentHandler.Logout)
		r.Get("/students/me", studentHandler.Me)

		r.Post("/complaints", complaintHandler.Create)
		r.Get("/complaints", complaintHandler.ListMine)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminKeyAuth(config.AuthConfig{AdminAPIKeys: []string{testAdminKey}}))

			r.Get("/orders", adminHandler.ListOrders)
			r.Put("/orders/{orderID}/status", adminHandler.UpdateOrderStatus)
			r.Get("/menu", adminHandler.ListMenu)
			r.Post("/menu", adminHandler.CreateMenuItem)
			r.Put("/menu/{itemID}", adminHandler.UpdateMenuItem)
			r.Delete("/menu/{itemID}", adminHandler.DeleteMenuItem)
			r.Get("/offers", adminHandler.ListOffers)
			r.Post("/offers", adminHandler.CreateOffer)
			r.Put("/offers/{offerID}", adminHandler.UpdateOffer)
			r.Delete("/offers/{offerID}", adminHandler.DeleteOffer)
			r.Get("/students", adminHandler.ListStudents)
			r.Get("/complaints", adminHandler.ListComplaints)
			r.Put("/complaints/{complaintID}/status", adminHandler.UpdateComplaintStatus)
		})
	})

	return &testApp{
		router:   r,
		sessions: sessions,
		orders:   orders,
		accounts: accounts,
		catalog:  cat,
	}
}

func marshalBody(t *testing.T, body interface{}) io.Reader {
	t.Helper()
	if body == nil {
		return nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	return bytes.NewReader(data)
}

// do performs a request, threading the session token when set, and
// returns the recorder plus the token issued by the middleware.
func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, string) {
	t.Helper()

	req := httptest.NewRequest(method, path, marshalBody(t, body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.SessionHeader, token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w, w.Header().Get(middleware.SessionHeader)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// loggedInSession registers a student and returns a session token bound
// to them.
func (a *testApp) loggedInSession(t *testing.T, roll string) string {
	t.Helper()

	w, _ := a.do(t, http.MethodPost, "/api/students/register", "", map[string]string{
		"name":     "Asha",
		"roll":     roll,
		"email":    roll + "@campus.edu",
		"password": "hunter22",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed: status %d, body %s", w.Code, w.Body.String())
	}

	w, token := a.do(t, http.MethodPost, "/api/students/login", "", map[string]string{
		"roll":     roll,
		"password": "hunter22",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: status %d, body %s", w.Code, w.Body.String())
	}
	return token
}
