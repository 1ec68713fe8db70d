package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"

	"coopsite/internal/http/handlers"
	"coopsite/web"
)

func booking(slot string) map[string]string {
	return map[string]string{
		"name": "Giulia", "surname": "Neri", "phone": "+39 333 1112222",
		"date": "2025-06-10", "time_slot": slot,
	}
}

func TestBookingEndpoints(t *testing.T) {
	h := newHarness(t, handlers.DefaultLimits)

	expect(t, h.do("POST", "/api/v1/bookings", booking("10:00 - 11:00")), http.StatusCreated)
	expect(t, h.do("POST", "/api/v1/bookings", booking("14:00 - 15:00")), http.StatusCreated)

	// same slot again is accepted; staff sort out doubles
	expect(t, h.do("POST", "/api/v1/bookings", booking("10:00 - 11:00")), http.StatusCreated)

	resp := h.do("GET", "/api/v1/slots/booked?date=2025-06-10", nil)
	expect(t, resp, http.StatusOK)
	got := decode[struct {
		Booked []string `json:"booked"`
	}](t, resp)
	if len(got.Booked) != 2 || got.Booked[0] != "10:00 - 11:00" || got.Booked[1] != "14:00 - 15:00" {
		t.Fatalf("unexpected booked slots %v", got.Booked)
	}

	resp = h.do("GET", "/api/v1/slots?date=2025-06-10", nil)
	expect(t, resp, http.StatusOK)
	av := decode[struct {
		Slots []struct {
			Slot   string `json:"slot"`
			Booked bool   `json:"booked"`
		} `json:"slots"`
	}](t, resp)
	if len(av.Slots) != 6 || !av.Slots[1].Booked || av.Slots[2].Booked {
		t.Fatalf("unexpected availability %+v", av.Slots)
	}
}

func TestBookingValidationIsBadRequest(t *testing.T) {
	h := newHarness(t, handlers.DefaultLimits)

	b := booking("10:00 - 11:00")
	delete(b, "date")
	resp := h.do("POST", "/api/v1/bookings", b)
	expect(t, resp, http.StatusBadRequest)
	body := decode[map[string]string](t, resp)
	if body["field"] != "date" {
		t.Fatalf("want field=date, got %v", body)
	}

	expect(t, h.do("GET", "/api/v1/slots/booked?date=tomorrow", nil), http.StatusBadRequest)
}

func TestCSRFRequiredOnUnsafeMethods(t *testing.T) {
	h := newHarness(t, handlers.DefaultLimits)
	delete(h.jar, "csrf_")
	entries := captureLogs(t, func() {
		expect(t, h.do("POST", "/api/v1/messages", map[string]string{"name": "Sara", "email": "s@example.com", "message": "hi"}), http.StatusForbidden)
	})
	if findAction(entries, "csrf.fail") == nil {
		t.Fatal("csrf failure not logged")
	}
}

func TestContactMessage(t *testing.T) {
	h := newHarness(t, handlers.DefaultLimits)
	expect(t, h.do("POST", "/api/v1/messages", map[string]string{"name": "Sara", "email": "s@example.com", "message": "Preventivo"}), http.StatusCreated)
	expect(t, h.do("POST", "/api/v1/messages", map[string]string{"name": "Sara", "email": "bad", "message": "x"}), http.StatusBadRequest)
}

func TestCatalogAndPortfolio(t *testing.T) {
	h := newHarness(t, handlers.DefaultLimits)

	resp := h.do("GET", "/api/v1/products?category=tools", nil)
	expect(t, resp, http.StatusOK)
	ps := decode[[]map[string]any](t, resp)
	if len(ps) != 1 || ps[0]["id"] != "pruner-01" {
		t.Fatalf("unexpected products %v", ps)
	}

	resp = h.do("GET", "/api/v1/products/ghost", nil)
	expect(t, resp, http.StatusNotFound)
	if body := decode[map[string]string](t, resp); body["error"] != "not found" {
		t.Fatalf("unexpected 404 body %v", body)
	}

	resp = h.do("GET", "/api/v1/categories", nil)
	expect(t, resp, http.StatusOK)
	if cats := decode[[]string](t, resp); len(cats) != 3 {
		t.Fatalf("unexpected categories %v", cats)
	}

	resp = h.do("GET", "/api/v1/projects?featured=true", nil)
	expect(t, resp, http.StatusOK)
	if prj := decode[[]map[string]any](t, resp); len(prj) != 1 {
		t.Fatalf("unexpected projects %v", prj)
	}
	expect(t, h.do("GET", "/api/v1/projects/ghost", nil), http.StatusNotFound)
}

func TestCartAndOrder(t *testing.T) {
	h := newHarness(t, handlers.DefaultLimits)

	customer := map[string]string{"name": "Marco", "surname": "Bianchi", "phone": "+39 340 1234567"}
	resp := h.do("POST", "/api/v1/orders", customer)
	expect(t, resp, http.StatusBadRequest)
	if body := decode[map[string]string](t, resp); body["field"] != "cart" {
		t.Fatalf("empty cart: unexpected body %v", body)
	}

	expect(t, h.do("POST", "/api/v1/cart", map[string]string{"product_id": "pruner-01"}), http.StatusOK)
	expect(t, h.do("POST", "/api/v1/cart", map[string]string{"product_id": "drip-kit-01"}), http.StatusOK)
	resp = h.do("PUT", "/api/v1/cart/pruner-01", map[string]int{"quantity": 500})
	expect(t, resp, http.StatusOK)
	if capped := decode[struct {
		Count int `json:"count"`
	}](t, resp); capped.Count != 100 {
		t.Fatalf("want 99 pruners plus one drip kit, got %d", capped.Count)
	}
	expect(t, h.do("PUT", "/api/v1/cart/pruner-01", map[string]int{"quantity": 2}), http.StatusOK)
	expect(t, h.do("PUT", "/api/v1/cart/pruner-01", map[string]int{"quantity": 0}), http.StatusOK)
	resp = h.do("DELETE", "/api/v1/cart/drip-kit-01", nil)
	expect(t, resp, http.StatusOK)
	cv := decode[struct {
		Count int    `json:"count"`
		Total string `json:"total"`
	}](t, resp)
	if cv.Count != 2 || !decimal.RequireFromString(cv.Total).Equal(decimal.NewFromInt(49)) {
		t.Fatalf("unexpected cart %+v", cv)
	}
	expect(t, h.do("POST", "/api/v1/cart", map[string]string{"product_id": "ghost"}), http.StatusNotFound)

	resp = h.do("POST", "/api/v1/orders", customer)
	expect(t, resp, http.StatusCreated)
	o := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Total  string `json:"total"`
		Items  []struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
	}](t, resp)
	if o.ID == "" || o.Status != "pending" || !decimal.RequireFromString(o.Total).Equal(decimal.NewFromInt(49)) || len(o.Items) != 1 || o.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order %+v", o)
	}

	resp = h.do("GET", "/api/v1/cart", nil)
	expect(t, resp, http.StatusOK)
	if cv := decode[struct {
		Count int `json:"count"`
	}](t, resp); cv.Count != 0 {
		t.Fatalf("cart not cleared after order: %+v", cv)
	}
}

func TestUnknownRoutes(t *testing.T) {
	h := newHarness(t, handlers.DefaultLimits)
	resp := h.do("GET", "/api/v1/nope", nil)
	expect(t, resp, http.StatusNotFound)

	resp = h.do("GET", "/nope", nil)
	expect(t, resp, http.StatusNotFound)
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "Page not found") {
		t.Fatalf("friendly page missing: %s", b)
	}
}

func TestErrorHandlerFriendlyMessage(t *testing.T) {
	app := fiber.New(fiber.Config{Views: web.Engine(), ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	app.Get("/err", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	})
	app.Get("/api/v1/err", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	})

	var page, api string
	entries := captureLogs(t, func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/err", nil))
		if err != nil {
			t.Fatal(err)
		}
		expect(t, resp, http.StatusInternalServerError)
		b, _ := io.ReadAll(resp.Body)
		page = string(b)

		resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/err", nil))
		if err != nil {
			t.Fatal(err)
		}
		expect(t, resp, http.StatusInternalServerError)
		b, _ = io.ReadAll(resp.Body)
		api = string(b)
	})
	for _, s := range []string{page, api} {
		if !strings.Contains(s, "Something went wrong") {
			t.Fatalf("friendly message missing; body=%s", s)
		}
		if strings.Contains(s, "secret") {
			t.Fatalf("internal details leaked; body=%s", s)
		}
	}
	if e := findAction(entries, "server.error"); e == nil || e.Level != "error" {
		t.Fatalf("server error not logged: %+v", entries)
	}
}
