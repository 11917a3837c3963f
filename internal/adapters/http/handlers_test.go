package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	handler "github.com/nmoreno/fiestero/internal/adapters/http"
	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/core/ports"
	"github.com/nmoreno/fiestero/internal/core/usecases"
)

// ---- Mock repositories ----

type mockProductRepo struct {
	listFn    func(ctx context.Context, category string, activeOnly bool) ([]domain.Product, error)
	getByIDFn func(ctx context.Context, id string) (*domain.Product, error)
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error { return nil }
func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product) error { return nil }
func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockProductRepo) List(ctx context.Context, category string, activeOnly bool) ([]domain.Product, error) {
	if m.listFn != nil {
		return m.listFn(ctx, category, activeOnly)
	}
	return nil, nil
}

type mockZoneRepo struct {
	listFn   func(ctx context.Context) ([]domain.Zone, error)
	createFn func(ctx context.Context, z *domain.Zone) error
}

func (m *mockZoneRepo) Create(ctx context.Context, z *domain.Zone) error {
	if m.createFn != nil {
		return m.createFn(ctx, z)
	}
	return nil
}
func (m *mockZoneRepo) Update(ctx context.Context, z *domain.Zone) error { return nil }
func (m *mockZoneRepo) Delete(ctx context.Context, id string) error      { return nil }
func (m *mockZoneRepo) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	return nil, domain.ErrNotFound
}
func (m *mockZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockCartRepo struct {
	listItemsFn func(ctx context.Context, userID string) ([]domain.CartLineItem, error)
	addItemFn   func(ctx context.Context, userID string, item *domain.CartLineItem) error
}

func (m *mockCartRepo) AddItem(ctx context.Context, userID string, item *domain.CartLineItem) error {
	if m.addItemFn != nil {
		return m.addItemFn(ctx, userID, item)
	}
	return nil
}
func (m *mockCartRepo) UpdateItem(ctx context.Context, userID, itemID string, quantity, extraHours int) error {
	return nil
}
func (m *mockCartRepo) RemoveItem(ctx context.Context, userID, itemID string) error { return nil }
func (m *mockCartRepo) ListItems(ctx context.Context, userID string) ([]domain.CartLineItem, error) {
	if m.listItemsFn != nil {
		return m.listItemsFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockCartRepo) Clear(ctx context.Context, userID string) error { return nil }

type mockReservationRepo struct {
	createFn  func(ctx context.Context, r *domain.Reservation) error
	getByIDFn func(ctx context.Context, id string) (*domain.Reservation, error)
}

func (m *mockReservationRepo) Create(ctx context.Context, r *domain.Reservation) error {
	if m.createFn != nil {
		return m.createFn(ctx, r)
	}
	return nil
}
func (m *mockReservationRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockReservationRepo) List(ctx context.Context, filter ports.ReservationFilter) ([]domain.Reservation, int, error) {
	return nil, 0, nil
}
func (m *mockReservationRepo) UpdateStatus(ctx context.Context, id, status string) error { return nil }
func (m *mockReservationRepo) OccupancyBetween(ctx context.Context, from, to time.Time) ([]domain.DayOccupancy, error) {
	return nil, nil
}

type mockAuditRepo struct{}

func (m *mockAuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error { return nil }
func (m *mockAuditRepo) List(ctx context.Context, entity string, offset, limit int) ([]domain.AuditEntry, int, error) {
	return nil, 0, nil
}

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, street, houseNumber, city string) (*domain.GeoPoint, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, street, houseNumber, city string) (*domain.GeoPoint, error) {
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, street, houseNumber, city)
	}
	return &domain.GeoPoint{Lat: 5, Lon: 5}, nil
}

// ---- Test helpers ----

func squareZone(id string, cost int64) domain.Zone {
	boundary := json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`)
	return domain.Zone{
		ID: id, Name: "zone " + id, Boundary: boundary,
		TransportCost: decimal.NewFromInt(cost), Active: true,
	}
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	products := &mockProductRepo{}
	carts := &mockCartRepo{}
	zones := usecases.NewZoneService(&mockZoneRepo{}, nil)
	quotes := usecases.NewQuoteService(&mockGeocoder{}, zones)

	d := &handler.Dependencies{
		Catalog:      usecases.NewCatalogService(products, nil),
		Zones:        zones,
		Quotes:       quotes,
		Carts:        usecases.NewCartService(carts, products),
		Reservations: usecases.NewReservationService(&mockReservationRepo{}, carts, &mockAuditRepo{}, quotes, nil),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---- Catalog handler tests ----

func TestListProducts_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Catalog = usecases.NewCatalogService(&mockProductRepo{
			listFn: func(ctx context.Context, category string, activeOnly bool) ([]domain.Product, error) {
				return []domain.Product{
					{ID: "p1", Name: "inflatable castle", Active: true},
					{ID: "p2", Name: "sound system", Active: true},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/products", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Product `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 2 {
		t.Errorf("expected total 2, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 products, got %d", len(result.Data))
	}
}

func TestListProducts_Pagination(t *testing.T) {
	products := make([]domain.Product, 5)
	for i := range products {
		products[i] = domain.Product{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Product %d", i)}
	}

	deps := makeDeps(func(d *handler.Dependencies) {
		d.Catalog = usecases.NewCatalogService(&mockProductRepo{
			listFn: func(ctx context.Context, category string, activeOnly bool) ([]domain.Product, error) {
				return products, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/products?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Product `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 products in page, got %d", len(result.Data))
	}
	if result.Pagination.Offset != 2 {
		t.Errorf("expected offset 2, got %d", result.Pagination.Offset)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/products/missing", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

// ---- Quote handler tests ----

func TestQuote_MatchedZone(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		zones := usecases.NewZoneService(&mockZoneRepo{
			listFn: func(ctx context.Context) ([]domain.Zone, error) {
				return []domain.Zone{squareZone("downtown", 5000)}, nil
			},
		}, nil)
		d.Zones = zones
		d.Quotes = usecases.NewQuoteService(&mockGeocoder{}, zones)
		d.Carts = usecases.NewCartService(&mockCartRepo{
			listItemsFn: func(ctx context.Context, userID string) ([]domain.CartLineItem, error) {
				return []domain.CartLineItem{{
					ProductID: "p1", UnitPrice: decimal.NewFromInt(10000),
					Quantity: 2, ExtraHours: 1, ExtraHourPercentage: decimal.NewFromInt(20),
				}}, nil
			},
		}, &mockProductRepo{})
	})
	app := setupApp(deps)

	body := strings.NewReader(`{"street":"Calle Mayor","house_number":"12","city":"Madrid"}`)
	req := httptest.NewRequest("POST", "/v1/quote", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var quote struct {
		Subtotal      string `json:"subtotal"`
		TransportCost string `json:"transport_cost"`
		Total         string `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		t.Fatal(err)
	}
	if quote.Subtotal != "24000" {
		t.Errorf("expected subtotal 24000, got %s", quote.Subtotal)
	}
	if quote.TransportCost != "5000" {
		t.Errorf("expected transport 5000, got %s", quote.TransportCost)
	}
	if quote.Total != "29000" {
		t.Errorf("expected total 29000, got %s", quote.Total)
	}
}

func TestQuote_RequiresUser(t *testing.T) {
	app := setupApp(makeDeps())

	body := strings.NewReader(`{"street":"Calle Mayor","house_number":"12"}`)
	req := httptest.NewRequest("POST", "/v1/quote", body)
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 401 {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestQuote_AddressNotFound(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Quotes = usecases.NewQuoteService(&mockGeocoder{
			geocodeFn: func(ctx context.Context, street, houseNumber, city string) (*domain.GeoPoint, error) {
				return nil, domain.ErrAddressNotFound
			},
		}, d.Zones)
	})
	app := setupApp(deps)

	body := strings.NewReader(`{"street":"Calle Inventada","house_number":"999"}`)
	req := httptest.NewRequest("POST", "/v1/quote", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 422 {
		t.Errorf("expected 422, got %d", resp.StatusCode)
	}
}

func TestQuote_GeocoderDown(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Quotes = usecases.NewQuoteService(&mockGeocoder{
			geocodeFn: func(ctx context.Context, street, houseNumber, city string) (*domain.GeoPoint, error) {
				return nil, domain.ErrGeocoderUnavailable
			},
		}, d.Zones)
	})
	app := setupApp(deps)

	body := strings.NewReader(`{"street":"Calle Mayor","house_number":"12"}`)
	req := httptest.NewRequest("POST", "/v1/quote", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 502 {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
}

// ---- Cart handler tests ----

func TestAddCartItem_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Carts = usecases.NewCartService(&mockCartRepo{}, &mockProductRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Product, error) {
				return &domain.Product{
					ID: id, Name: "sound system",
					UnitPrice: decimal.NewFromInt(8000), Active: true,
				}, nil
			},
		})
	})
	app := setupApp(deps)

	body := strings.NewReader(`{"product_id":"p1","quantity":2,"extra_hours":1}`)
	req := httptest.NewRequest("POST", "/v1/cart/items", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
}

func TestAddCartItem_UnknownProduct(t *testing.T) {
	app := setupApp(makeDeps())

	body := strings.NewReader(`{"product_id":"missing","quantity":1}`)
	req := httptest.NewRequest("POST", "/v1/cart/items", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAddCartItem_InvalidQuantity(t *testing.T) {
	app := setupApp(makeDeps())

	body := strings.NewReader(`{"product_id":"p1","quantity":0}`)
	req := httptest.NewRequest("POST", "/v1/cart/items", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Checkout handler tests ----

func TestCheckout_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		carts := &mockCartRepo{
			listItemsFn: func(ctx context.Context, userID string) ([]domain.CartLineItem, error) {
				return []domain.CartLineItem{{
					ProductID: "p1", UnitPrice: decimal.NewFromInt(10000),
					Quantity: 1, ExtraHourPercentage: decimal.NewFromInt(20),
				}}, nil
			},
		}
		reservations := &mockReservationRepo{
			createFn: func(ctx context.Context, r *domain.Reservation) error {
				r.ID = "r1"
				return nil
			},
		}
		zones := usecases.NewZoneService(&mockZoneRepo{
			listFn: func(ctx context.Context) ([]domain.Zone, error) {
				return []domain.Zone{squareZone("downtown", 3000)}, nil
			},
		}, nil)
		quotes := usecases.NewQuoteService(&mockGeocoder{}, zones)
		d.Reservations = usecases.NewReservationService(reservations, carts, &mockAuditRepo{}, quotes, nil)
	})
	app := setupApp(deps)

	body := strings.NewReader(`{
		"customer_name": "Ana",
		"customer_email": "ana@example.com",
		"street": "Calle Mayor",
		"house_number": "12",
		"event_date": "2026-09-12"
	}`)
	req := httptest.NewRequest("POST", "/v1/checkout", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var res struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Total  string `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Status != "pending" {
		t.Errorf("expected pending status, got %s", res.Status)
	}
	if res.Total != "13000" {
		t.Errorf("expected total 13000, got %s", res.Total)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	app := setupApp(makeDeps())

	body := strings.NewReader(`{
		"customer_name": "Ana",
		"customer_email": "ana@example.com",
		"street": "Calle Mayor",
		"house_number": "12",
		"event_date": "2026-09-12"
	}`)
	req := httptest.NewRequest("POST", "/v1/checkout", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 409 {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

func TestCheckout_BadEventDate(t *testing.T) {
	app := setupApp(makeDeps())

	body := strings.NewReader(`{"customer_name":"Ana","customer_email":"a@b.c","event_date":"next tuesday"}`)
	req := httptest.NewRequest("POST", "/v1/checkout", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Zone handler tests ----

func TestMatchZone_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Zones = usecases.NewZoneService(&mockZoneRepo{
			listFn: func(ctx context.Context) ([]domain.Zone, error) {
				return []domain.Zone{squareZone("downtown", 3000)}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/zones/match?lat=5&lon=5", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var match struct {
		Zone *domain.Zone `json:"zone"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&match); err != nil {
		t.Fatal(err)
	}
	if match.Zone == nil || match.Zone.ID != "downtown" {
		t.Errorf("expected zone downtown, got %+v", match.Zone)
	}
}

func TestMatchZone_OriginCoordinate(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Zones = usecases.NewZoneService(&mockZoneRepo{
			listFn: func(ctx context.Context) ([]domain.Zone, error) {
				boundary := json.RawMessage(`{"type":"Polygon","coordinates":[[[-5,-5],[5,-5],[5,5],[-5,5],[-5,-5]]]}`)
				return []domain.Zone{{
					ID: "equator", Name: "equator", Boundary: boundary,
					TransportCost: decimal.NewFromInt(1000), Active: true,
				}}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	// (0,0) is a real coordinate, not a missing parameter
	req := httptest.NewRequest("GET", "/v1/zones/match?lat=0&lon=0", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var match struct {
		Zone *domain.Zone `json:"zone"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&match); err != nil {
		t.Fatal(err)
	}
	if match.Zone == nil || match.Zone.ID != "equator" {
		t.Errorf("expected zone equator, got %+v", match.Zone)
	}
}

func TestMatchZone_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/zones/match?lat=5", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAdminCreateZone_RejectsBadGeometry(t *testing.T) {
	app := setupApp(makeDeps())

	body := strings.NewReader(`{"name":"broken","boundary":{"type":"Polygon","coordinates":[]},"transport_cost":"100"}`)
	req := httptest.NewRequest("POST", "/v1/admin/zones", body)
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- WebSocket ----

func TestWebSocket_UnavailableWithoutNATS(t *testing.T) {
	app := setupApp(makeDeps()) // no NATS conn wired

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
