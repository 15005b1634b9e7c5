package listings

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	catsvc "exohub-backend/internal/application/catalog"
	listsvc "exohub-backend/internal/application/listings"
	pricesvc "exohub-backend/internal/application/pricing"
	"exohub-backend/internal/domain"
	"exohub-backend/internal/middleware"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupListingsTest(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Commodity{}, &domain.Location{},
		&domain.SellListing{}, &domain.BuyRequest{},
		&domain.Reservation{}, &domain.InventorySnapshot{},
		&domain.PriceList{}, &domain.PriceAdjustment{},
	))
	require.NoError(t, db.Create(&domain.Commodity{Ticker: "RAT", Name: "Rations"}).Error)
	require.NoError(t, db.Create(&domain.Location{LocationID: "UV-351a", Name: "Katoa"}).Error)

	svc := &listsvc.Service{
		DB:      db,
		Catalog: &catsvc.Service{DB: db},
		Pricing: &pricesvc.Service{DB: db},
	}
	return &Handlers{Service: svc}, db
}

func newApp(h *Handlers) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Identity())
	app.Post("/sell-listings", middleware.RequireAuth(), h.CreateSellListing)
	app.Get("/sell-listings", middleware.RequireAuth(), h.GetMySellListings)
	app.Get("/sell-listings/:listing_id", middleware.RequireAuth(), h.GetSellListing)
	app.Put("/sell-listings/:listing_id", middleware.RequireAuth(), h.UpdateSellListing)
	app.Delete("/sell-listings/:listing_id", middleware.RequireAuth(), h.DeleteSellListing)
	app.Get("/sell-listings/:listing_id/price", middleware.RequireAuth(), h.ResolveSellListingPrice)
	app.Post("/buy-requests", middleware.RequireAuth(), h.CreateBuyRequest)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload interface{}, userID uuid.UUID, role string) (int, map[string]interface{}) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set(middleware.HeaderUserID, userID.String())
		req.Header.Set(middleware.HeaderUserRole, role)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var decoded map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func TestCreateSellListing_RequiresAuth(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := newApp(h)

	status, body := doJSON(t, app, "POST", "/sell-listings", map[string]interface{}{
		"commodity_ticker": "RAT", "location_id": "UV-351a", "currency": "AIC", "price": 42,
	}, uuid.Nil, "")
	assert.Equal(t, 401, status)
	assert.Equal(t, "error", body["status"])
}

func TestCreateSellListing_MissingField(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := newApp(h)

	status, body := doJSON(t, app, "POST", "/sell-listings", map[string]interface{}{
		"commodity_ticker": "RAT", "currency": "AIC", "price": 42,
	}, uuid.New(), "trader")
	assert.Equal(t, 400, status)
	errObj, _ := body["error"].(map[string]interface{})
	assert.Contains(t, errObj["message"], "location_id")
}

func TestCreateSellListing_Created(t *testing.T) {
	h, db := setupListingsTest(t)
	app := newApp(h)
	owner := uuid.New()

	status, body := doJSON(t, app, "POST", "/sell-listings", map[string]interface{}{
		"commodity_ticker": "RAT",
		"location_id":      "UV-351a",
		"currency":         "AIC",
		"price":            42,
		"limit_kind":       "reserve",
		"limit_quantity":   200,
	}, owner, "trader")
	assert.Equal(t, 201, status)
	assert.Equal(t, "success", body["status"])

	var listing domain.SellListing
	require.NoError(t, db.Where("owner_user_id = ?", owner).First(&listing).Error)
	assert.Equal(t, "reserve", listing.LimitKind)
	require.NotNil(t, listing.LimitQuantity)
	assert.Equal(t, int64(200), *listing.LimitQuantity)
}

func TestCreateSellListing_PartnerForbiddenForTrader(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := newApp(h)

	payload := map[string]interface{}{
		"commodity_ticker": "RAT", "location_id": "UV-351a", "currency": "AIC",
		"price": 42, "order_type": "partner",
	}
	status, _ := doJSON(t, app, "POST", "/sell-listings", payload, uuid.New(), "trader")
	assert.Equal(t, 403, status)

	status, _ = doJSON(t, app, "POST", "/sell-listings", payload, uuid.New(), "manager")
	assert.Equal(t, 201, status)
}

func TestGetSellListing_InvalidID(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := newApp(h)

	status, _ := doJSON(t, app, "GET", "/sell-listings/not-a-uuid", nil, uuid.New(), "trader")
	assert.Equal(t, 400, status)

	status, _ = doJSON(t, app, "GET", "/sell-listings/"+uuid.NewString(), nil, uuid.New(), "trader")
	assert.Equal(t, 404, status)
}

func TestSellListingLifecycleOverHTTP(t *testing.T) {
	h, db := setupListingsTest(t)
	app := newApp(h)
	owner := uuid.New()

	status, _ := doJSON(t, app, "POST", "/sell-listings", map[string]interface{}{
		"commodity_ticker": "RAT", "location_id": "UV-351a", "currency": "AIC", "price": 42,
	}, owner, "trader")
	require.Equal(t, 201, status)

	var listing domain.SellListing
	require.NoError(t, db.Where("owner_user_id = ?", owner).First(&listing).Error)
	id := listing.ListingID.String()

	status, body := doJSON(t, app, "PUT", "/sell-listings/"+id, map[string]interface{}{
		"price": 55,
	}, owner, "trader")
	require.Equal(t, 200, status)
	data, _ := body["data"].(map[string]interface{})
	assert.Equal(t, float64(55), data["price"])

	// Someone else cannot edit or delete it.
	status, _ = doJSON(t, app, "PUT", "/sell-listings/"+id, map[string]interface{}{"price": 1}, uuid.New(), "trader")
	assert.Equal(t, 403, status)
	status, _ = doJSON(t, app, "DELETE", "/sell-listings/"+id, nil, uuid.New(), "trader")
	assert.Equal(t, 403, status)

	status, _ = doJSON(t, app, "DELETE", "/sell-listings/"+id, nil, owner, "trader")
	assert.Equal(t, 200, status)
	status, _ = doJSON(t, app, "GET", "/sell-listings/"+id, nil, owner, "trader")
	assert.Equal(t, 404, status)
}

func TestResolveSellListingPrice(t *testing.T) {
	h, db := setupListingsTest(t)
	app := newApp(h)
	owner := uuid.New()

	status, _ := doJSON(t, app, "POST", "/sell-listings", map[string]interface{}{
		"commodity_ticker": "RAT", "location_id": "UV-351a", "currency": "AIC", "price": 42,
	}, owner, "trader")
	require.Equal(t, 201, status)

	var listing domain.SellListing
	require.NoError(t, db.Where("owner_user_id = ?", owner).First(&listing).Error)

	status, body := doJSON(t, app, "GET", "/sell-listings/"+listing.ListingID.String()+"/price", nil, owner, "trader")
	require.Equal(t, 200, status)
	data, _ := body["data"].(map[string]interface{})
	assert.Equal(t, float64(42), data["price"])
	assert.Equal(t, false, data["is_fallback"])
}

func TestCreateBuyRequest_Created(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := newApp(h)

	status, body := doJSON(t, app, "POST", "/buy-requests", map[string]interface{}{
		"commodity_ticker": "RAT", "location_id": "UV-351a", "currency": "AIC",
		"price": 30, "quantity": 500,
	}, uuid.New(), "trader")
	assert.Equal(t, 201, status)
	assert.Equal(t, "success", body["status"])
	data, _ := body["data"].(map[string]interface{})
	assert.Equal(t, float64(500), data["quantity"])
}
