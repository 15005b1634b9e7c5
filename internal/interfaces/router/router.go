package router

import (
	catsvc "exohub-backend/internal/application/catalog"
	fiosvc "exohub-backend/internal/application/fio"
	listsvc "exohub-backend/internal/application/listings"
	pricesvc "exohub-backend/internal/application/pricing"
	resvsvc "exohub-backend/internal/application/reservations"
	"exohub-backend/internal/config"
	"exohub-backend/internal/constants"
	"exohub-backend/internal/infrastructure/database"
	cathandler "exohub-backend/internal/interfaces/handlers/catalog"
	healthhandler "exohub-backend/internal/interfaces/handlers/health"
	invhandler "exohub-backend/internal/interfaces/handlers/inventory"
	listhandler "exohub-backend/internal/interfaces/handlers/listings"
	plhandler "exohub-backend/internal/interfaces/handlers/pricelists"
	resvhandler "exohub-backend/internal/interfaces/handlers/reservations"
	"exohub-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route
// registration. Returns the DB and Redis handles for startup checks and
// background jobs.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
		app.Use(middleware.HealthMarker(rdb))
	}

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.Identity())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/reset", hh.Reset)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	if db != nil {
		cache := &catsvc.Cache{Rdb: rdb, TTL: cfg.CatalogCacheTTL}
		catalogService := &catsvc.Service{DB: db, Cache: cache}
		pricingService := &pricesvc.Service{DB: db}
		listingsService := &listsvc.Service{DB: db, Catalog: catalogService, Pricing: pricingService}
		reservationsService := &resvsvc.Service{DB: db, Pricing: pricingService}
		fioSync := &fiosvc.SyncService{DB: db, FIO: fiosvc.NewClient(cfg.FIOBaseURL, cfg.FIOAPIKey)}

		lh := &listhandler.Handlers{Service: listingsService}
		sellGroup := app.Group("/api/v1/sell-listings", middleware.RequireAuth())
		sellGroup.Post("/", middleware.AuthorizePermission(constants.CreateListing), lh.CreateSellListing)
		sellGroup.Get("/", lh.GetMySellListings)
		sellGroup.Get("/:listing_id", lh.GetSellListing)
		sellGroup.Get("/:listing_id/price", lh.ResolveSellListingPrice)
		sellGroup.Put("/:listing_id", middleware.AuthorizePermission(constants.EditListing), lh.UpdateSellListing)
		sellGroup.Delete("/:listing_id", middleware.AuthorizePermission(constants.DeleteListing), lh.DeleteSellListing)

		buyGroup := app.Group("/api/v1/buy-requests", middleware.RequireAuth())
		buyGroup.Post("/", middleware.AuthorizePermission(constants.CreateListing), lh.CreateBuyRequest)
		buyGroup.Get("/", lh.GetMyBuyRequests)
		buyGroup.Get("/:request_id", lh.GetBuyRequest)
		buyGroup.Put("/:request_id", middleware.AuthorizePermission(constants.EditListing), lh.UpdateBuyRequest)
		buyGroup.Delete("/:request_id", middleware.AuthorizePermission(constants.DeleteListing), lh.DeleteBuyRequest)

		rh := &resvhandler.Handlers{Service: reservationsService}
		resvGroup := app.Group("/api/v1/reservations", middleware.RequireAuth())
		resvGroup.Post("/", middleware.AuthorizePermission(constants.CreateReservation), rh.CreateReservation)
		resvGroup.Get("/", rh.ListMyReservations)
		resvGroup.Get("/eligible", rh.ListEligible)
		resvGroup.Get("/:reservation_id/events", rh.ListEvents)
		resvGroup.Patch("/:reservation_id/status", rh.UpdateStatus)

		ch := &cathandler.Handlers{Service: catalogService}
		catGroup := app.Group("/api/v1/catalog", middleware.RequireAuth())
		catGroup.Get("/commodities/:ticker", ch.GetCommodity)
		catGroup.Get("/locations/:location_id", ch.GetLocation)
		catGroup.Put("/commodities", middleware.AuthorizePermission(constants.ManageCatalog), ch.UpsertCommodity)
		catGroup.Put("/locations", middleware.AuthorizePermission(constants.ManageCatalog), ch.UpsertLocation)

		ih := &invhandler.Handlers{DB: db, Sync: fioSync}
		invGroup := app.Group("/api/v1/inventory", middleware.RequireAuth())
		invGroup.Get("/", ih.GetMyInventory)
		invGroup.Post("/sync", ih.SyncMyInventory)
		invGroup.Post("/admin-sync", middleware.AuthorizePermission(constants.RunInventorySync), ih.AdminSync)

		ph := &plhandler.Handlers{Service: pricingService}
		plGroup := app.Group("/api/v1/price-lists", middleware.RequireAuth())
		plGroup.Put("/", middleware.AuthorizePermission(constants.ManagePriceLists), ph.UpsertPriceList)
		plGroup.Post("/adjustments", middleware.AuthorizePermission(constants.ManagePriceLists), ph.CreateAdjustment)
		plGroup.Patch("/adjustments/:id/deactivate", middleware.AuthorizePermission(constants.ManagePriceLists), ph.DeactivateAdjustment)
		plGroup.Get("/:list_code/adjustments", ph.ListAdjustments)
	}

	return app, db, rdb, nil
}
