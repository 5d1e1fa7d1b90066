package router

import (
	"net/http"

	captablesvc "captable-backend/internal/application/captable"
	equitysvc "captable-backend/internal/application/equity"
	ledgersvc "captable-backend/internal/application/ledger"
	classsvc "captable-backend/internal/application/shareclasses"
	"captable-backend/internal/config"
	"captable-backend/internal/infrastructure/database"
	captablehandler "captable-backend/internal/interfaces/handlers/captable"
	equityhandler "captable-backend/internal/interfaces/handlers/equity"
	healthhandler "captable-backend/internal/interfaces/handlers/health"
	ledgerhandler "captable-backend/internal/interfaces/handlers/ledger"
	classhandler "captable-backend/internal/interfaces/handlers/shareclasses"
	"captable-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
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
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
	}

	hh := &healthhandler.Handlers{Rdb: rdb}
	app.Get("/health/json", hh.JSON)

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
		// Share classes
		cs := &classsvc.Service{DB: db}
		ch := &classhandler.Handlers{Service: cs}
		cg := app.Group("/api/v1/share-classes", middleware.RequireTenant())
		cg.Post("/create-class", ch.CreateClass)
		cg.Patch("/update-class/:class_id", ch.UpdateClass)
		cg.Patch("/deactivate-class/:class_id", ch.DeactivateClass)
		cg.Get("/view-classes", ch.ViewClasses)
		cg.Get("/view-class/:class_id", ch.ViewClass)

		// Cap table (cache is optional, enabled when Redis is configured)
		cts := &captablesvc.Service{DB: db}
		var cache *captablesvc.Cache
		var cached *captablesvc.CachedService
		if rdb != nil && cfg.CapTableCacheTTL > 0 {
			cache = &captablesvc.Cache{Rdb: rdb, TTL: cfg.CapTableCacheTTL}
			cached = &captablesvc.CachedService{Service: cts, Cache: cache}
		}
		cth := &captablehandler.Handlers{Service: cts, Cached: cached}
		ctg := app.Group("/api/v1/captable", middleware.RequireTenant())
		ctg.Get("/view-captable", cth.ViewCapTable)
		ctg.Post("/simulate-round", cth.SimulateRound)

		// Ledger + equity mutations
		ls := &ledgersvc.Service{DB: db}
		lh := &ledgerhandler.Handlers{Service: ls}
		lg := app.Group("/api/v1/ledger", middleware.RequireTenant())
		lg.Get("/get-transactions", lh.GetTransactions)
		lg.Get("/get-shareholder-transactions/:shareholder_id", lh.GetShareholderTransactions)
		lg.Get("/get-transaction/:tx_id", lh.GetTransaction)

		es := &equitysvc.Service{DB: db, Ledger: ls}
		if cache != nil {
			es.Invalidator = cache
		}
		eh := &equityhandler.Handlers{Service: es}
		eg := app.Group("/api/v1/equity", middleware.RequireTenant())
		eg.Post("/issue-shares", eh.IssueShares)
		eg.Post("/transfer-shares", eh.TransferShares)
		eg.Post("/cancel-shares", eh.CancelShares)
		eg.Post("/convert-shares", eh.ConvertShares)
	}

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
