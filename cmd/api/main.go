package main

import (
	"context"
	"fmt"

	fiosvc "exohub-backend/internal/application/fio"
	resvsvc "exohub-backend/internal/application/reservations"
	"exohub-backend/internal/config"
	"exohub-backend/internal/infrastructure/database"
	"exohub-backend/internal/interfaces/router"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load: " + err.Error())
	}

	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		panic("app create: " + err.Error())
	}

	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			panic("Postgres: get DB: " + err.Error())
		}
		if err := sqlDB.Ping(); err != nil {
			panic("Postgres connection failed: " + err.Error())
		}
		if err := database.AutoMigrate(db); err != nil {
			panic("Postgres migration failed: " + err.Error())
		}
		fmt.Println("Postgres connected")
	}
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			panic("Redis connection failed: " + err.Error())
		}
		fmt.Println("Redis connected")
	}

	// Background jobs: reservation expiry sweeper and FIO inventory sync.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if db != nil {
		sweeper := &resvsvc.Service{DB: db}
		go sweeper.RunSweeper(ctx, cfg.SweeperInterval)

		syncer := &fiosvc.SyncService{DB: db, FIO: fiosvc.NewClient(cfg.FIOBaseURL, cfg.FIOAPIKey)}
		go syncer.RunSync(ctx, cfg.FIOSyncInterval)
	}

	log.Info().Str("port", cfg.Port).Msg("Server starting")
	fmt.Printf("Server running at http://localhost:%s\n", cfg.Port)
	fmt.Printf("Health check: http://localhost:%s/health/json\n", cfg.Port)
	fmt.Println("---")

	if err := app.Listen(":" + cfg.Port); err != nil {
		panic(err)
	}
}
