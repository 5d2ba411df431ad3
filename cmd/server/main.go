package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goldshop/internal/config"
	"goldshop/internal/delivery/http/route"
	"goldshop/internal/logger"
	"goldshop/internal/media"
	repo "goldshop/internal/repository/sqlite"
	"goldshop/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogPretty)

	if err := cfg.EnsureDirs(); err != nil {
		log.Fatal().Err(err).Msg("could not create data directories")
	}

	db, err := repo.Open(cfg.DBPath())
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath()).Msg("could not open database")
	}
	defer db.Close()

	// Startup purge of the rolling sold-item window.
	productRepo := repo.NewProductRepository(db)
	activityRepo := repo.NewActivityRepository(db)
	store := media.NewStore(cfg.ImagesDir(), cfg.ThumbsDir(), log)
	saleService := service.NewSaleService(productRepo, activityRepo, store, cfg.SoldDir(), log)
	if n, err := saleService.PurgeOldSold(cfg.PurgeMonths); err != nil {
		log.Warn().Err(err).Msg("startup purge failed")
	} else if n > 0 {
		log.Info().Int("purged", n).Msg("old sold products purged")
	}

	if !cfg.LogPretty {
		gin.SetMode(gin.ReleaseMode)
	}
	app := gin.Default()
	route.SetupRoute(app, db, cfg, log)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: app,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
