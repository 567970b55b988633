package main

import (
	"fmt"
	"os"

	"github.com/nurpe/procure-rfq/internal/auth"
	"github.com/nurpe/procure-rfq/internal/config"
	"github.com/nurpe/procure-rfq/internal/db"
	"github.com/nurpe/procure-rfq/internal/excel"
	httphandler "github.com/nurpe/procure-rfq/internal/http"
	"github.com/nurpe/procure-rfq/internal/http/middleware"
	"github.com/nurpe/procure-rfq/internal/logger"
	"github.com/nurpe/procure-rfq/internal/notify"
	"github.com/nurpe/procure-rfq/internal/pdf"
	"github.com/nurpe/procure-rfq/internal/repository"
	"github.com/nurpe/procure-rfq/internal/sequence"
	"github.com/nurpe/procure-rfq/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	allocator := sequence.NewPostgres(cfg.RFQ.NumberPrefix)
	rfqRepo := repository.NewRFQRepository(database, allocator)
	sites := repository.NewSiteDirectory(database)
	suppliers := repository.NewSupplierDirectory(database)

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	excelGenerator := excel.NewGenerator()
	notifier := notify.NewLogNotifier(log)

	rfqService := service.NewRFQService(rfqRepo, sites, suppliers, notifier, excelGenerator, pdfGenerator, cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(rfqService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting rfq service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
