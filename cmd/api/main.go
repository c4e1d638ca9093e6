package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/packlane/wmsgo/internal/config"
	"github.com/packlane/wmsgo/internal/database"
	"github.com/packlane/wmsgo/internal/handlers"
	"github.com/packlane/wmsgo/internal/models"
	"github.com/packlane/wmsgo/internal/services/sellus"
	"github.com/packlane/wmsgo/internal/store"
	"github.com/packlane/wmsgo/internal/vision"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (detects embedded vs external automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 3. Auto-migrate schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.UserAuth{},
		&models.StockLocation{},
		&models.Product{},
		&models.InventoryRecord{},
		&models.Order{},
		&models.OrderLine{},
		&models.DeliveryNote{},
		&models.DeliveryNoteItem{},
		&models.SyncLedgerEntry{},
		&models.UnresolvedSyncFailure{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Wire the reconciliation engine
	if cfg.Sellus.BaseURL == "" {
		log.Println("⚠️ SELLUS_BASE_URL not configured, remote sync will fail until it is set")
	}
	gateway := sellus.NewGateway(cfg.Sellus.BaseURL, cfg.Sellus.Token)

	notes := store.NewDeliveryNoteRepo(db)
	engine := sellus.NewEngine(
		gateway,
		store.NewProductRepo(db),
		store.NewInventoryRepo(db),
		store.NewOrderRepo(db),
		store.NewFailureRepo(db),
		notes,
		store.NewLedgerRepo(db),
	)

	// 5. Optional vision extractor
	var extractor vision.Extractor
	if cfg.Vision.GeminiAPIKey != "" {
		geminiExtractor, err := vision.NewGeminiExtractor(context.Background(), cfg.Vision.GeminiAPIKey, cfg.Vision.GeminiModel)
		if err != nil {
			log.Printf("⚠️ Vision extractor disabled: %v", err)
		} else {
			defer geminiExtractor.Close()
			extractor = geminiExtractor
		}
	} else {
		log.Println("Vision extraction disabled: GEMINI_API_KEY not configured")
	}

	// 6. Background retry service
	retryService := sellus.NewRetryService(engine.Retry, engine.Orders, cfg.Sellus.RetryInterval, cfg.Sellus.RetryBatch)
	retryService.Start()

	// 7. HTTP server
	router := handlers.NewRouter(db, cfg, engine, notes, extractor)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("🌐 WMS API listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down...")
	retryService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}

	if err := db.Close(); err != nil {
		log.Printf("⚠️ Database close: %v", err)
	}
	log.Println("✅ Shutdown complete")
}
