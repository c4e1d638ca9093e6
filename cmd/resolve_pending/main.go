package main

import (
	"context"
	"fmt"
	"log"

	"github.com/packlane/wmsgo/internal/config"
	"github.com/packlane/wmsgo/internal/database"
	"github.com/packlane/wmsgo/internal/services/sellus"
	"github.com/packlane/wmsgo/internal/store"
)

// Batch-resolves every product without a cached Sellus id from one catalog
// fetch. Useful after a bulk article import.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	gateway := sellus.NewGateway(cfg.Sellus.BaseURL, cfg.Sellus.Token)
	resolver := sellus.NewResolver(gateway, store.NewProductRepo(db), store.NewLedgerRepo(db))

	report, err := resolver.ResolveAllPending(context.Background())
	if err != nil {
		log.Fatalf("Resolution pass failed: %v", err)
	}

	fmt.Printf("Scanned:  %d\n", report.Scanned)
	fmt.Printf("Resolved: %d\n", report.Resolved)
	fmt.Printf("Missing:  %d\n", report.Missing)
	fmt.Printf("Failed:   %d\n", report.Failed)
	for _, msg := range report.Errors {
		fmt.Printf("  - %s\n", msg)
	}
}
