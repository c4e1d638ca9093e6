package main

import (
	"fmt"
	"log"

	"github.com/packlane/wmsgo/internal/config"
	"github.com/packlane/wmsgo/internal/database"
	"github.com/packlane/wmsgo/internal/models"
)

// Prints the current synchronization state: product resolution status, the
// retry queue and the most recent ledger entries. Handy when debugging why a
// stock value never arrived in Sellus.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect: %v", err)
	}
	defer db.Close()

	var productCount, resolvedCount, failureCount, ledgerCount int64
	db.Model(&models.Product{}).Count(&productCount)
	db.Model(&models.Product{}).Where("external_numeric_id IS NOT NULL AND external_numeric_id <> ''").Count(&resolvedCount)
	db.Model(&models.UnresolvedSyncFailure{}).Where("resolved_at IS NULL").Count(&failureCount)
	db.Model(&models.SyncLedgerEntry{}).Count(&ledgerCount)

	fmt.Println("📊 Sync State Report")
	fmt.Println("────────────────────────────────────────")
	fmt.Printf("  Products:          %4d (%d resolved)\n", productCount, resolvedCount)
	fmt.Printf("  Open retry queue:  %4d\n", failureCount)
	fmt.Printf("  Ledger entries:    %4d\n", ledgerCount)
	fmt.Println()

	var unresolved []models.Product
	db.Where("external_numeric_id IS NULL OR external_numeric_id = ''").Limit(20).Find(&unresolved)
	if len(unresolved) > 0 {
		fmt.Println("🔎 Unresolved products:")
		for _, p := range unresolved {
			ref := "(no article ref)"
			if p.ExternalArticleRef != nil {
				ref = *p.ExternalArticleRef
			}
			fmt.Printf("  #%-4d %-30s %-12s status=%s\n", p.ID, p.Name, ref, p.SyncStatus)
		}
		fmt.Println()
	}

	var failures []models.UnresolvedSyncFailure
	db.Where("resolved_at IS NULL").Order("created_at ASC").Limit(20).Find(&failures)
	if len(failures) > 0 {
		fmt.Println("🔁 Retry queue (oldest first):")
		for _, f := range failures {
			fmt.Printf("  #%-4d product=%d qty=%d since=%s\n      %s\n",
				f.ID, f.ProductID, f.QuantityChanged, f.CreatedAt.Format("2006-01-02 15:04"), f.ErrorMessage)
		}
		fmt.Println()
	}

	var entries []models.SyncLedgerEntry
	db.Order("created_at DESC").Limit(10).Find(&entries)
	if len(entries) > 0 {
		fmt.Println("📒 Recent ledger entries:")
		for _, e := range entries {
			fmt.Printf("  %s %-14s %-4s %-15s %4dms  %s\n",
				e.CreatedAt.Format("15:04:05"), e.SyncType, e.Direction, e.Status, e.DurationMs, e.ErrorMessage)
		}
	}
}
