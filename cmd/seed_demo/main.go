package main

import (
	"fmt"
	"log"

	"github.com/packlane/wmsgo/internal/config"
	"github.com/packlane/wmsgo/internal/database"
	"github.com/packlane/wmsgo/internal/models"
	"github.com/packlane/wmsgo/internal/utils"
)

// Seeds a small demo warehouse: one operator, a location tree, a handful of
// products with stock spread over several bins, and one open delivery note.
func main() {
	fmt.Println("🌱 wmsgo Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

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
		log.Fatalf("❌ Migration failed: %v", err)
	}

	var productCount int64
	db.Model(&models.Product{}).Count(&productCount)
	if productCount > 0 {
		fmt.Printf("⚠️  Database already has %d products. Clear it first? (y/N): ", productCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}
		db.Exec("TRUNCATE delivery_note_items, delivery_notes, order_lines, orders, inventory_records, products, stock_locations, unresolved_sync_failures, sync_ledger_entries RESTART IDENTITY CASCADE")
		fmt.Println("🧹 Cleared existing data")
	}

	// Operator account
	hash, err := utils.HashPassword("demo1234")
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	operator := models.UserAuth{Username: "demo", Password: hash, Email: "demo@example.com", Name: "Demo Operator", Role: "operator"}
	if err := db.Where(models.UserAuth{Username: "demo"}).FirstOrCreate(&operator).Error; err != nil {
		log.Fatalf("❌ Failed to create operator: %v", err)
	}
	fmt.Println("👤 Operator: demo / demo1234")

	// Location tree: one warehouse with two bins
	warehouse := models.StockLocation{Name: "Main Warehouse", Code: "WH"}
	if err := db.Create(&warehouse).Error; err != nil {
		log.Fatalf("❌ Failed to create warehouse: %v", err)
	}
	binA := models.StockLocation{Name: "Rack A, Bin 1", Code: "A-01", ParentID: &warehouse.ID}
	binB := models.StockLocation{Name: "Rack B, Bin 3", Code: "B-03", ParentID: &warehouse.ID}
	db.Create(&binA)
	db.Create(&binB)
	fmt.Println("🏭 Locations: WH > A-01, B-03")

	// Products with stock spread over both bins so the reconciler has
	// something to sum
	products := []struct {
		name string
		ref  string
		a, b int
	}{
		{"Hinge Set 40mm", "1201", 6, 4},
		{"Drawer Slide 450", "1202", 12, 0},
		{"Cabinet Handle Matte", "1305", 3, 9},
	}
	for _, p := range products {
		ref := p.ref
		product := models.Product{Name: p.name, ExternalArticleRef: &ref}
		if err := db.Create(&product).Error; err != nil {
			log.Fatalf("❌ Failed to create product %s: %v", p.name, err)
		}
		if p.a > 0 {
			db.Create(&models.InventoryRecord{ProductID: product.ID, LocationID: binA.ID, Quantity: p.a})
		}
		if p.b > 0 {
			db.Create(&models.InventoryRecord{ProductID: product.ID, LocationID: binB.ID, Quantity: p.b})
		}
		fmt.Printf("📦 %s (%s): %d units\n", p.name, p.ref, p.a+p.b)
	}

	// One open delivery note waiting to be checked off
	note := models.DeliveryNote{
		DeliveryNoteNumber: "LS-2026-0042",
		CargoMarking:       "GODS-42",
		Source:             "manual",
		Items: []models.DeliveryNoteItem{
			{ArticleNumber: "1201", OrderNumber: "GODS-42", Description: "Hinge Set 40mm", QuantityExpected: 10},
			{ArticleNumber: "1202", OrderNumber: "GODS-42", Description: "Drawer Slide 450", QuantityExpected: 4},
		},
	}
	if err := db.Create(&note).Error; err != nil {
		log.Fatalf("❌ Failed to create delivery note: %v", err)
	}
	fmt.Printf("📋 Delivery note %s with %d items\n", note.DeliveryNoteNumber, len(note.Items))

	fmt.Println("\n✅ Demo data seeded")
}
