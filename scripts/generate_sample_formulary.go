package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"medcart/internal/model"
)

// generateSampleFormulary creates a sample formulary snapshot for local
// development. The snapshot mixes unlimited, limited, low-stock and
// out-of-stock medicines so every cart path can be exercised.
func main() {
	dataDir := "data/formulary"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	limit := func(n int) *int { return &n }
	now := time.Now().UTC()

	medicines := []model.Medicine{
		{ID: "med-paracetamol-500", Name: "Paracetamol 500mg", Price: 4.50, StockStatus: model.StockInStock, UpdatedAt: now},
		{ID: "med-ibuprofen-200", Name: "Ibuprofen 200mg", Price: 6.20, LimitQuantity: limit(3), StockStatus: model.StockInStock, UpdatedAt: now},
		{ID: "med-cetirizine-10", Name: "Cetirizine 10mg", Price: 8.00, LimitQuantity: limit(2), StockStatus: model.StockLowStock, UpdatedAt: now},
		{ID: "med-amoxicillin-250", Name: "Amoxicillin 250mg", Price: 12.90, LimitQuantity: limit(1), StockStatus: model.StockInStock, UpdatedAt: now},
		{ID: "med-insulin-glargine", Name: "Insulin Glargine", Price: 54.00, LimitQuantity: limit(2), StockStatus: model.StockOutOfStock, UpdatedAt: now},
		{ID: "med-vitamin-d3", Name: "Vitamin D3 1000IU", Price: 9.75, StockStatus: model.StockInStock, UpdatedAt: now},
		{ID: "med-loratadine-10", Name: "Loratadine 10mg", Price: 7.40, LimitQuantity: limit(5), StockStatus: model.StockPreOrder, UpdatedAt: now},
	}

	filePath := filepath.Join(dataDir, "formulary.jsonl.gz")
	if err := writeSnapshot(filePath, medicines); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d medicines\n", filePath, len(medicines))
}

// writeSnapshot writes medicines as gzipped JSON lines.
func writeSnapshot(path string, medicines []model.Medicine) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	defer gz.Close()

	enc := json.NewEncoder(gz)
	for _, med := range medicines {
		if err := enc.Encode(med); err != nil {
			return fmt.Errorf("failed to encode medicine %s: %w", med.ID, err)
		}
	}

	return nil
}
