package catalog

import (
	"context"
	"fmt"
	"math"
)

// AggregateSource computes stock and price aggregates directly from storage.
type AggregateSource interface {
	SumActiveStock(ctx context.Context, productID string) (float64, error)
	// ActivePriceBounds returns ok=false when the product has no active size category.
	ActivePriceBounds(ctx context.Context, productID string) (min, max float64, ok bool, err error)
}

// AuditFinding is a disagreement between storage aggregates and normalized output.
type AuditFinding struct {
	ProductID  string  `json:"productId"`
	Field      string  `json:"field"`
	Normalized float64 `json:"normalized"`
	Stored     float64 `json:"stored"`
}

func (f AuditFinding) String() string {
	return fmt.Sprintf("%s %s: normalized=%v stored=%v", f.ProductID, f.Field, f.Normalized, f.Stored)
}

// Audit re-derives stock and weight price bounds through agg and reports
// every product where they disagree with the normalizer.
func (n *Normalizer) Audit(ctx context.Context, records []Record, agg AggregateSource) ([]AuditFinding, error) {
	var findings []AuditFinding
	quiet := &Normalizer{DefaultIncrement: n.DefaultIncrement, OnStockMismatch: func(StockMismatch) {}}
	for _, r := range records {
		p := quiet.Normalize(r)

		stock, err := agg.SumActiveStock(ctx, p.ID)
		if err != nil {
			return findings, fmt.Errorf("sum stock %s: %w", p.ID, err)
		}
		if math.Abs(stock-p.TotalStock) > stockEpsilon {
			findings = append(findings, AuditFinding{ProductID: p.ID, Field: "totalStock", Normalized: p.TotalStock, Stored: stock})
		}

		w, ok := r.(*WeightProduct)
		if !ok || (w.PriceRange != nil && w.PriceRange.Min != nil) {
			continue
		}
		min, max, ok, err := agg.ActivePriceBounds(ctx, p.ID)
		if err != nil {
			return findings, fmt.Errorf("price bounds %s: %w", p.ID, err)
		}
		if !ok {
			continue
		}
		if min != p.DisplayPrice {
			findings = append(findings, AuditFinding{ProductID: p.ID, Field: "displayPrice", Normalized: p.DisplayPrice, Stored: min})
		}
		normMax := p.DisplayPrice
		if p.PriceRange != nil {
			normMax = p.PriceRange.Max
		}
		if max != normMax {
			findings = append(findings, AuditFinding{ProductID: p.ID, Field: "priceRange.max", Normalized: normMax, Stored: max})
		}
	}
	return findings, nil
}
