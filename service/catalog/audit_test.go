package catalog

import (
	"context"
	"testing"
)

type fixedAggregates struct {
	stock map[string]float64
	min   map[string]float64
	max   map[string]float64
}

func (f fixedAggregates) SumActiveStock(ctx context.Context, id string) (float64, error) {
	return f.stock[id], nil
}

func (f fixedAggregates) ActivePriceBounds(ctx context.Context, id string) (float64, float64, bool, error) {
	min, ok := f.min[id]
	return min, f.max[id], ok, nil
}

func TestAudit(t *testing.T) {
	summary := &UnitProduct{
		ID:             "v",
		Variants:       []Variant{{ID: "1", Stock: 2}},
		VariantSummary: &VariantSummary{TotalStock: f64(9)},
	}
	records := []Record{unitFixture(), weightFixture(), summary}
	agg := fixedAggregates{
		stock: map[string]float64{"u1": 10, "w1": 5, "v": 2},
		min:   map[string]float64{"w1": 500},
		max:   map[string]float64{"w1": 650},
	}
	findings, err := NewNormalizer().Audit(context.Background(), records, agg)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("findings = %v, want 2", findings)
	}
	if findings[0].ProductID != "w1" || findings[0].Field != "priceRange.max" {
		t.Errorf("findings[0] = %v", findings[0])
	}
	if findings[1].ProductID != "v" || findings[1].Stored != 2 || findings[1].Normalized != 9 {
		t.Errorf("findings[1] = %v", findings[1])
	}
}
