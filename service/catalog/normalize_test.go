package catalog

import (
	"reflect"
	"testing"
)

func f64(v float64) *float64 { return &v }

func unitFixture() *UnitProduct {
	return &UnitProduct{ID: "u1", Name: "Eggs", Images: []string{"eggs.jpg"}, Price: 100, Stock: 10}
}

func weightFixture() *WeightProduct {
	return &WeightProduct{
		ID:   "w1",
		Name: "Tilapia",
		SizeCategories: []SizeCategory{
			{ID: "small", Label: "Small", PricePerKg: 500, Stock: 5, Status: "active"},
			{ID: "large", Label: "Large", PricePerKg: 650, Stock: 3, Status: "inactive"},
		},
	}
}

func TestNormalize_UnitProduct(t *testing.T) {
	p := Normalize(unitFixture())
	if p.DisplayPrice != 100 {
		t.Errorf("DisplayPrice = %v, want 100", p.DisplayPrice)
	}
	if p.PriceRange != nil {
		t.Errorf("PriceRange = %v, want nil", p.PriceRange)
	}
	if p.TotalStock != 10 {
		t.Errorf("TotalStock = %v, want 10", p.TotalStock)
	}
	if p.IsWeightBased {
		t.Error("IsWeightBased = true, want false")
	}
	if p.Image != "eggs.jpg" {
		t.Errorf("Image = %q, want eggs.jpg", p.Image)
	}
	if p.DefaultOptionID != nil {
		t.Errorf("DefaultOptionID = %v, want nil", *p.DefaultOptionID)
	}
}

func TestNormalize_WeightProductIgnoresInactiveCategory(t *testing.T) {
	p := Normalize(weightFixture())
	if p.TotalStock != 5 {
		t.Errorf("TotalStock = %v, want 5", p.TotalStock)
	}
	if p.DisplayPrice != 500 {
		t.Errorf("DisplayPrice = %v, want 500", p.DisplayPrice)
	}
	if p.PriceRange != nil {
		t.Errorf("PriceRange = %+v, want nil", *p.PriceRange)
	}
	if !p.IsWeightBased {
		t.Error("IsWeightBased = false, want true")
	}
	if p.DefaultOptionID == nil || *p.DefaultOptionID != "small" {
		t.Errorf("DefaultOptionID = %v, want small", p.DefaultOptionID)
	}
	o, ok := p.Option("small")
	if !ok || o.MeasurementIncrement != DefaultMeasurementIncrement {
		t.Errorf("Option(small) = %+v, %v; want increment %v", o, ok, DefaultMeasurementIncrement)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	raws := []map[string]interface{}{
		{"id": "u1", "name": "Eggs", "price": "100", "stock": 10},
		{"id": "w1", "name": "Fish", "sizeCategories": []interface{}{
			map[string]interface{}{"id": "a", "pricePerKg": 400, "stock": 2, "status": "active", "minWeight": 0.5},
			map[string]interface{}{"id": "b", "pricePerKg": 900, "stock": 1, "status": "active"},
		}},
		{"id": "v1", "price": 30, "variants": []interface{}{
			map[string]interface{}{"id": "x", "price": 30, "salePrice": 25, "stock": 4},
		}},
	}
	for _, raw := range raws {
		r1, err := DecodeRecord(raw)
		if err != nil {
			t.Fatalf("DecodeRecord: %v", err)
		}
		r2, _ := DecodeRecord(raw)
		a, b := Normalize(r1), Normalize(r2)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Normalize(%v) not deterministic:\n%+v\n%+v", raw["id"], a, b)
		}
	}
}

func TestResolveStock_NeverNegative(t *testing.T) {
	records := []Record{
		&UnitProduct{ID: "a", Stock: -4},
		&UnitProduct{ID: "b", Variants: []Variant{{ID: "1", Stock: -2}, {ID: "2", Stock: 1}}},
		&WeightProduct{ID: "c", SizeCategories: []SizeCategory{{ID: "1", Stock: -9, Status: "active"}}},
	}
	want := []float64{0, 1, 0}
	for i, r := range records {
		if got := ResolveStock(r); got != want[i] {
			t.Errorf("ResolveStock(%s) = %v, want %v", r.RecordID(), got, want[i])
		}
	}
}

func TestResolveStock_VariantStatus(t *testing.T) {
	r := &UnitProduct{ID: "v", Variants: []Variant{
		{ID: "1", Stock: 2},
		{ID: "2", Stock: 3, Status: "active"},
		{ID: "3", Stock: 7, Status: "disabled"},
	}}
	if got := ResolveStock(r); got != 5 {
		t.Errorf("ResolveStock = %v, want 5", got)
	}
}

func TestResolveStock_TrustsSummaryAndReportsMismatch(t *testing.T) {
	var got []StockMismatch
	n := NewNormalizer()
	n.OnStockMismatch = func(m StockMismatch) { got = append(got, m) }

	r := &UnitProduct{
		ID:             "v",
		Variants:       []Variant{{ID: "1", Stock: 2}, {ID: "2", Stock: 3}},
		VariantSummary: &VariantSummary{TotalStock: f64(8)},
	}
	if s := n.ResolveStock(r); s != 8 {
		t.Errorf("ResolveStock = %v, want 8", s)
	}
	if len(got) != 1 || got[0].Recomputed != 5 || got[0].Precomputed != 8 {
		t.Errorf("mismatch reports = %+v, want one 8 vs 5", got)
	}

	got = nil
	r.VariantSummary.TotalStock = f64(5)
	n.ResolveStock(r)
	if len(got) != 0 {
		t.Errorf("unexpected mismatch report %+v", got)
	}

	r.VariantSummary.TotalStock = f64(0)
	if s := n.ResolveStock(r); s != 5 {
		t.Errorf("ResolveStock with zero summary = %v, want 5", s)
	}
}

func TestResolvePrice_RangeOrdering(t *testing.T) {
	r := &WeightProduct{ID: "w", SizeCategories: []SizeCategory{
		{ID: "a", PricePerKg: 900, Status: "active"},
		{ID: "b", PricePerKg: 400, Status: "active"},
		{ID: "c", PricePerKg: 100, Status: "inactive"},
	}}
	res := ResolvePrice(r)
	if res.PriceRange == nil {
		t.Fatal("PriceRange = nil, want range")
	}
	if res.PriceRange.Min > res.PriceRange.Max {
		t.Errorf("range %+v not ordered", *res.PriceRange)
	}
	if res.DisplayPrice != res.PriceRange.Min || res.DisplayPrice != 400 {
		t.Errorf("DisplayPrice = %v, want 400 == range min", res.DisplayPrice)
	}
	if res.PriceRange.Max != 900 {
		t.Errorf("range max = %v, want 900", res.PriceRange.Max)
	}
}

func TestResolvePrice_UpstreamRange(t *testing.T) {
	tests := []struct {
		name      string
		rng       *UpstreamPriceRange
		wantPrice float64
		wantRange bool
	}{
		{"min and max", &UpstreamPriceRange{Min: f64(300), Max: f64(700)}, 300, true},
		{"min only", &UpstreamPriceRange{Min: f64(300)}, 300, false},
		{"equal bounds", &UpstreamPriceRange{Min: f64(300), Max: f64(300)}, 300, false},
		{"no min falls back", &UpstreamPriceRange{Max: f64(700)}, 500, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := weightFixture()
			w.PriceRange = tt.rng
			res := ResolvePrice(w)
			if res.DisplayPrice != tt.wantPrice {
				t.Errorf("DisplayPrice = %v, want %v", res.DisplayPrice, tt.wantPrice)
			}
			if (res.PriceRange != nil) != tt.wantRange {
				t.Errorf("PriceRange = %v, want present=%v", res.PriceRange, tt.wantRange)
			}
		})
	}
}

func TestResolvePrice_NoActiveCategories(t *testing.T) {
	r := &WeightProduct{ID: "w", SizeCategories: []SizeCategory{{ID: "a", PricePerKg: 900, Status: "sold-out"}}}
	res := ResolvePrice(r)
	if res.DisplayPrice != 0 || res.PriceRange != nil {
		t.Errorf("ResolvePrice = %+v, want zero", res)
	}
}

func TestResolvePrice_SaleFlagDoesNotChangeDisplayPrice(t *testing.T) {
	r := &UnitProduct{ID: "v", Price: 30, Variants: []Variant{
		{ID: "1", Price: 30, SalePrice: f64(25)},
	}}
	res := ResolvePrice(r)
	if !res.HasSalePrice {
		t.Error("HasSalePrice = false, want true")
	}
	if res.DisplayPrice != 30 {
		t.Errorf("DisplayPrice = %v, want 30", res.DisplayPrice)
	}

	r.Variants[0].SalePrice = f64(35)
	if ResolvePrice(r).HasSalePrice {
		t.Error("HasSalePrice = true for sale price above price")
	}
}

func TestNormalize_DefaultOptionSkipsInactive(t *testing.T) {
	r := &UnitProduct{ID: "v", Price: 10, Variants: []Variant{
		{ID: "off", Status: "disabled", Stock: 1},
		{ID: "on", Stock: 1},
	}}
	p := Normalize(r)
	if p.DefaultOptionID == nil || *p.DefaultOptionID != "on" {
		t.Errorf("DefaultOptionID = %v, want on", p.DefaultOptionID)
	}
	if len(p.Options) != 2 || p.Options[0].Active {
		t.Errorf("Options = %+v", p.Options)
	}
}

func TestNormalizer_CustomIncrement(t *testing.T) {
	n := &Normalizer{DefaultIncrement: 0.5}
	p := n.Normalize(weightFixture())
	if p.Options[0].MeasurementIncrement != 0.5 {
		t.Errorf("increment = %v, want 0.5", p.Options[0].MeasurementIncrement)
	}
}
