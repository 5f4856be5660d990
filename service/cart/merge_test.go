package cart

import (
	"reflect"
	"testing"
)

func quantities(lines []Line) map[string]float64 {
	out := make(map[string]float64, len(lines))
	for _, l := range lines {
		out[l.ProductID+"/"+l.OptionID] = l.Quantity
	}
	return out
}

func TestMerge_SumsQuantities(t *testing.T) {
	local := []Line{{ProductID: "A", Quantity: 2, UnitPrice: 10, PriceKind: PerUnit}}
	server := []Line{
		{ProductID: "A", Quantity: 1, UnitPrice: 9, PriceKind: PerUnit},
		{ProductID: "B", Quantity: 3, UnitPrice: 5, PriceKind: PerUnit},
	}
	got := Merge(server, local)
	want := map[string]float64{"A/": 3, "B/": 3}
	if !reflect.DeepEqual(quantities(got), want) {
		t.Errorf("Merge = %v, want %v", quantities(got), want)
	}
	if got[0].ProductID != "A" || got[1].ProductID != "B" {
		t.Errorf("order = %v", got)
	}
	if got[0].UnitPrice != 9 {
		t.Errorf("UnitPrice = %v, want server price 9", got[0].UnitPrice)
	}
}

func TestMerge_OptionsAreDistinct(t *testing.T) {
	local := []Line{
		{ProductID: "fish", OptionID: "small", Quantity: 0.5, PriceKind: PerWeight, MeasurementIncrement: 0.25},
		{ProductID: "eggs", Quantity: 1, PriceKind: PerUnit},
	}
	server := []Line{{ProductID: "fish", OptionID: "large", Quantity: 1.25, PriceKind: PerWeight}}
	got := Merge(server, local)
	want := map[string]float64{"fish/large": 1.25, "fish/small": 0.5, "eggs/": 1}
	if !reflect.DeepEqual(quantities(got), want) {
		t.Errorf("Merge = %v, want %v", quantities(got), want)
	}
	if got[0].OptionID != "large" || got[1].OptionID != "small" || got[2].ProductID != "eggs" {
		t.Errorf("order = %+v", got)
	}
}

func TestMerge_FloatSums(t *testing.T) {
	got := Merge(
		[]Line{{ProductID: "f", Quantity: 0.1, PriceKind: PerWeight}},
		[]Line{{ProductID: "f", Quantity: 0.2, PriceKind: PerWeight}},
	)
	if got[0].Quantity != 0.3 {
		t.Errorf("Quantity = %v, want 0.3", got[0].Quantity)
	}
}

func TestMerge_DoesNotAliasInput(t *testing.T) {
	limit := 4.0
	local := []Line{{ProductID: "A", Quantity: 1, StockLimit: &limit}}
	got := Merge(nil, local)
	*got[0].StockLimit = 99
	if limit != 4 {
		t.Errorf("input stock limit changed to %v", limit)
	}
}
