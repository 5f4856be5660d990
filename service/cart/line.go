package cart

import (
	"math"

	"github.com/shopspring/decimal"

	"farmstore.GO/service/catalog"
)

// PriceKind tells how a line's unit price applies to its quantity.
type PriceKind string

const (
	PerUnit   PriceKind = "per-unit"
	PerWeight PriceKind = "per-weight"
)

const (
	// quantityEpsilon absorbs float drift when snapping to a step.
	quantityEpsilon = 1e-9
	// quantityPlaces is the precision weight quantities are stored with.
	quantityPlaces = 6
)

// Line is one cart entry. MeasurementIncrement and StockLimit are optional
// extras; readers must tolerate them being absent.
type Line struct {
	ProductID            string    `json:"productId"`
	OptionID             string    `json:"variantOrCategoryId"`
	Quantity             float64   `json:"quantity"`
	UnitPrice            float64   `json:"unitPrice"`
	PriceKind            PriceKind `json:"priceKind"`
	MeasurementIncrement float64   `json:"measurementIncrement,omitempty"`
	StockLimit           *float64  `json:"stockLimit,omitempty"`
}

type lineKey struct {
	productID string
	optionID  string
}

func (l Line) key() lineKey { return lineKey{l.ProductID, l.OptionID} }

// IsWeight reports whether the line is priced per kg.
func (l Line) IsWeight() bool { return l.PriceKind == PerWeight }

func (l Line) increment() float64 {
	if l.MeasurementIncrement > 0 {
		return l.MeasurementIncrement
	}
	return catalog.DefaultMeasurementIncrement
}

// Round snaps qty to what this line can hold.
func (l Line) Round(qty float64) float64 {
	return RoundQuantity(qty, l.PriceKind, l.increment())
}

// MakeLine builds a line for p. An empty optionID selects the product's
// default option. unitPrice is the selected option's price (per kg for weight
// products) or the display price, and is never refreshed afterwards.
func MakeLine(p catalog.NormalizedProduct, optionID string, qty float64) Line {
	if optionID == "" && p.DefaultOptionID != nil {
		optionID = *p.DefaultOptionID
	}
	l := Line{
		ProductID: p.ID,
		OptionID:  optionID,
		UnitPrice: p.DisplayPrice,
		PriceKind: PerUnit,
	}
	if p.IsWeightBased {
		l.PriceKind = PerWeight
		l.MeasurementIncrement = catalog.DefaultMeasurementIncrement
	}
	if o, ok := p.Option(optionID); ok {
		if o.Price > 0 {
			l.UnitPrice = o.Price
		}
		if p.IsWeightBased && o.MeasurementIncrement > 0 {
			l.MeasurementIncrement = o.MeasurementIncrement
		}
	}
	stock := p.TotalStock
	l.StockLimit = &stock
	l.Quantity = l.Round(qty)
	return l
}

// RoundQuantity floors count quantities to whole units and weight quantities
// down to a multiple of increment. Non-positive or non-finite input yields 0.
func RoundQuantity(qty float64, kind PriceKind, increment float64) float64 {
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		return 0
	}
	if kind != PerWeight {
		return math.Floor(qty + quantityEpsilon)
	}
	if increment <= 0 || math.IsNaN(increment) || math.IsInf(increment, 0) {
		increment = catalog.DefaultMeasurementIncrement
	}
	steps := math.Floor(qty/increment + quantityEpsilon)
	v, _ := decimal.NewFromFloat(steps).Mul(decimal.NewFromFloat(increment)).Round(quantityPlaces).Float64()
	return v
}

// clampQuantity caps qty at the line's stock limit, re-snapping to a valid step.
func (l Line) clampQuantity(qty float64) (float64, bool) {
	if l.StockLimit == nil || qty <= *l.StockLimit+quantityEpsilon {
		return qty, false
	}
	return l.Round(*l.StockLimit), true
}

// LineTotal is unitPrice × quantity rounded half away from zero to cents.
func LineTotal(l Line) float64 {
	v, _ := lineTotal(l).Float64()
	return v
}

func lineTotal(l Line) decimal.Decimal {
	return decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromFloat(l.Quantity)).Round(2)
}

// CartTotal sums line totals.
func CartTotal(lines []Line) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(lineTotal(l))
	}
	v, _ := sum.Float64()
	return v
}

// CountItems counts unit lines by quantity and each weight line as one item.
func CountItems(lines []Line) int {
	n := 0
	for _, l := range lines {
		if l.IsWeight() {
			n++
			continue
		}
		n += int(l.Quantity)
	}
	return n
}

// sanitize drops unusable persisted lines and fills defaults.
func sanitize(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" {
			continue
		}
		if l.PriceKind != PerWeight {
			l.PriceKind = PerUnit
		}
		l.Quantity = l.Round(l.Quantity)
		if l.Quantity <= 0 {
			continue
		}
		out = append(out, l)
	}
	return out
}

func copyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		if l.StockLimit != nil {
			v := *l.StockLimit
			l.StockLimit = &v
		}
		out[i] = l
	}
	return out
}
