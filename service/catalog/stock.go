package catalog

import (
	"log"
	"math"
)

// stockEpsilon is the tolerance used when comparing a precomputed aggregate
// with the recomputed sum.
const stockEpsilon = 1e-9

// StockMismatch is reported when an upstream variant summary disagrees with
// the sum of the variants it summarizes.
type StockMismatch struct {
	ProductID   string
	Precomputed float64
	Recomputed  float64
}

func logStockMismatch(m StockMismatch) {
	log.Printf("catalog: product %s variantSummary.totalStock=%v differs from variant sum %v", m.ProductID, m.Precomputed, m.Recomputed)
}

// finite maps NaN and infinities to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// nonNegative returns a finite value clamped at 0.
func nonNegative(v float64) float64 {
	v = finite(v)
	if v < 0 {
		return 0
	}
	return v
}

// ResolveStock returns the single total stock figure for r.
//
// Weight products sum the stock of active size categories (kg). Unit products
// with variants trust a positive precomputed summary, otherwise they sum the
// active variants (a missing status counts as active). Plain unit products
// use their own stock. The result is never negative.
func (n *Normalizer) ResolveStock(r Record) float64 {
	switch p := r.(type) {
	case *WeightProduct:
		var total float64
		for _, c := range p.SizeCategories {
			if c.active() {
				total += nonNegative(c.Stock)
			}
		}
		return nonNegative(total)
	case *UnitProduct:
		if len(p.Variants) == 0 {
			return nonNegative(p.Stock)
		}
		var sum float64
		for _, v := range p.Variants {
			if v.active() {
				sum += nonNegative(v.Stock)
			}
		}
		if p.VariantSummary != nil && p.VariantSummary.TotalStock != nil {
			pre := finite(*p.VariantSummary.TotalStock)
			if pre > 0 {
				if math.Abs(pre-sum) > stockEpsilon {
					n.reportMismatch(StockMismatch{ProductID: p.ID, Precomputed: pre, Recomputed: sum})
				}
				return pre
			}
		}
		return nonNegative(sum)
	}
	return 0
}

func (n *Normalizer) reportMismatch(m StockMismatch) {
	if n.OnStockMismatch != nil {
		n.OnStockMismatch(m)
		return
	}
	logStockMismatch(m)
}
