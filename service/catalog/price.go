package catalog

// PriceResult is the output of ResolvePrice.
type PriceResult struct {
	DisplayPrice float64
	PriceRange   *PriceRange
	HasSalePrice bool
}

// ResolvePrice returns the display price and, when prices differ, the range
// across purchasable options.
//
// Weight products prefer an upstream priceRange.min; the upstream range is
// only surfaced when its max exceeds its min. Without one, the display price
// is the lowest pricePerKg over active size categories. Unit products display
// their own price and never carry a range; a discounted variant only sets
// HasSalePrice.
func (n *Normalizer) ResolvePrice(r Record) PriceResult {
	switch p := r.(type) {
	case *WeightProduct:
		if up := p.PriceRange; up != nil && up.Min != nil {
			min := nonNegative(*up.Min)
			if up.Max != nil {
				max := nonNegative(*up.Max)
				if max > min {
					return PriceResult{DisplayPrice: min, PriceRange: &PriceRange{Min: min, Max: max}}
				}
			}
			return PriceResult{DisplayPrice: min}
		}
		min, rng := activeCategoryPrices(p.SizeCategories)
		return PriceResult{DisplayPrice: min, PriceRange: rng}
	case *UnitProduct:
		return PriceResult{DisplayPrice: nonNegative(p.Price), HasSalePrice: hasSalePrice(p)}
	}
	return PriceResult{}
}

func activeCategoryPrices(cats []SizeCategory) (float64, *PriceRange) {
	found := false
	var min, max float64
	for _, c := range cats {
		if !c.active() {
			continue
		}
		price := nonNegative(c.PricePerKg)
		if !found {
			min, max, found = price, price, true
			continue
		}
		if price < min {
			min = price
		}
		if price > max {
			max = price
		}
	}
	if !found {
		return 0, nil
	}
	if min == max {
		return min, nil
	}
	return min, &PriceRange{Min: min, Max: max}
}

// hasSalePrice reports whether any variant is discounted below its own price.
func hasSalePrice(p *UnitProduct) bool {
	for _, v := range p.Variants {
		if v.SalePrice == nil {
			continue
		}
		sp := finite(*v.SalePrice)
		if sp > 0 && sp < finite(v.Price) {
			return true
		}
	}
	return false
}
