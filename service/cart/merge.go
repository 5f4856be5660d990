package cart

import "github.com/shopspring/decimal"

// Merge combines a server cart with a local one. Lines with the same
// (productId, variantOrCategoryId) have their quantities summed and keep the
// server's unit price; remaining lines follow in server order, then local order.
// Stock is not re-checked here.
func Merge(server, local []Line) []Line {
	out := make([]Line, 0, len(server)+len(local))
	index := make(map[lineKey]int, len(server))
	for _, l := range copyLines(server) {
		if i, ok := index[l.key()]; ok {
			out[i].Quantity = addQuantity(out[i].Quantity, l.Quantity)
			continue
		}
		index[l.key()] = len(out)
		out = append(out, l)
	}
	for _, l := range copyLines(local) {
		i, ok := index[l.key()]
		if !ok {
			index[l.key()] = len(out)
			out = append(out, l)
			continue
		}
		m := &out[i]
		m.Quantity = addQuantity(m.Quantity, l.Quantity)
		if m.MeasurementIncrement == 0 {
			m.MeasurementIncrement = l.MeasurementIncrement
		}
		if m.StockLimit == nil {
			m.StockLimit = l.StockLimit
		}
	}
	return out
}

func addQuantity(a, b float64) float64 {
	v, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(quantityPlaces).Float64()
	return v
}
