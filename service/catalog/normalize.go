package catalog

// DefaultMeasurementIncrement is the weight step (kg) used when a size
// category does not specify one.
const DefaultMeasurementIncrement = 0.25

// Option is a purchasable choice of a product: a variant or a size category.
type Option struct {
	ID                   string   `json:"id"`
	Label                string   `json:"label"`
	Price                float64  `json:"price"`
	SalePrice            *float64 `json:"salePrice,omitempty"`
	Stock                float64  `json:"stock"`
	Active               bool     `json:"active"`
	MeasurementIncrement float64  `json:"measurementIncrement,omitempty"`
	MinWeight            *float64 `json:"minWeight,omitempty"`
	MaxWeight            *float64 `json:"maxWeight,omitempty"`
}

// NormalizedProduct is the single shape the display layer and the cart consume.
type NormalizedProduct struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Kind            Kind        `json:"kind"`
	Image           string      `json:"image,omitempty"`
	DisplayPrice    float64     `json:"displayPrice"`
	PriceRange      *PriceRange `json:"priceRange"`
	TotalStock      float64     `json:"totalStock"`
	IsWeightBased   bool        `json:"isWeightBased"`
	HasSalePrice    bool        `json:"hasSalePrice"`
	DefaultOptionID *string     `json:"defaultVariantOrCategoryId"`
	Options         []Option    `json:"options,omitempty"`
}

// Option looks up an option by id.
func (p NormalizedProduct) Option(id string) (Option, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// InStock reports whether anything can be added to a cart.
func (p NormalizedProduct) InStock() bool {
	return p.TotalStock > 0
}

// Clone returns a deep copy that shares no pointers or slices with p.
func (p NormalizedProduct) Clone() NormalizedProduct {
	if p.PriceRange != nil {
		r := *p.PriceRange
		p.PriceRange = &r
	}
	if p.DefaultOptionID != nil {
		id := *p.DefaultOptionID
		p.DefaultOptionID = &id
	}
	if p.Options != nil {
		opts := make([]Option, len(p.Options))
		for i, o := range p.Options {
			o.SalePrice = copyFloat(o.SalePrice)
			o.MinWeight = copyFloat(o.MinWeight)
			o.MaxWeight = copyFloat(o.MaxWeight)
			opts[i] = o
		}
		p.Options = opts
	}
	return p
}

// Normalizer turns records into NormalizedProducts. The zero value is usable.
type Normalizer struct {
	// DefaultIncrement replaces a missing or non-positive measurementIncrement.
	DefaultIncrement float64
	// OnStockMismatch receives variant summary disagreements; nil logs them.
	OnStockMismatch func(StockMismatch)
}

// NewNormalizer returns a Normalizer with the default increment.
func NewNormalizer() *Normalizer {
	return &Normalizer{DefaultIncrement: DefaultMeasurementIncrement}
}

var defaultNormalizer = NewNormalizer()

// Normalize uses the package default Normalizer.
func Normalize(r Record) NormalizedProduct { return defaultNormalizer.Normalize(r) }

// ResolveStock uses the package default Normalizer.
func ResolveStock(r Record) float64 { return defaultNormalizer.ResolveStock(r) }

// ResolvePrice uses the package default Normalizer.
func ResolvePrice(r Record) PriceResult { return defaultNormalizer.ResolvePrice(r) }

// Normalize derives a NormalizedProduct from r. It has no side effects other
// than the optional mismatch report and returns equal output for equal input.
func (n *Normalizer) Normalize(r Record) NormalizedProduct {
	if r == nil {
		return NormalizedProduct{}
	}
	price := n.ResolvePrice(r)
	out := NormalizedProduct{
		ID:            r.RecordID(),
		Kind:          r.Kind(),
		DisplayPrice:  price.DisplayPrice,
		PriceRange:    price.PriceRange,
		HasSalePrice:  price.HasSalePrice,
		TotalStock:    n.ResolveStock(r),
		IsWeightBased: hasSizeCategories(r),
	}

	switch p := r.(type) {
	case *WeightProduct:
		out.Name = p.Name
		out.Image = firstImage(p.Image, p.Images)
		for _, c := range p.SizeCategories {
			out.Options = append(out.Options, Option{
				ID:                   c.ID,
				Label:                c.Label,
				Price:                nonNegative(c.PricePerKg),
				Stock:                nonNegative(c.Stock),
				Active:               c.active(),
				MeasurementIncrement: n.increment(c.MeasurementIncrement),
				MinWeight:            copyFloat(c.MinWeight),
				MaxWeight:            copyFloat(c.MaxWeight),
			})
		}
	case *UnitProduct:
		out.Name = p.Name
		out.Image = firstImage(p.Image, p.Images)
		for _, v := range p.Variants {
			out.Options = append(out.Options, Option{
				ID:        v.ID,
				Label:     v.Label,
				Price:     nonNegative(v.Price),
				SalePrice: copyFloat(v.SalePrice),
				Stock:     nonNegative(v.Stock),
				Active:    v.active(),
			})
		}
	}

	for _, o := range out.Options {
		if o.Active {
			id := o.ID
			out.DefaultOptionID = &id
			break
		}
	}
	return out
}

// NormalizeAll normalizes records in order.
func (n *Normalizer) NormalizeAll(records []Record) []NormalizedProduct {
	out := make([]NormalizedProduct, 0, len(records))
	for _, r := range records {
		out = append(out, n.Normalize(r))
	}
	return out
}

func (n *Normalizer) increment(v float64) float64 {
	v = finite(v)
	if v > 0 {
		return v
	}
	if n.DefaultIncrement > 0 {
		return n.DefaultIncrement
	}
	return DefaultMeasurementIncrement
}

func firstImage(image string, images []string) string {
	if image != "" {
		return image
	}
	for _, img := range images {
		if img != "" {
			return img
		}
	}
	return ""
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := finite(*v)
	return &c
}
