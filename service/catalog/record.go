package catalog

// Kind identifies which catalog shape governs a record's price and stock.
type Kind string

const (
	KindUnit   Kind = "unit"   // count-priced, optional variants
	KindWeight Kind = "weight" // priced per kg through size categories
)

// StatusActive is the only size category status that counts toward stock and price.
const StatusActive = "active"

// Variant is a purchasable option of a unit product.
type Variant struct {
	ID        string   `mapstructure:"id" json:"id"`
	Label     string   `mapstructure:"label" json:"label"`
	Price     float64  `mapstructure:"price" json:"price"`
	SalePrice *float64 `mapstructure:"salePrice" json:"salePrice,omitempty"`
	Stock     float64  `mapstructure:"stock" json:"stock"`
	Status    string   `mapstructure:"status" json:"status,omitempty"`
}

// active reports whether the variant is sellable; a missing status means active.
func (v Variant) active() bool {
	return v.Status == "" || v.Status == StatusActive
}

// SizeCategory is a purchasable option of a weight product. Stock is in kg.
type SizeCategory struct {
	ID                   string   `mapstructure:"id" json:"id"`
	Label                string   `mapstructure:"label" json:"label"`
	PricePerKg           float64  `mapstructure:"pricePerKg" json:"pricePerKg"`
	Stock                float64  `mapstructure:"stock" json:"stock"`
	Status               string   `mapstructure:"status" json:"status"`
	MinWeight            *float64 `mapstructure:"minWeight" json:"minWeight,omitempty"`
	MaxWeight            *float64 `mapstructure:"maxWeight" json:"maxWeight,omitempty"`
	MeasurementIncrement float64  `mapstructure:"measurementIncrement" json:"measurementIncrement,omitempty"`
}

func (c SizeCategory) active() bool {
	return c.Status == StatusActive
}

// VariantSummary is an aggregate precomputed upstream.
type VariantSummary struct {
	TotalStock *float64 `mapstructure:"totalStock" json:"totalStock,omitempty"`
}

// UpstreamPriceRange is the optional range a weight listing may already carry.
type UpstreamPriceRange struct {
	Min *float64 `mapstructure:"min" json:"min,omitempty"`
	Max *float64 `mapstructure:"max" json:"max,omitempty"`
}

// PriceRange is a normalized [Min, Max] interval with Min <= Max.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Record is a raw catalog record: either *UnitProduct or *WeightProduct.
// The concrete type is chosen once by DecodeRecord.
type Record interface {
	RecordID() string
	Kind() Kind
	record()
}

// UnitProduct is priced per item. Variants, when non-empty, govern stock.
type UnitProduct struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Image          string          `json:"image,omitempty"`
	Images         []string        `json:"images,omitempty"`
	Price          float64         `json:"price"`
	Stock          float64         `json:"stock"`
	Variants       []Variant       `json:"variants,omitempty"`
	VariantSummary *VariantSummary `json:"variantSummary,omitempty"`
}

func (p *UnitProduct) RecordID() string { return p.ID }
func (p *UnitProduct) Kind() Kind       { return KindUnit }
func (p *UnitProduct) record()          {}

// WeightProduct is priced per kg through its size categories.
type WeightProduct struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Image          string              `json:"image,omitempty"`
	Images         []string            `json:"images,omitempty"`
	SizeCategories []SizeCategory      `json:"sizeCategories"`
	PriceRange     *UpstreamPriceRange `json:"priceRange,omitempty"`
}

func (p *WeightProduct) RecordID() string { return p.ID }
func (p *WeightProduct) Kind() Kind       { return KindWeight }
func (p *WeightProduct) record()          {}

// hasSizeCategories reports whether r is governed by size categories.
func hasSizeCategories(r Record) bool {
	w, ok := r.(*WeightProduct)
	return ok && len(w.SizeCategories) > 0
}
