package models

// Product is a normalized catalog product as exposed over GraphQL.
type Product struct {
	ID              string
	Name            string
	Kind            string
	Image           *string
	DisplayPrice    float64
	PriceRange      *PriceRange
	TotalStock      float64
	IsWeightBased   bool
	HasSalePrice    bool
	InStock         bool
	DefaultOptionID *string
	Options         []*ProductOption
}

type PriceRange struct {
	Min float64
	Max float64
}

// ProductOption is a variant or a size category.
type ProductOption struct {
	ID                   string
	Label                string
	Price                float64
	SalePrice            *float64
	Stock                float64
	Active               bool
	MeasurementIncrement *float64
	MinWeight            *float64
	MaxWeight            *float64
}

type ProductPage struct {
	Items      []*Product
	TotalCount int32
	PageInfo   *PageInfo
}

type PageInfo struct {
	PageSize    int32
	CurrentPage int32
	TotalPages  int32
}
