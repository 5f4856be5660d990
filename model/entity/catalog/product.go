package catalog

import (
	"time"

	"gorm.io/datatypes"
)

// Product kinds stored in farm_product.kind.
const (
	KindUnit   = "unit"
	KindWeight = "weight"
)

// Product represents farm_product table. Unit products use Price/Stock and
// optional Variants; weight products use SizeCategories.
type Product struct {
	EntityID       uint           `gorm:"column:entity_id;primaryKey;autoIncrement" json:"entity_id,omitempty"`
	ProductID      string         `gorm:"column:product_id;type:varchar(64);not null;uniqueIndex" json:"product_id"`
	Kind           string         `gorm:"column:kind;type:varchar(16);not null;index" json:"kind"`
	Name           string         `gorm:"column:name;type:varchar(255)" json:"name"`
	Image          string         `gorm:"column:image;type:varchar(512)" json:"image,omitempty"`
	Images         datatypes.JSON `gorm:"column:images" json:"images,omitempty"`
	Price          float64        `gorm:"column:price;type:decimal(20,6);not null;default:0" json:"price"`
	Stock          float64        `gorm:"column:stock;type:decimal(12,4);not null;default:0" json:"stock"`
	PriceMin       *float64       `gorm:"column:price_min;type:decimal(20,6)" json:"price_min,omitempty"`
	PriceMax       *float64       `gorm:"column:price_max;type:decimal(20,6)" json:"price_max,omitempty"`
	VariantSummary datatypes.JSON `gorm:"column:variant_summary" json:"variant_summary,omitempty"`
	Position       int            `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Variants       []Variant      `gorm:"foreignKey:EntityID;references:EntityID" json:"variants,omitempty"`
	SizeCategories []SizeCategory `gorm:"foreignKey:EntityID;references:EntityID" json:"size_categories,omitempty"`
}

func (Product) TableName() string {
	return "farm_product"
}
