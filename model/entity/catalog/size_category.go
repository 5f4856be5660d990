package catalog

// SizeCategory represents farm_product_size_category table. Stock is in kg.
type SizeCategory struct {
	CategoryID           uint     `gorm:"column:category_id;primaryKey;autoIncrement" json:"category_id,omitempty"`
	EntityID             uint     `gorm:"column:entity_id;index" json:"entity_id,omitempty"`
	Code                 string   `gorm:"column:code;type:varchar(64);not null" json:"code"`
	Label                string   `gorm:"column:label;type:varchar(255)" json:"label"`
	PricePerKg           float64  `gorm:"column:price_per_kg;type:decimal(20,6);not null;default:0" json:"price_per_kg"`
	Stock                float64  `gorm:"column:stock;type:decimal(12,4);not null;default:0" json:"stock"`
	Status               string   `gorm:"column:status;type:varchar(32);not null" json:"status"`
	MinWeight            *float64 `gorm:"column:min_weight;type:decimal(12,4)" json:"min_weight,omitempty"`
	MaxWeight            *float64 `gorm:"column:max_weight;type:decimal(12,4)" json:"max_weight,omitempty"`
	MeasurementIncrement float64  `gorm:"column:measurement_increment;type:decimal(12,4);not null;default:0" json:"measurement_increment"`
	Position             int      `gorm:"column:position;not null;default:0" json:"position"`
}

func (SizeCategory) TableName() string {
	return "farm_product_size_category"
}
