package catalog

// Variant represents farm_product_variant table
type Variant struct {
	ValueID   uint     `gorm:"column:value_id;primaryKey;autoIncrement" json:"value_id,omitempty"`
	EntityID  uint     `gorm:"column:entity_id;index" json:"entity_id,omitempty"`
	Code      string   `gorm:"column:code;type:varchar(64);not null" json:"code"`
	Label     string   `gorm:"column:label;type:varchar(255)" json:"label"`
	Price     float64  `gorm:"column:price;type:decimal(20,6);not null;default:0" json:"price"`
	SalePrice *float64 `gorm:"column:sale_price;type:decimal(20,6)" json:"sale_price,omitempty"`
	Stock     float64  `gorm:"column:stock;type:decimal(12,4);not null;default:0" json:"stock"`
	Status    string   `gorm:"column:status;type:varchar(32)" json:"status,omitempty"`
	Position  int      `gorm:"column:position;not null;default:0" json:"position"`
}

func (Variant) TableName() string {
	return "farm_product_variant"
}
