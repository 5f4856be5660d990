package cart

import "time"

// CartItem represents farm_cart_item table: one server-side cart line per
// (customer, product, option).
type CartItem struct {
	ItemID               uint      `gorm:"column:item_id;primaryKey;autoIncrement" json:"item_id,omitempty"`
	CustomerID           string    `gorm:"column:customer_id;type:varchar(64);not null;uniqueIndex:idx_cart_line,priority:1" json:"customer_id"`
	ProductID            string    `gorm:"column:product_id;type:varchar(64);not null;uniqueIndex:idx_cart_line,priority:2" json:"product_id"`
	OptionID             string    `gorm:"column:option_id;type:varchar(64);not null;uniqueIndex:idx_cart_line,priority:3" json:"option_id"`
	Quantity             float64   `gorm:"column:quantity;type:decimal(12,4);not null;default:0" json:"quantity"`
	UnitPrice            float64   `gorm:"column:unit_price;type:decimal(20,6);not null;default:0" json:"unit_price"`
	PriceKind            string    `gorm:"column:price_kind;type:varchar(16);not null" json:"price_kind"`
	MeasurementIncrement float64   `gorm:"column:measurement_increment;type:decimal(12,4);not null;default:0" json:"measurement_increment"`
	StockLimit           *float64  `gorm:"column:stock_limit;type:decimal(12,4)" json:"stock_limit,omitempty"`
	Position             int       `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CartItem) TableName() string {
	return "farm_cart_item"
}
