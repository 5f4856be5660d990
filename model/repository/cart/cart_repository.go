package cart

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cartEntity "farmstore.GO/model/entity/cart"
	cartService "farmstore.GO/service/cart"
)

// CartRepository is the server-side cart. It implements cart.Persistence; each
// call runs in a transaction and returns the customer's cart afterwards.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// AutoMigrate creates the cart table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&cartEntity.CartItem{})
}

func toLine(it cartEntity.CartItem) cartService.Line {
	return cartService.Line{
		ProductID:            it.ProductID,
		OptionID:             it.OptionID,
		Quantity:             it.Quantity,
		UnitPrice:            it.UnitPrice,
		PriceKind:            cartService.PriceKind(it.PriceKind),
		MeasurementIncrement: it.MeasurementIncrement,
		StockLimit:           it.StockLimit,
	}
}

func toItem(customerID string, l cartService.Line, position int) cartEntity.CartItem {
	kind := string(l.PriceKind)
	if kind == "" {
		kind = string(cartService.PerUnit)
	}
	return cartEntity.CartItem{
		CustomerID:           customerID,
		ProductID:            l.ProductID,
		OptionID:             l.OptionID,
		Quantity:             l.Quantity,
		UnitPrice:            l.UnitPrice,
		PriceKind:            kind,
		MeasurementIncrement: l.MeasurementIncrement,
		StockLimit:           l.StockLimit,
		Position:             position,
	}
}

func snapshot(tx *gorm.DB, customerID string) ([]cartService.Line, error) {
	var items []cartEntity.CartItem
	err := tx.Where("customer_id = ?", customerID).
		Order("position ASC, item_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	lines := make([]cartService.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, toLine(it))
	}
	return lines, nil
}

func lineScope(customerID, productID, optionID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("customer_id = ? AND product_id = ? AND option_id = ?", customerID, productID, optionID)
	}
}

func (r *CartRepository) write(ctx context.Context, customerID string, fn func(tx *gorm.DB) error) ([]cartService.Line, error) {
	var lines []cartService.Line
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		var err error
		lines, err = snapshot(tx, customerID)
		return err
	})
	return lines, err
}

func (r *CartRepository) Get(ctx context.Context, customerID string) ([]cartService.Line, error) {
	return snapshot(r.db.WithContext(ctx), customerID)
}

// Add increments an existing line by l.Quantity or appends a new one.
func (r *CartRepository) Add(ctx context.Context, customerID string, l cartService.Line) ([]cartService.Line, error) {
	return r.write(ctx, customerID, func(tx *gorm.DB) error {
		var maxPos sql.NullInt64
		if err := tx.Model(&cartEntity.CartItem{}).Where("customer_id = ?", customerID).Select("MAX(position)").Scan(&maxPos).Error; err != nil {
			return err
		}
		item := toItem(customerID, l, int(maxPos.Int64)+1)
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "customer_id"}, {Name: "product_id"}, {Name: "option_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":    gorm.Expr("quantity + ?", l.Quantity),
				"stock_limit": l.StockLimit,
				"updated_at":  time.Now(),
			}),
		}).Create(&item).Error
	})
}

// Update sets a line's quantity; 0 or less deletes it.
func (r *CartRepository) Update(ctx context.Context, customerID string, l cartService.Line) ([]cartService.Line, error) {
	return r.write(ctx, customerID, func(tx *gorm.DB) error {
		scoped := tx.Scopes(lineScope(customerID, l.ProductID, l.OptionID))
		if l.Quantity <= 0 {
			return scoped.Delete(&cartEntity.CartItem{}).Error
		}
		return scoped.Model(&cartEntity.CartItem{}).Updates(map[string]interface{}{
			"quantity":   l.Quantity,
			"updated_at": time.Now(),
		}).Error
	})
}

func (r *CartRepository) Remove(ctx context.Context, customerID, productID, optionID string) ([]cartService.Line, error) {
	return r.write(ctx, customerID, func(tx *gorm.DB) error {
		return tx.Scopes(lineScope(customerID, productID, optionID)).Delete(&cartEntity.CartItem{}).Error
	})
}

func (r *CartRepository) Clear(ctx context.Context, customerID string) ([]cartService.Line, error) {
	return r.write(ctx, customerID, func(tx *gorm.DB) error {
		return tx.Where("customer_id = ?", customerID).Delete(&cartEntity.CartItem{}).Error
	})
}

// Replace overwrites the customer's cart with lines, in order.
func (r *CartRepository) Replace(ctx context.Context, customerID string, lines []cartService.Line) ([]cartService.Line, error) {
	return r.write(ctx, customerID, func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customerID).Delete(&cartEntity.CartItem{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		items := make([]cartEntity.CartItem, 0, len(lines))
		for i, l := range lines {
			if l.ProductID == "" || l.Quantity <= 0 {
				continue
			}
			items = append(items, toItem(customerID, l, i+1))
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}
