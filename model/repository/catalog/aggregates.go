package catalog

import (
	"context"
	"database/sql"
	"errors"

	catalogEntity "farmstore.GO/model/entity/catalog"
	catalogService "farmstore.GO/service/catalog"
)

// SumActiveStock recomputes a product's sellable stock in SQL: active size
// categories for weight products, active or status-less variants for unit
// products with variants, the flat stock otherwise. Negative rows count as 0.
func (r *CatalogRepository) SumActiveStock(ctx context.Context, productID string) (float64, error) {
	const productQuery = `SELECT entity_id, kind, stock FROM farm_product WHERE product_id = ? LIMIT 1`
	var (
		entityID uint
		kind     string
		stock    sql.NullFloat64
	)
	err := r.sqlDB.QueryRowContext(ctx, productQuery, productID).Scan(&entityID, &kind, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, catalogService.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	if kind == catalogEntity.KindWeight {
		const q = `SELECT COALESCE(SUM(CASE WHEN stock > 0 THEN stock ELSE 0 END), 0)
			FROM farm_product_size_category
			WHERE entity_id = ? AND status = 'active'`
		var total float64
		err := r.sqlDB.QueryRowContext(ctx, q, entityID).Scan(&total)
		return total, err
	}

	const variantQuery = `SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN (status IS NULL OR status IN ('', 'active')) AND stock > 0 THEN stock ELSE 0 END), 0)
		FROM farm_product_variant
		WHERE entity_id = ?`
	var (
		count int64
		total float64
	)
	if err := r.sqlDB.QueryRowContext(ctx, variantQuery, entityID).Scan(&count, &total); err != nil {
		return 0, err
	}
	if count > 0 {
		return total, nil
	}
	if !stock.Valid || stock.Float64 < 0 {
		return 0, nil
	}
	return stock.Float64, nil
}

// ActivePriceBounds returns min/max price_per_kg over active size categories.
func (r *CatalogRepository) ActivePriceBounds(ctx context.Context, productID string) (float64, float64, bool, error) {
	const q = `SELECT MIN(sc.price_per_kg), MAX(sc.price_per_kg)
		FROM farm_product_size_category sc
		JOIN farm_product p ON p.entity_id = sc.entity_id
		WHERE p.product_id = ? AND sc.status = 'active'`
	var min, max sql.NullFloat64
	if err := r.sqlDB.QueryRowContext(ctx, q, productID).Scan(&min, &max); err != nil {
		return 0, 0, false, err
	}
	if !min.Valid || !max.Valid {
		return 0, 0, false, nil
	}
	return min.Float64, max.Float64, true, nil
}
