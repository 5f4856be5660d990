package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogEntity "farmstore.GO/model/entity/catalog"
	catalogService "farmstore.GO/service/catalog"
)

// CatalogRepository stores both catalog shapes and serves them as
// catalog.Records. It implements catalog.Source, catalog.RecordWriter and
// catalog.AggregateSource.
type CatalogRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewCatalogRepository(db *gorm.DB) (*CatalogRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &CatalogRepository{db: db, sqlDB: sqlDB}, nil
}

// AutoMigrate creates the catalog tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalogEntity.Product{},
		&catalogEntity.Variant{},
		&catalogEntity.SizeCategory{},
	)
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *CatalogRepository) list(ctx context.Context, kind string, page catalogService.Page) (*catalogService.Listing, error) {
	page = page.Normalize()
	q := r.db.WithContext(ctx).Model(&catalogEntity.Product{}).Where("kind = ?", kind)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count %s products: %w", kind, err)
	}

	var products []catalogEntity.Product
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Preload("Variants", byPosition).
		Preload("SizeCategories", byPosition).
		Order("position ASC, entity_id ASC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list %s products: %w", kind, err)
	}

	listing := &catalogService.Listing{
		Records:  make([]catalogService.Record, 0, len(products)),
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	}
	for i := range products {
		rec, err := ToRecord(&products[i])
		if err != nil {
			listing.Warnings = append(listing.Warnings, fmt.Sprintf("product %s: %v", products[i].ProductID, err))
			continue
		}
		listing.Records = append(listing.Records, rec)
	}
	return listing, nil
}

func (r *CatalogRepository) ListUnitProducts(ctx context.Context, page catalogService.Page) (*catalogService.Listing, error) {
	return r.list(ctx, catalogEntity.KindUnit, page)
}

func (r *CatalogRepository) ListWeightProducts(ctx context.Context, page catalogService.Page) (*catalogService.Listing, error) {
	return r.list(ctx, catalogEntity.KindWeight, page)
}

// FindByProductID loads a product with its options.
func (r *CatalogRepository) FindByProductID(ctx context.Context, productID string) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", byPosition).
		Preload("SizeCategories", byPosition).
		Where("product_id = ?", productID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalogService.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) FindRecord(ctx context.Context, productID string) (catalogService.Record, error) {
	p, err := r.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToRecord(p)
}

// AllRecords streams every product in batches and returns them as records.
func (r *CatalogRepository) AllRecords(ctx context.Context, batchSize int) ([]catalogService.Record, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	var out []catalogService.Record
	var batch []catalogEntity.Product
	res := r.db.WithContext(ctx).
		Preload("Variants", byPosition).
		Preload("SizeCategories", byPosition).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				rec, err := ToRecord(&batch[i])
				if err != nil {
					return fmt.Errorf("product %s: %w", batch[i].ProductID, err)
				}
				out = append(out, rec)
			}
			return nil
		})
	return out, res.Error
}

// UpsertRecord writes rec and replaces its options. created reports a new product.
func (r *CatalogRepository) UpsertRecord(ctx context.Context, rec catalogService.Record) (bool, error) {
	p, err := FromRecord(rec)
	if err != nil {
		return false, err
	}
	created := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing catalogEntity.Product
		err := tx.Select("entity_id", "position", "created_at").Where("product_id = ?", p.ProductID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			var maxPos sql.NullInt64
			if err := tx.Model(&catalogEntity.Product{}).Select("MAX(position)").Scan(&maxPos).Error; err != nil {
				return err
			}
			p.Position = int(maxPos.Int64) + 1
		case err != nil:
			return err
		default:
			p.EntityID = existing.EntityID
			p.Position = existing.Position
			p.CreatedAt = existing.CreatedAt
		}

		variants, categories := p.Variants, p.SizeCategories
		p.Variants, p.SizeCategories = nil, nil
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return err
		}
		if err := tx.Where("entity_id = ?", p.EntityID).Delete(&catalogEntity.Variant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entity_id = ?", p.EntityID).Delete(&catalogEntity.SizeCategory{}).Error; err != nil {
			return err
		}
		for i := range variants {
			variants[i].EntityID = p.EntityID
		}
		for i := range categories {
			categories[i].EntityID = p.EntityID
		}
		if len(variants) > 0 {
			if err := tx.Create(&variants).Error; err != nil {
				return err
			}
		}
		if len(categories) > 0 {
			if err := tx.Create(&categories).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("upsert product %s: %w", p.ProductID, err)
	}
	return created, nil
}

// Delete removes a product and its options.
func (r *CatalogRepository) Delete(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p catalogEntity.Product
		if err := tx.Select("entity_id").Where("product_id = ?", productID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return catalogService.ErrNotFound
			}
			return err
		}
		if err := tx.Where("entity_id = ?", p.EntityID).Delete(&catalogEntity.Variant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entity_id = ?", p.EntityID).Delete(&catalogEntity.SizeCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&catalogEntity.Product{}, p.EntityID).Error
	})
}
