// Package jobs registers the catalog maintenance cron jobs.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"farmstore.GO/config"
	"farmstore.GO/cron"
	catalogRepo "farmstore.GO/model/repository/catalog"
	"farmstore.GO/service/catalog"
	"farmstore.GO/service/search"
)

const (
	batchSize  = 500
	jobTimeout = 10 * time.Minute
)

func init() {
	cron.Register("catalogindex", config.GetEnv("CATALOG_INDEX_SCHEDULE", "@every 30m"), runWithDB(func(ctx context.Context, db *gorm.DB) error {
		n, err := IndexCatalog(ctx, db, search.NewServiceFromEnv(nil))
		if err == nil {
			log.Printf("catalogindex: indexed %d records", n)
		}
		return err
	}))
	cron.Register("catalogaudit", config.GetEnv("CATALOG_AUDIT_SCHEDULE", "@hourly"), runWithDB(func(ctx context.Context, db *gorm.DB) error {
		findings, err := AuditCatalog(ctx, db)
		for _, f := range findings {
			log.Printf("catalogaudit: %s", f)
		}
		if err == nil {
			log.Printf("catalogaudit: %d findings", len(findings))
		}
		return err
	}))
}

func runWithDB(fn func(ctx context.Context, db *gorm.DB) error) func(...string) {
	return func(...string) {
		db, err := config.NewDB()
		if err != nil {
			log.Printf("cron: database connection failed: %v", err)
			return
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := fn(ctx, db); err != nil {
			log.Printf("cron: %v", err)
		}
	}
}

// AuditCatalog compares stored SQL aggregates with normalized stock and prices.
func AuditCatalog(ctx context.Context, db *gorm.DB) ([]catalog.AuditFinding, error) {
	repo, err := catalogRepo.NewCatalogRepository(db)
	if err != nil {
		return nil, err
	}
	records, err := repo.AllRecords(ctx, batchSize)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return catalog.NewNormalizer().Audit(ctx, records, repo)
}

// IndexCatalog pushes every stored record into the search index.
func IndexCatalog(ctx context.Context, db *gorm.DB, s *search.Service) (int, error) {
	repo, err := catalogRepo.NewCatalogRepository(db)
	if err != nil {
		return 0, err
	}
	records, err := repo.AllRecords(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}
	return s.Index(ctx, records)
}
