package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a product id is not in the catalog.
var ErrNotFound = errors.New("catalog: product not found")

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Page selects a 1-based page of a listing.
type Page struct {
	Number int
	Size   int
}

// Normalize fills defaults and caps the page size.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the number of records before the page.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Size
}

// Listing is one page of raw records from a catalog source.
type Listing struct {
	Records  []Record
	Total    int64
	Page     int
	PageSize int
	// Warnings lists entries the source skipped because they could not be decoded.
	Warnings []string
}

// Source provides the two raw catalog listings.
type Source interface {
	ListUnitProducts(ctx context.Context, page Page) (*Listing, error)
	ListWeightProducts(ctx context.Context, page Page) (*Listing, error)
	// FindRecord returns ErrNotFound when id is unknown.
	FindRecord(ctx context.Context, id string) (Record, error)
}
