package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"farmstore.GO/service/catalog"
)

// Listing paths served by api/catalog.
const (
	UnitListingPath   = "/api/catalog/products"
	WeightListingPath = "/api/catalog/fish-products"
	RecordPath        = "/api/catalog/records/"
)

// CatalogClient reads the raw listings of a farmstore server. It implements
// catalog.Source.
type CatalogClient struct {
	client
}

var _ catalog.Source = (*CatalogClient)(nil)

func NewCatalogClient(cfg Config) *CatalogClient {
	return &CatalogClient{client: newClient(cfg)}
}

// listingBody accepts both the paged envelope and a bare JSON array.
type listingBody struct {
	Products []map[string]interface{}
	Total    int64
	Page     int
	PageSize int
}

func (b *listingBody) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &b.Products); err != nil {
			return err
		}
		b.Total = int64(len(b.Products))
		return nil
	}
	var env struct {
		Products []map[string]interface{} `json:"products"`
		Total    int64                    `json:"total"`
		Page     int                      `json:"page"`
		PageSize int                      `json:"pageSize"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*b = listingBody(env)
	return nil
}

func (c *CatalogClient) list(ctx context.Context, path string, page catalog.Page) (*catalog.Listing, error) {
	page = page.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(page.Number))
	q.Set("pageSize", strconv.Itoa(page.Size))

	var body listingBody
	if err := c.do(ctx, http.MethodGet, path+"?"+q.Encode(), nil, nil, &body); err != nil {
		return nil, err
	}
	records, warnings := catalog.DecodeRecords(body.Products)
	out := &catalog.Listing{
		Records:  records,
		Total:    body.Total,
		Page:     body.Page,
		PageSize: body.PageSize,
		Warnings: warnings,
	}
	if out.Page == 0 {
		out.Page = page.Number
	}
	if out.PageSize == 0 {
		out.PageSize = page.Size
	}
	return out, nil
}

func (c *CatalogClient) ListUnitProducts(ctx context.Context, page catalog.Page) (*catalog.Listing, error) {
	return c.list(ctx, UnitListingPath, page)
}

func (c *CatalogClient) ListWeightProducts(ctx context.Context, page catalog.Page) (*catalog.Listing, error) {
	return c.list(ctx, WeightListingPath, page)
}

// FindRecord fetches one raw record; a 404 becomes catalog.ErrNotFound.
func (c *CatalogClient) FindRecord(ctx context.Context, id string) (catalog.Record, error) {
	var raw map[string]interface{}
	err := c.do(ctx, http.MethodGet, RecordPath+url.PathEscape(id), nil, nil, &raw)
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec, err := catalog.DecodeRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("remote: record %s: %w", id, err)
	}
	return rec, nil
}
