package catalog

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"farmstore.GO/core/cache"
)

const (
	cacheTagUnit    = "catalog:unit"
	cacheTagWeight  = "catalog:weight"
	cacheTagProduct = "catalog:product"
)

// ProductPage is a normalized listing page.
type ProductPage struct {
	Products []NormalizedProduct `json:"products"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
}

func (p *ProductPage) clone() *ProductPage {
	out := *p
	out.Products = make([]NormalizedProduct, len(p.Products))
	for i, np := range p.Products {
		out.Products[i] = np.Clone()
	}
	return &out
}

// Service serves normalized products from a Source, caching pages and
// single products in a core/cache.Cache. Callers get their own copies.
type Service struct {
	src        Source
	cache      *cache.Cache
	ttl        int64
	normalizer *Normalizer
}

// NewService wires a Service. A nil cache disables caching; a nil normalizer
// uses the package default. ttl is in seconds, 0 means no expiry.
func NewService(src Source, c *cache.Cache, ttl int64, n *Normalizer) *Service {
	if n == nil {
		n = defaultNormalizer
	}
	return &Service{src: src, cache: c, ttl: ttl, normalizer: n}
}

// Normalizer returns the normalizer used by the service.
func (s *Service) Normalizer() *Normalizer { return s.normalizer }

// List returns one normalized page of the listing for kind.
func (s *Service) List(ctx context.Context, kind Kind, page Page) (*ProductPage, error) {
	page = page.Normalize()
	tag := kindTag(kind)
	if s.cache != nil {
		if v, ok := s.cache.GetN(tag, page.Number, page.Size); ok {
			return v.(*ProductPage).clone(), nil
		}
	}

	var (
		listing *Listing
		err     error
	)
	switch kind {
	case KindWeight:
		listing, err = s.src.ListWeightProducts(ctx, page)
	default:
		listing, err = s.src.ListUnitProducts(ctx, page)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s products: %w", kind, err)
	}
	for _, w := range listing.Warnings {
		log.Printf("catalog: %s listing: %s", kind, w)
	}

	out := &ProductPage{
		Products: s.normalizer.NormalizeAll(listing.Records),
		Total:    listing.Total,
		Page:     page.Number,
		PageSize: page.Size,
	}
	if s.cache != nil {
		s.cache.SetN([]interface{}{tag, page.Number, page.Size}, out.clone(), s.ttl, []string{tag})
	}
	return out, nil
}

// FetchAll loads the same page of both listings concurrently and returns unit
// products followed by weight products.
func (s *Service) FetchAll(ctx context.Context, page Page) ([]NormalizedProduct, error) {
	var units, weights *ProductPage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		units, err = s.List(gctx, KindUnit, page)
		return err
	})
	g.Go(func() error {
		var err error
		weights, err = s.List(gctx, KindWeight, page)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]NormalizedProduct, 0, len(units.Products)+len(weights.Products))
	out = append(out, units.Products...)
	out = append(out, weights.Products...)
	return out, nil
}

// Product returns a single normalized product or ErrNotFound.
func (s *Service) Product(ctx context.Context, id string) (NormalizedProduct, error) {
	if s.cache != nil {
		if v, ok := s.cache.GetN(cacheTagProduct, id); ok {
			return v.(NormalizedProduct).Clone(), nil
		}
	}
	rec, err := s.src.FindRecord(ctx, id)
	if err != nil {
		return NormalizedProduct{}, err
	}
	p := s.normalizer.Normalize(rec)
	if s.cache != nil {
		s.cache.SetN([]interface{}{cacheTagProduct, id}, p.Clone(), s.ttl, []string{cacheTagProduct, kindTag(p.Kind)})
	}
	return p, nil
}

// Invalidate drops cached pages and products of kind. An empty kind drops everything.
func (s *Service) Invalidate(kind Kind) {
	if s.cache == nil {
		return
	}
	if kind == "" {
		s.cache.DeleteByTag(cacheTagUnit)
		s.cache.DeleteByTag(cacheTagWeight)
		s.cache.DeleteByTag(cacheTagProduct)
		return
	}
	s.cache.DeleteByTag(kindTag(kind))
}

func kindTag(kind Kind) string {
	if kind == KindWeight {
		return cacheTagWeight
	}
	return cacheTagUnit
}
