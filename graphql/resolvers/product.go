package resolvers

import (
	"context"
	"errors"
	"fmt"

	"farmstore.GO/graphql"
	gqlmodels "farmstore.GO/graphql/models"
	"farmstore.GO/service/catalog"
)

func toProduct(p catalog.NormalizedProduct) *gqlmodels.Product {
	out := &gqlmodels.Product{
		ID:              p.ID,
		Name:            p.Name,
		Kind:            string(p.Kind),
		DisplayPrice:    p.DisplayPrice,
		TotalStock:      p.TotalStock,
		IsWeightBased:   p.IsWeightBased,
		HasSalePrice:    p.HasSalePrice,
		InStock:         p.InStock(),
		DefaultOptionID: p.DefaultOptionID,
		Options:         make([]*gqlmodels.ProductOption, 0, len(p.Options)),
	}
	if p.Image != "" {
		img := p.Image
		out.Image = &img
	}
	if p.PriceRange != nil {
		out.PriceRange = &gqlmodels.PriceRange{Min: p.PriceRange.Min, Max: p.PriceRange.Max}
	}
	for _, o := range p.Options {
		opt := &gqlmodels.ProductOption{
			ID:        o.ID,
			Label:     o.Label,
			Price:     o.Price,
			SalePrice: o.SalePrice,
			Stock:     o.Stock,
			Active:    o.Active,
			MinWeight: o.MinWeight,
			MaxWeight: o.MaxWeight,
		}
		if o.MeasurementIncrement > 0 {
			inc := o.MeasurementIncrement
			opt.MeasurementIncrement = &inc
		}
		out.Options = append(out.Options, opt)
	}
	return out
}

func toPage(products []catalog.NormalizedProduct, total int64, page catalog.Page) *gqlmodels.ProductPage {
	items := make([]*gqlmodels.Product, 0, len(products))
	for _, p := range products {
		items = append(items, toProduct(p))
	}
	totalPages := int32((total + int64(page.Size) - 1) / int64(page.Size))
	if totalPages < 1 {
		totalPages = 1
	}
	return &gqlmodels.ProductPage{
		Items:      items,
		TotalCount: int32(total),
		PageInfo: &gqlmodels.PageInfo{
			PageSize:    int32(page.Size),
			CurrentPage: int32(page.Number),
			TotalPages:  totalPages,
		},
	}
}

// Products lists one kind, or both kinds (units first) when kind is omitted.
func (r *Resolver) Products(ctx context.Context, args graphql.ProductsArgs) (*gqlmodels.ProductPage, error) {
	page := pageFromArgs(args.PageSize, args.CurrentPage)
	if args.Kind == nil || *args.Kind == "" {
		products, err := r.catalogSvc.FetchAll(ctx, page)
		if err != nil {
			return nil, err
		}
		return toPage(products, int64(len(products)), page), nil
	}
	kind := catalog.Kind(*args.Kind)
	if kind != catalog.KindUnit && kind != catalog.KindWeight {
		return nil, fmt.Errorf("unknown kind %q", *args.Kind)
	}
	res, err := r.catalogSvc.List(ctx, kind, page)
	if err != nil {
		return nil, err
	}
	return toPage(res.Products, res.Total, page), nil
}

// Product returns null for an unknown id.
func (r *Resolver) Product(ctx context.Context, args graphql.ProductArgs) (*gqlmodels.Product, error) {
	p, err := r.catalogSvc.Product(ctx, args.ID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toProduct(p), nil
}
