package resolvers

import (
	"context"

	"farmstore.GO/graphql"
	gqlmodels "farmstore.GO/graphql/models"
	"farmstore.GO/service/search"
)

// Search delegates to the Elasticsearch search service.
func (r *Resolver) Search(ctx context.Context, args graphql.SearchArgs) (*gqlmodels.ProductPage, error) {
	if r.searchSvc == nil {
		return nil, search.ErrNotConfigured
	}
	page := pageFromArgs(args.PageSize, args.CurrentPage)
	res, err := r.searchSvc.Search(ctx, args.Query, page)
	if err != nil {
		return nil, err
	}
	return toPage(res.Products, int64(res.Total), page), nil
}
