package graphqlserver

import (
	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"gorm.io/gorm"

	"farmstore.GO/config"
	"farmstore.GO/core/cache"
	"farmstore.GO/graphql"
	"farmstore.GO/graphql/resolvers"
	cartRepo "farmstore.GO/model/repository/cart"
	catalogRepo "farmstore.GO/model/repository/catalog"
	"farmstore.GO/service/catalog"
	"farmstore.GO/service/search"
)

// NewResolver wires the root resolver against db: catalog repository behind a
// cached catalog.Service, Elasticsearch search from env and the cart repository.
func NewResolver(db *gorm.DB) (*resolvers.Resolver, error) {
	repo, err := catalogRepo.NewCatalogRepository(db)
	if err != nil {
		return nil, err
	}
	var ttl int64
	n := catalog.NewNormalizer()
	if config.AppConfig != nil {
		ttl = config.AppConfig.CatalogCacheTTL
		if config.AppConfig.DefaultIncrement > 0 {
			n.DefaultIncrement = config.AppConfig.DefaultIncrement
		}
	}
	svc := catalog.NewService(repo, cache.NewCache(), ttl, n)
	return resolvers.NewResolver(svc, search.NewServiceFromEnv(n), cartRepo.NewCartRepository(db)), nil
}

// NewSchema parses the schema against root.
func NewSchema(root *resolvers.Resolver) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), root, gql.UseFieldResolvers())
}

// NewSchemaFromDB is NewResolver followed by NewSchema.
func NewSchemaFromDB(db *gorm.DB) (*gql.Schema, error) {
	root, err := NewResolver(db)
	if err != nil {
		return nil, err
	}
	return NewSchema(root)
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
