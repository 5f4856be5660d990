package resolvers

import (
	"farmstore.GO/service/cart"
	"farmstore.GO/service/catalog"
	"farmstore.GO/service/search"
)

// Resolver is the graphql-go root resolver. Methods live in product.go,
// search.go and cart.go.
type Resolver struct {
	catalogSvc *catalog.Service
	// searchSvc may be nil; the search field then errors.
	searchSvc *search.Service
	carts     cart.Persistence
}

func NewResolver(c *catalog.Service, s *search.Service, carts cart.Persistence) *Resolver {
	return &Resolver{catalogSvc: c, searchSvc: s, carts: carts}
}

func pageFromArgs(pageSize, currentPage int32) catalog.Page {
	return catalog.Page{Number: int(currentPage), Size: int(pageSize)}.Normalize()
}
