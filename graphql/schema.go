package graphql

import (
	_ "embed"
)

//go:embed schema.graphqls
var schema string

// Schema returns the storefront GraphQL schema.
func Schema() string {
	return schema
}

// ProductsArgs are the products query arguments (defaults in schema: pageSize=20, currentPage=1).
type ProductsArgs struct {
	Kind        *string
	PageSize    int32
	CurrentPage int32
}

type ProductArgs struct {
	ID string
}

// SearchArgs are the search query arguments.
type SearchArgs struct {
	Query       string
	PageSize    int32
	CurrentPage int32
}
