package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Catalog listings and GraphQL are public and read-only
	return []string{
		"/api/catalog/products",
		"/api/catalog/fish-products",
		"/api/catalog/records/:id",
		"/api/catalog/normalized",
		"/api/catalog/normalized/:id",
		"/graphql",
	}
}
