package graphql

import (
	"net/http"

	"github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"farmstore.GO/config"
	graphqlpkg "farmstore.GO/graphql"
	"farmstore.GO/graphqlserver"
)

// RegisterGraphQLRoutes mounts /graphql and /playground on e.
func RegisterGraphQLRoutes(e *echo.Echo, db *gorm.DB) {
	schema, err := graphqlserver.NewSchemaFromDB(db)
	if err != nil {
		panic("graphql schema: " + err.Error())
	}
	registerRoutes(e, schema, cryptKey())
}

// RegisterGraphQLRoutesWithSchema registers /graphql with a prepared schema.
func RegisterGraphQLRoutesWithSchema(e *echo.Echo, schema *graphql.Schema, cryptKey string) {
	registerRoutes(e, schema, cryptKey)
}

func cryptKey() string {
	if config.AppConfig != nil {
		return config.AppConfig.CryptKey
	}
	return config.GetEnv("FARMSTORE_CRYPT_KEY", "")
}

func registerRoutes(e *echo.Echo, schema *graphql.Schema, key string) {
	h := customerContextMiddleware(graphqlserver.Handler(schema), key)
	e.POST("/graphql", echo.WrapHandler(h))
	e.GET("/graphql", echo.WrapHandler(h))
	e.GET("/playground", echo.WrapHandler(playgroundHandler()))
}

// customerContextMiddleware attaches the signed customer id, if any, for the cart field.
func customerContextMiddleware(next http.Handler, key string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := graphqlpkg.CustomerFromRequest(r, key); id != "" {
			r = r.WithContext(graphqlpkg.WithCustomerID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func playgroundHandler() http.Handler {
	html := `<!DOCTYPE html>
<html>
<head>
	<title>farmstore GraphQL Playground</title>
	<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/css/index.css"/>
</head>
<body>
	<div id="root"/>
	<script src="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/js/middleware.js"></script>
	<script>window.addEventListener('load', function() {
		GraphQLPlayground.init({ endpoint: '/graphql' });
	})</script>
</body>
</html>`
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	})
}
