// Standalone GraphQL server: run with go run ./cmd/graphql
package main

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"farmstore.GO/api"
	graphqlApi "farmstore.GO/api/graphql"
	"farmstore.GO/cmd"
	"farmstore.GO/config"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()

	db, err := cmd.OpenDB()
	if err != nil {
		log.Fatal("db:", err)
	}

	e := echo.New()
	e.Use(middleware.Recover())
	graphqlApi.RegisterGraphQLRoutes(e, db)
	api.ApplyRoutes(e, db)

	// ASCII banner on start (random font each run)
	gqlFonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "univers", "doom", "larry3d", "puffy", "rectangles", "bigchief", "cosmic"}
	fig := figure.NewFigure("farmstore GQL ->", gqlFonts[rand.Intn(len(gqlFonts))], true)
	fig.Print()
	fmt.Println("Standalone GraphQL server")

	port := config.AppConfig.Port
	log.Printf("GraphQL at http://localhost:%s/graphql  Playground at http://localhost:%s/playground", port, port)
	e.Logger.Fatal(e.Start(":" + port))
}
