package cmd

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"farmstore.GO/api"
	_ "farmstore.GO/api/cart"
	_ "farmstore.GO/api/catalog"
	graphqlApi "farmstore.GO/api/graphql"
	"farmstore.GO/config"
	"farmstore.GO/core/auth"
	cartRepo "farmstore.GO/model/repository/cart"
	catalogRepo "farmstore.GO/model/repository/catalog"
)

func init() {
	api.RegisterGET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the catalog, cart and GraphQL HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		Serve()
	},
}

// OpenDB connects, pings and migrates the catalog and cart tables.
func OpenDB() (*gorm.DB, error) {
	db, err := config.NewDB()
	if err != nil {
		return nil, err
	}
	sqldb, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqldb.Ping(); err != nil {
		return nil, err
	}
	if err := catalogRepo.AutoMigrate(db); err != nil {
		return nil, err
	}
	if err := cartRepo.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// NewServer assembles the echo server: registered /api modules behind auth,
// root routes and GraphQL.
func NewServer(db *gorm.DB) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if config.AppConfig != nil && config.AppConfig.Debug {
				log.Printf("Request duration: %d ms", time.Since(start).Milliseconds())
			}
			return err
		}
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware())
	api.ApplyModules(apiGroup, db)
	api.ApplyRoutes(e, db)
	graphqlApi.RegisterGraphQLRoutes(e, db)
	return e
}

// Serve connects to the database and blocks serving HTTP on PORT.
func Serve() {
	config.LoadAppConfig()

	db, err := OpenDB()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	log.Println("Database connection successful.")

	e := NewServer(db)
	port := config.AppConfig.Port
	log.Printf("Server running on :%s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
