package catalog

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"farmstore.GO/api"
	"farmstore.GO/config"
	"farmstore.GO/core/cache"
	catalogRepo "farmstore.GO/model/repository/catalog"
	catalogService "farmstore.GO/service/catalog"
)

func init() {
	api.RegisterModule(RegisterCatalogRoutes)
}

// ListingResponse is the wire shape of both raw listings and of normalized pages.
type ListingResponse struct {
	Products interface{} `json:"products"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
	Warnings []string    `json:"warnings,omitempty"`
}

func cacheTTL() int64 {
	if config.AppConfig != nil {
		return config.AppConfig.CatalogCacheTTL
	}
	return 0
}

func newNormalizer() *catalogService.Normalizer {
	n := catalogService.NewNormalizer()
	if config.AppConfig != nil && config.AppConfig.DefaultIncrement > 0 {
		n.DefaultIncrement = config.AppConfig.DefaultIncrement
	}
	return n
}

func pageParam(c echo.Context) catalogService.Page {
	n, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("pageSize"))
	return catalogService.Page{Number: n, Size: size}.Normalize()
}

func setDuration(c echo.Context, start time.Time) {
	c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
}

// RegisterCatalogRoutes mounts the raw listings, normalized products, import and audit.
func RegisterCatalogRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo, err := catalogRepo.NewCatalogRepository(db)
	if err != nil {
		log.Printf("catalog api disabled: %v", err)
		return
	}
	svc := catalogService.NewService(repo, cache.NewCache(), cacheTTL(), newNormalizer())
	registerRoutes(apiGroup, repo, svc)
}

func registerRoutes(apiGroup *echo.Group, repo *catalogRepo.CatalogRepository, svc *catalogService.Service) {
	g := apiGroup.Group("/catalog")

	rawListing := func(list func(c echo.Context, p catalogService.Page) (*catalogService.Listing, error)) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			listing, err := list(c, pageParam(c))
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			}
			setDuration(c, start)
			records := listing.Records
			if records == nil {
				records = []catalogService.Record{}
			}
			return c.JSON(http.StatusOK, ListingResponse{
				Products: records,
				Total:    listing.Total,
				Page:     listing.Page,
				PageSize: listing.PageSize,
				Warnings: listing.Warnings,
			})
		}
	}

	// GET /api/catalog/products – raw unit listing
	g.GET("/products", rawListing(func(c echo.Context, p catalogService.Page) (*catalogService.Listing, error) {
		return repo.ListUnitProducts(c.Request().Context(), p)
	}))

	// GET /api/catalog/fish-products – raw weight listing
	g.GET("/fish-products", rawListing(func(c echo.Context, p catalogService.Page) (*catalogService.Listing, error) {
		return repo.ListWeightProducts(c.Request().Context(), p)
	}))

	// GET /api/catalog/records/:id – one raw record
	g.GET("/records/:id", func(c echo.Context) error {
		start := time.Now()
		rec, err := repo.FindRecord(c.Request().Context(), c.Param("id"))
		if errors.Is(err, catalogService.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		setDuration(c, start)
		return c.JSON(http.StatusOK, rec)
	})

	// GET /api/catalog/normalized?kind=unit|weight – both kinds when kind is empty
	g.GET("/normalized", func(c echo.Context) error {
		start := time.Now()
		page := pageParam(c)
		ctx := c.Request().Context()
		switch kind := catalogService.Kind(c.QueryParam("kind")); kind {
		case "":
			products, err := svc.FetchAll(ctx, page)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			}
			setDuration(c, start)
			return c.JSON(http.StatusOK, ListingResponse{
				Products: products,
				Total:    int64(len(products)),
				Page:     page.Number,
				PageSize: page.Size,
			})
		case catalogService.KindUnit, catalogService.KindWeight:
			res, err := svc.List(ctx, kind, page)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			}
			setDuration(c, start)
			return c.JSON(http.StatusOK, ListingResponse{
				Products: res.Products,
				Total:    res.Total,
				Page:     res.Page,
				PageSize: res.PageSize,
			})
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "kind must be unit or weight"})
		}
	})

	// GET /api/catalog/normalized/:id
	g.GET("/normalized/:id", func(c echo.Context) error {
		start := time.Now()
		p, err := svc.Product(c.Request().Context(), c.Param("id"))
		if errors.Is(err, catalogService.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		setDuration(c, start)
		return c.JSON(http.StatusOK, p)
	})

	// POST /api/catalog/import – JSON array of raw records (auth required via /api middleware)
	g.POST("/import", func(c echo.Context) error {
		start := time.Now()
		res, err := catalogService.Import(c.Request().Context(), repo, c.Request().Body)
		duration := time.Since(start).Milliseconds()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "request_duration_ms": duration})
		}
		svc.Invalidate("")
		setDuration(c, start)
		return c.JSON(http.StatusOK, echo.Map{
			"total":               res.TotalRows,
			"created":             res.Created,
			"updated":             res.Updated,
			"skipped":             res.Skipped,
			"warnings":            res.Warnings,
			"request_duration_ms": duration,
		})
	})

	// GET /api/catalog/audit – stored aggregates that disagree with normalization
	g.GET("/audit", func(c echo.Context) error {
		start := time.Now()
		ctx := c.Request().Context()
		records, err := repo.AllRecords(ctx, 500)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		findings, err := svc.Normalizer().Audit(ctx, records, repo)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		if findings == nil {
			findings = []catalogService.AuditFinding{}
		}
		setDuration(c, start)
		return c.JSON(http.StatusOK, echo.Map{"checked": len(records), "findings": findings})
	})
}
