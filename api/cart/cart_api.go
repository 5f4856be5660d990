package cart

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"farmstore.GO/api"
	"farmstore.GO/config"
	"farmstore.GO/core/auth"
	cartRepo "farmstore.GO/model/repository/cart"
	cartService "farmstore.GO/service/cart"
)

func init() {
	api.RegisterModule(RegisterCartRoutes)
}

// CartResponse is returned by every cart endpoint: the authoritative lines after the call.
type CartResponse struct {
	Lines []cartService.Line `json:"lines"`
	Total float64            `json:"total"`
	Count int                `json:"count"`
}

// ReplaceRequest is the PUT /api/cart body.
type ReplaceRequest struct {
	Lines []cartService.Line `json:"lines"`
}

func cryptKey() string {
	if config.AppConfig != nil {
		return config.AppConfig.CryptKey
	}
	return config.GetEnv("FARMSTORE_CRYPT_KEY", "")
}

// RegisterCartRoutes mounts the customer cart service backed by the cart repository.
func RegisterCartRoutes(apiGroup *echo.Group, db *gorm.DB) {
	registerRoutes(apiGroup, cartRepo.NewCartRepository(db), cryptKey())
}

func respond(c echo.Context, start time.Time, lines []cartService.Line, err error) error {
	duration := time.Since(start).Milliseconds()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error(), "request_duration_ms": duration})
	}
	if lines == nil {
		lines = []cartService.Line{}
	}
	c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
	return c.JSON(http.StatusOK, CartResponse{
		Lines: lines,
		Total: cartService.CartTotal(lines),
		Count: cartService.CountItems(lines),
	})
}

func validLine(l cartService.Line) bool {
	return l.ProductID != "" && !math.IsNaN(l.Quantity) && !math.IsInf(l.Quantity, 0)
}

// bindLine decodes a line body. ok is false once a 400 has been written.
func bindLine(c echo.Context) (l cartService.Line, ok bool, err error) {
	if err := c.Bind(&l); err != nil {
		return l, false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if !validLine(l) {
		return l, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "productId and a finite quantity are required"})
	}
	return l, true, nil
}

func registerRoutes(apiGroup *echo.Group, p cartService.Persistence, key string) {
	g := apiGroup.Group("/cart", auth.RequireCustomer(key))

	// GET /api/cart
	g.GET("", func(c echo.Context) error {
		start := time.Now()
		lines, err := p.Get(c.Request().Context(), auth.CustomerID(c))
		return respond(c, start, lines, err)
	})

	// PUT /api/cart – replace the whole cart (login merge)
	g.PUT("", func(c echo.Context) error {
		start := time.Now()
		var body ReplaceRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		for _, l := range body.Lines {
			if !validLine(l) || l.Quantity <= 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "every line needs a productId and a positive quantity"})
			}
		}
		lines, err := p.Replace(c.Request().Context(), auth.CustomerID(c), body.Lines)
		return respond(c, start, lines, err)
	})

	// DELETE /api/cart
	g.DELETE("", func(c echo.Context) error {
		start := time.Now()
		lines, err := p.Clear(c.Request().Context(), auth.CustomerID(c))
		return respond(c, start, lines, err)
	})

	// POST /api/cart/items – add quantity to a line
	g.POST("/items", func(c echo.Context) error {
		start := time.Now()
		l, ok, err := bindLine(c)
		if !ok {
			return err
		}
		if l.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
		}
		lines, err := p.Add(c.Request().Context(), auth.CustomerID(c), l)
		return respond(c, start, lines, err)
	})

	// PATCH /api/cart/items – set a line's quantity, 0 removes it
	g.PATCH("/items", func(c echo.Context) error {
		start := time.Now()
		l, ok, err := bindLine(c)
		if !ok {
			return err
		}
		lines, err := p.Update(c.Request().Context(), auth.CustomerID(c), l)
		return respond(c, start, lines, err)
	})

	// DELETE /api/cart/items?productId=X&variantOrCategoryId=Y
	g.DELETE("/items", func(c echo.Context) error {
		start := time.Now()
		productID := c.QueryParam("productId")
		if productID == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "productId is required"})
		}
		lines, err := p.Remove(c.Request().Context(), auth.CustomerID(c), productID, c.QueryParam("variantOrCategoryId"))
		return respond(c, start, lines, err)
	})
}
