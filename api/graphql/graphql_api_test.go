package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"farmstore.GO/core/auth"
	"farmstore.GO/graphqlserver"
	cartRepo "farmstore.GO/model/repository/cart"
	catalogRepo "farmstore.GO/model/repository/catalog"
	cartService "farmstore.GO/service/cart"
	catalogService "farmstore.GO/service/catalog"
)

const testKey = "gql-key"

const seedJSON = `[
	{"id": "honey", "name": "Honey", "price": 30, "variants": [
		{"id": "small", "label": "250g", "price": 30, "salePrice": 25, "stock": 4},
		{"id": "large", "label": "1kg", "price": 90, "stock": 2}
	]},
	{"id": "tilapia", "name": "Tilapia", "images": ["t.jpg"], "sizeCategories": [
		{"id": "medium", "label": "Medium", "pricePerKg": 500, "stock": 5, "status": "active"},
		{"id": "large", "label": "Large", "pricePerKg": 650, "stock": 3, "status": "inactive"}
	]}
]`

func setupGraphQL(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "gql.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := catalogRepo.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}
	if err := cartRepo.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}
	repo, _ := catalogRepo.NewCatalogRepository(db)
	if _, err := catalogService.Import(context.Background(), repo, strings.NewReader(seedJSON)); err != nil {
		t.Fatal(err)
	}
	carts := cartRepo.NewCartRepository(db)
	if _, err := carts.Add(context.Background(), "42", cartService.Line{
		ProductID: "tilapia", OptionID: "medium", Quantity: 0.5, UnitPrice: 500, PriceKind: cartService.PerWeight,
	}); err != nil {
		t.Fatal(err)
	}

	schema, err := graphqlserver.NewSchemaFromDB(db)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	e := echo.New()
	RegisterGraphQLRoutesWithSchema(e, schema, testKey)
	return e
}

type gqlResponse struct {
	Data   map[string]json.RawMessage
	Errors []struct{ Message string }
}

func runQuery(t *testing.T, e *echo.Echo, query string, customer string) gqlResponse {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{"query": query})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if customer != "" {
		req.Header.Set(auth.HeaderCustomerID, customer)
		req.Header.Set(auth.HeaderCustomerSig, auth.Sign(customer, testKey))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp gqlResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestGraphQL_Products(t *testing.T) {
	e := setupGraphQL(t)
	resp := runQuery(t, e, `{ products { items { id displayPrice totalStock priceRange { min max } hasSalePrice } totalCount pageInfo { pageSize currentPage } } }`, "")
	if len(resp.Errors) > 0 {
		t.Fatalf("errors: %v", resp.Errors)
	}
	var page struct {
		Items []struct {
			ID           string
			DisplayPrice float64
			TotalStock   float64
			PriceRange   *struct{ Min, Max float64 }
			HasSalePrice bool
		}
		TotalCount int
		PageInfo   struct{ PageSize, CurrentPage int }
	}
	if err := json.Unmarshal(resp.Data["products"], &page); err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 2 || page.Items[0].ID != "honey" || page.Items[1].ID != "tilapia" {
		t.Fatalf("items = %+v", page.Items)
	}
	honey := page.Items[0]
	if honey.TotalStock != 6 || !honey.HasSalePrice {
		t.Errorf("honey = %+v, want stock 6 with sale price", honey)
	}
	tilapia := page.Items[1]
	if tilapia.DisplayPrice != 500 || tilapia.TotalStock != 5 || tilapia.PriceRange != nil {
		t.Errorf("tilapia = %+v", tilapia)
	}
	if page.PageInfo.PageSize != 20 || page.PageInfo.CurrentPage != 1 {
		t.Errorf("pageInfo = %+v", page.PageInfo)
	}
}

func TestGraphQL_ProductByKind(t *testing.T) {
	e := setupGraphQL(t)
	resp := runQuery(t, e, `{ products(kind: "weight") { items { id isWeightBased defaultOptionId options { id active measurementIncrement } } totalCount } }`, "")
	if len(resp.Errors) > 0 {
		t.Fatalf("errors: %v", resp.Errors)
	}
	var page struct {
		Items []struct {
			ID              string
			IsWeightBased   bool
			DefaultOptionID *string `json:"defaultOptionId"`
			Options         []struct {
				ID                   string
				Active               bool
				MeasurementIncrement *float64
			}
		}
		TotalCount int
	}
	if err := json.Unmarshal(resp.Data["products"], &page); err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 1 || len(page.Items) != 1 {
		t.Fatalf("page = %+v", page)
	}
	p := page.Items[0]
	if !p.IsWeightBased || p.DefaultOptionID == nil || *p.DefaultOptionID != "medium" || len(p.Options) != 2 {
		t.Errorf("tilapia = %+v", p)
	}
	if inc := p.Options[0].MeasurementIncrement; inc == nil || *inc != 0.25 {
		t.Errorf("increment = %v, want 0.25", inc)
	}

	resp = runQuery(t, e, `{ products(kind: "fruit") { totalCount } }`, "")
	if len(resp.Errors) == 0 {
		t.Error("expected error for unknown kind")
	}
}

func TestGraphQL_ProductMissingIsNull(t *testing.T) {
	e := setupGraphQL(t)
	resp := runQuery(t, e, `{ product(id: "nope") { id } }`, "")
	if len(resp.Errors) > 0 {
		t.Fatalf("errors: %v", resp.Errors)
	}
	if string(resp.Data["product"]) != "null" {
		t.Errorf("product = %s, want null", resp.Data["product"])
	}
}

func TestGraphQL_Cart(t *testing.T) {
	e := setupGraphQL(t)
	resp := runQuery(t, e, `{ cart { lines { productId optionId quantity lineTotal priceKind } total count } }`, "42")
	if len(resp.Errors) > 0 {
		t.Fatalf("errors: %v", resp.Errors)
	}
	var c struct {
		Lines []struct {
			ProductID string `json:"productId"`
			OptionID  string `json:"optionId"`
			Quantity  float64
			LineTotal float64
			PriceKind string
		}
		Total float64
		Count int
	}
	if err := json.Unmarshal(resp.Data["cart"], &c); err != nil {
		t.Fatal(err)
	}
	if len(c.Lines) != 1 || c.Lines[0].OptionID != "medium" || c.Lines[0].LineTotal != 250 || c.Lines[0].PriceKind != "per-weight" {
		t.Errorf("lines = %+v", c.Lines)
	}
	if c.Total != 250 || c.Count != 1 {
		t.Errorf("total = %v count = %d, want 250 1", c.Total, c.Count)
	}

	resp = runQuery(t, e, `{ cart { total } }`, "")
	if len(resp.Errors) == 0 {
		t.Error("anonymous cart query succeeded")
	}
}
