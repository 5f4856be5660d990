package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestVerifyCustomerSignature(t *testing.T) {
	sig := Sign("42", "secret")
	if !VerifyCustomerSignature("42", sig, "secret") {
		t.Error("valid signature rejected")
	}
	tests := []struct {
		name, id, sig, key string
	}{
		{"wrong id", "43", sig, "secret"},
		{"wrong key", "42", sig, "other"},
		{"not hex", "42", "zz", "secret"},
		{"empty key", "42", sig, ""},
		{"empty sig", "42", "", "secret"},
	}
	for _, tt := range tests {
		if VerifyCustomerSignature(tt.id, tt.sig, tt.key) {
			t.Errorf("%s: accepted", tt.name)
		}
	}
}

func customerServer(key string) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, CustomerID(c))
	}, RequireCustomer(key))
	return e
}

func TestRequireCustomer(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		id, sig  string
		wantCode int
		wantBody string
	}{
		{"no key trusts header", "", "7", "", http.StatusOK, "7"},
		{"missing id", "", "", "", http.StatusUnauthorized, ""},
		{"signed", "k", "7", Sign("7", "k"), http.StatusOK, "7"},
		{"bad signature", "k", "7", Sign("8", "k"), http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.id != "" {
				req.Header.Set(HeaderCustomerID, tt.id)
			}
			if tt.sig != "" {
				req.Header.Set(HeaderCustomerSig, tt.sig)
			}
			rec := httptest.NewRecorder()
			customerServer(tt.key).ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestMiddleware_SkipsCatalog(t *testing.T) {
	t.Setenv("AUTH_TYPE", "")
	t.Setenv("API_USER", "admin")
	t.Setenv("API_PASS", "secret")

	e := echo.New()
	g := e.Group("/api", Middleware())
	g.GET("/catalog/products", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	g.GET("/cart", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog/products", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("catalog status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("cart status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authorized cart status = %d, want 200", rec.Code)
	}
}
