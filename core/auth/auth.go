package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"farmstore.GO/config"
)

const (
	HeaderCustomerID  = "X-Customer-ID"
	HeaderCustomerSig = "X-Customer-Sig"

	// ContextCustomerID is the echo.Context key set by RequireCustomer.
	ContextCustomerID = "customer_id"
)

// Middleware returns the /api auth middleware based on AUTH_TYPE env var
// ("key" for bearer API keys, anything else for basic auth).
func Middleware() echo.MiddlewareFunc {
	skipper := buildSkipper()
	switch os.Getenv("AUTH_TYPE") {
	case "key":
		return keyAuth(skipper)
	default:
		return basicAuth(skipper)
	}
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}

func basicAuth(skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Validator: func(username, password string, c echo.Context) (bool, error) {
			return username == os.Getenv("API_USER") && password == os.Getenv("API_PASS"), nil
		},
		Skipper: skipper,
	})
}

func keyAuth(skipper middleware.Skipper) echo.MiddlewareFunc {
	apiKey := os.Getenv("API_KEY")
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(key string, c echo.Context) (bool, error) {
			return key == apiKey, nil
		},
		Skipper: skipper,
	})
}

// Sign returns the hex HMAC-SHA256 of customerID under cryptKey.
func Sign(customerID, cryptKey string) string {
	mac := hmac.New(sha256.New, []byte(cryptKey))
	mac.Write([]byte(customerID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCustomerSignature validates an HMAC-SHA256 signature using constant-time comparison.
func VerifyCustomerSignature(customerID, signature, cryptKey string) bool {
	if cryptKey == "" || customerID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(cryptKey))
	mac.Write([]byte(customerID))
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(mac.Sum(nil), sig)
}

// RequireCustomer resolves the calling customer from X-Customer-ID. When
// cryptKey is set the X-Customer-Sig header must carry a valid signature.
func RequireCustomer(cryptKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			customerID := c.Request().Header.Get(HeaderCustomerID)
			if customerID == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "customer id required"})
			}
			if cryptKey != "" && !VerifyCustomerSignature(customerID, c.Request().Header.Get(HeaderCustomerSig), cryptKey) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
			}
			c.Set(ContextCustomerID, customerID)
			return next(c)
		}
	}
}

// CustomerID returns the id stored by RequireCustomer.
func CustomerID(c echo.Context) string {
	id, _ := c.Get(ContextCustomerID).(string)
	return id
}
