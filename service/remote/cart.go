package remote

import (
	"context"
	"net/http"
	"net/url"

	"farmstore.GO/core/auth"
	"farmstore.GO/service/cart"
)

const (
	CartPath      = "/api/cart"
	CartItemsPath = "/api/cart/items"
)

// CartClient is the server cart seen from a shopper's process. It implements
// cart.Persistence; every request carries the customer id and, when CryptKey
// is set, its signature.
type CartClient struct {
	client
	cryptKey string
}

func NewCartClient(cfg Config, cryptKey string) *CartClient {
	return &CartClient{client: newClient(cfg), cryptKey: cryptKey}
}

type cartBody struct {
	Lines []cart.Line `json:"lines"`
}

func (c *CartClient) headers(customerID string) http.Header {
	h := http.Header{}
	h.Set(auth.HeaderCustomerID, customerID)
	if c.cryptKey != "" {
		h.Set(auth.HeaderCustomerSig, auth.Sign(customerID, c.cryptKey))
	}
	return h
}

func (c *CartClient) call(ctx context.Context, method, path, customerID string, body interface{}) ([]cart.Line, error) {
	var out cartBody
	if err := c.do(ctx, method, path, c.headers(customerID), body, &out); err != nil {
		return nil, err
	}
	if out.Lines == nil {
		out.Lines = []cart.Line{}
	}
	return out.Lines, nil
}

func (c *CartClient) Get(ctx context.Context, customerID string) ([]cart.Line, error) {
	return c.call(ctx, http.MethodGet, CartPath, customerID, nil)
}

func (c *CartClient) Add(ctx context.Context, customerID string, l cart.Line) ([]cart.Line, error) {
	return c.call(ctx, http.MethodPost, CartItemsPath, customerID, l)
}

func (c *CartClient) Update(ctx context.Context, customerID string, l cart.Line) ([]cart.Line, error) {
	return c.call(ctx, http.MethodPatch, CartItemsPath, customerID, l)
}

func (c *CartClient) Remove(ctx context.Context, customerID, productID, optionID string) ([]cart.Line, error) {
	q := url.Values{}
	q.Set("productId", productID)
	if optionID != "" {
		q.Set("variantOrCategoryId", optionID)
	}
	return c.call(ctx, http.MethodDelete, CartItemsPath+"?"+q.Encode(), customerID, nil)
}

func (c *CartClient) Clear(ctx context.Context, customerID string) ([]cart.Line, error) {
	return c.call(ctx, http.MethodDelete, CartPath, customerID, nil)
}

func (c *CartClient) Replace(ctx context.Context, customerID string, lines []cart.Line) ([]cart.Line, error) {
	if lines == nil {
		lines = []cart.Line{}
	}
	return c.call(ctx, http.MethodPut, CartPath, customerID, cartBody{Lines: lines})
}

var _ cart.Persistence = (*CartClient)(nil)
