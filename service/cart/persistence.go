package cart

import (
	"context"
	"errors"
)

var (
	// ErrNotAuthenticated is returned for server operations on a guest session.
	ErrNotAuthenticated = errors.New("cart: session is not authenticated")
	// ErrStoreClosed is returned once Close has been called.
	ErrStoreClosed = errors.New("cart: store closed")
)

// Persistence is the server-side cart keyed by customer id. Every call returns
// the authoritative snapshot after the change.
type Persistence interface {
	Get(ctx context.Context, customerID string) ([]Line, error)
	// Add increments the matching line by l.Quantity or creates it.
	Add(ctx context.Context, customerID string, l Line) ([]Line, error)
	// Update sets the matching line's quantity; a quantity of 0 removes it.
	Update(ctx context.Context, customerID string, l Line) ([]Line, error)
	Remove(ctx context.Context, customerID, productID, optionID string) ([]Line, error)
	Clear(ctx context.Context, customerID string) ([]Line, error)
	// Replace overwrites the whole cart.
	Replace(ctx context.Context, customerID string, lines []Line) ([]Line, error)
}
