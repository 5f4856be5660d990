package resolvers

import (
	"context"
	"errors"

	"farmstore.GO/graphql"
	gqlmodels "farmstore.GO/graphql/models"
	"farmstore.GO/service/cart"
)

var errNoCustomer = errors.New("cart: signed customer id required")

// Cart returns the server cart of the customer attached to the request.
func (r *Resolver) Cart(ctx context.Context) (*gqlmodels.Cart, error) {
	customerID := graphql.CustomerIDFromContext(ctx)
	if customerID == "" {
		return nil, errNoCustomer
	}
	if r.carts == nil {
		return nil, cart.ErrNotAuthenticated
	}
	lines, err := r.carts.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := &gqlmodels.Cart{
		Lines: make([]*gqlmodels.CartLine, 0, len(lines)),
		Total: cart.CartTotal(lines),
		Count: int32(cart.CountItems(lines)),
	}
	for _, l := range lines {
		line := &gqlmodels.CartLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			PriceKind: string(l.PriceKind),
			LineTotal: cart.LineTotal(l),
		}
		if l.OptionID != "" {
			opt := l.OptionID
			line.OptionID = &opt
		}
		out.Lines = append(out.Lines, line)
	}
	return out, nil
}
