package graphql

import (
	"context"
	"net/http"

	"farmstore.GO/core/auth"
)

// Context keys for resolver injection (avoids circular imports).
type contextKey string

const CtxKeyCustomerID contextKey = "customerID"

// CustomerIDFromContext returns the verified customer for the request, or "".
func CustomerIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyCustomerID).(string); ok {
		return v
	}
	return ""
}

// WithCustomerID attaches customerID to ctx.
func WithCustomerID(ctx context.Context, customerID string) context.Context {
	return context.WithValue(ctx, CtxKeyCustomerID, customerID)
}

// CustomerFromRequest reads X-Customer-ID. With a crypt key the id only counts
// when X-Customer-Sig verifies; without one the header is trusted.
func CustomerFromRequest(r *http.Request, cryptKey string) string {
	id := r.Header.Get(auth.HeaderCustomerID)
	if id == "" {
		return ""
	}
	if cryptKey != "" && !auth.VerifyCustomerSignature(id, r.Header.Get(auth.HeaderCustomerSig), cryptKey) {
		return ""
	}
	return id
}
