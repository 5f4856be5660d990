package cart

import "github.com/google/uuid"

// Session describes who owns the cart right now.
type Session struct {
	GuestID    string `json:"guestId"`
	CustomerID string `json:"customerId,omitempty"`
}

// Authenticated reports whether the cart is bound to a server-side cart.
func (s Session) Authenticated() bool { return s.CustomerID != "" }

// NewGuestID returns a fresh guest identifier.
func NewGuestID() string { return uuid.NewString() }
