package cart

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Sync pulls the server cart and adopts it when no local write is pending and
// the cart has not changed meanwhile. Guests get ErrNotAuthenticated.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if !s.session.Authenticated() {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	customerID, version, epoch := s.session.CustomerID, s.version, s.epoch
	s.mu.Unlock()

	if !s.outbox.idle() {
		return nil
	}
	snapshot, err := s.opts.Persistence.Get(ctx, customerID)
	if err != nil {
		return fmt.Errorf("cart: sync: %w", err)
	}
	if s.outbox.idle() {
		s.adopt(version, epoch, snapshot)
	}
	return nil
}

// StartSync runs Sync on schedule (robfig/cron syntax, e.g. "@every 1m").
// Stop the returned scheduler before closing the store.
func StartSync(s *Store, schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
		defer cancel()
		if err := s.Sync(ctx); err != nil && !errors.Is(err, ErrNotAuthenticated) && !errors.Is(err, ErrStoreClosed) {
			log.Printf("cart: scheduled sync: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("cart: sync schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
