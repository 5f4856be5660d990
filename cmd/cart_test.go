package cmd

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"farmstore.GO/service/cart"
	"farmstore.GO/service/catalog"
)

// recordingCart counts server adds.
type recordingCart struct {
	mu   sync.Mutex
	adds int
}

func (r *recordingCart) Get(ctx context.Context, id string) ([]cart.Line, error) { return nil, nil }
func (r *recordingCart) Add(ctx context.Context, id string, l cart.Line) ([]cart.Line, error) {
	time.Sleep(20 * time.Millisecond)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adds++
	return []cart.Line{l}, nil
}
func (r *recordingCart) Update(ctx context.Context, id string, l cart.Line) ([]cart.Line, error) {
	return nil, nil
}
func (r *recordingCart) Remove(ctx context.Context, id, productID, optionID string) ([]cart.Line, error) {
	return nil, nil
}
func (r *recordingCart) Clear(ctx context.Context, id string) ([]cart.Line, error) { return nil, nil }
func (r *recordingCart) Replace(ctx context.Context, id string, lines []cart.Line) ([]cart.Line, error) {
	return lines, nil
}

func (r *recordingCart) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.adds
}

func TestRunCart_ErrorStillFlushesQueuedWrites(t *testing.T) {
	server := &recordingCart{}
	store := cart.NewStore(cart.Options{Persistence: server})
	if err := store.Resume("c1"); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	cs := &cartSession{store: store}
	eggs := catalog.Normalize(&catalog.UnitProduct{ID: "eggs", Price: 100, Stock: 10})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	code := runCart(ctx, cs, func(ctx context.Context, cs *cartSession) error {
		cs.store.Add(eggs, 2, "")
		return errors.New("boom")
	})
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if got := server.count(); got != 1 {
		t.Errorf("server adds = %d, want 1", got)
	}
	if err := store.Clear(ctx); !errors.Is(err, cart.ErrStoreClosed) {
		t.Errorf("Clear after runCart: err = %v, want ErrStoreClosed", err)
	}
}

func TestRunCart_Success(t *testing.T) {
	cs := &cartSession{store: cart.NewStore(cart.Options{})}
	code := runCart(context.Background(), cs, func(context.Context, *cartSession) error { return nil })
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}
