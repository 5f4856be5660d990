// Package cart holds the shopper's cart: local-first mutations, a write-ahead
// buffer in storage.Storage and an ordered outbox of server writes.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"farmstore.GO/service/catalog"
	"farmstore.GO/service/storage"
)

const (
	DefaultStorageKey     = "cart"
	defaultRequestTimeout = 10 * time.Second
	closeFlushTimeout     = 5 * time.Second
)

// Options configures a Store.
type Options struct {
	// Storage receives every local change before it is sent anywhere. Nil keeps
	// the cart in memory only.
	Storage    storage.Storage
	StorageKey string
	// Persistence is the server cart used after Login.
	Persistence Persistence
	GuestID     string
	// OnSyncError is called from the outbox worker for failed server writes.
	OnSyncError    func(op string, err error)
	RequestTimeout time.Duration
}

// AddResult reports what Add did. Clamped means the requested quantity was
// cut down to available stock.
type AddResult struct {
	Line    Line
	Added   float64
	Clamped bool
}

// UpdateResult reports what UpdateQuantity did.
type UpdateResult struct {
	Line    Line
	Removed bool
	Clamped bool
}

// Store owns one shopper's cart. Mutations apply to memory immediately;
// server writes for authenticated sessions are queued and sent in order.
type Store struct {
	opts Options

	mu      sync.Mutex
	lines   []Line
	version uint64
	epoch   uint64
	session Session
	closed  bool

	loginMu sync.Mutex
	outbox  *outbox
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewStore restores the cart from opts.Storage and starts the outbox worker.
// Call Close when the session ends.
func NewStore(opts Options) *Store {
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.GuestID == "" {
		opts.GuestID = NewGuestID()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		opts:    opts,
		lines:   []Line{},
		session: Session{GuestID: opts.GuestID},
		outbox:  newOutbox(),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.load()
	go s.outbox.run(s.exec)
	return s
}

func (s *Store) load() {
	if s.opts.Storage == nil {
		return
	}
	data, err := s.opts.Storage.Load(s.ctx, s.opts.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		log.Printf("cart: load %q: %v", s.opts.StorageKey, err)
		return
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		log.Printf("cart: decode %q: %v", s.opts.StorageKey, err)
		return
	}
	s.lines = sanitize(lines)
}

func (s *Store) saveLocked() {
	if s.opts.Storage == nil {
		return
	}
	data, err := json.Marshal(s.lines)
	if err != nil {
		s.reportSyncError("save", err)
		return
	}
	if err := s.opts.Storage.Save(s.ctx, s.opts.StorageKey, data); err != nil {
		s.reportSyncError("save", err)
	}
}

func (s *Store) reportSyncError(op string, err error) {
	log.Printf("cart: %s failed: %v", op, err)
	if s.opts.OnSyncError != nil {
		s.opts.OnSyncError(op, err)
	}
}

func (s *Store) enqueueLocked(p *op) {
	if !s.session.Authenticated() {
		p.finish(nil)
		return
	}
	p.seq = s.version
	p.epoch = s.epoch
	p.customerID = s.session.CustomerID
	if err := s.outbox.push(p); err != nil {
		p.finish(err)
	}
}

// findLocked returns the index of the (productID, optionID) line. With an empty
// optionID a product's only line matches.
func (s *Store) findLocked(productID, optionID string) int {
	match := -1
	for i, l := range s.lines {
		if l.ProductID != productID {
			continue
		}
		if l.OptionID == optionID {
			return i
		}
		if optionID == "" {
			if match >= 0 {
				return -1
			}
			match = i
		}
	}
	return match
}

// Add increments the matching line by qty or creates it, never exceeding
// p.TotalStock. Non-positive qty, an unknown option or an inactive option
// leave the cart unchanged.
func (s *Store) Add(p catalog.NormalizedProduct, qty float64, optionID string) AddResult {
	if p.ID == "" || math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		return AddResult{}
	}
	if optionID == "" && p.DefaultOptionID != nil {
		optionID = *p.DefaultOptionID
	}
	if len(p.Options) > 0 {
		if o, ok := p.Option(optionID); !ok || !o.Active {
			return AddResult{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return AddResult{}
	}

	line := MakeLine(p, optionID, 0)
	idx := -1
	for i, l := range s.lines {
		if l.key() == line.key() {
			idx = i
			break
		}
	}
	var current float64
	if idx >= 0 {
		limit := p.TotalStock
		line = s.lines[idx]
		line.StockLimit = &limit
		current = line.Quantity
	}

	next, clamped := line.clampQuantity(line.Round(current + qty))
	res := AddResult{Clamped: clamped}
	if next <= current {
		if idx >= 0 {
			res.Line = s.lines[idx]
		}
		return res
	}

	line.Quantity = next
	if idx >= 0 {
		s.lines[idx] = line
	} else {
		s.lines = append(s.lines, line)
	}
	s.version++
	s.saveLocked()

	delta := line
	delta.Quantity, _ = decimal.NewFromFloat(next).Sub(decimal.NewFromFloat(current)).Float64()
	s.enqueueLocked(&op{kind: opAdd, line: delta})

	res.Line = line
	res.Added = delta.Quantity
	return res
}

// UpdateQuantity sets a line's quantity. The value is rounded for the line's
// kind and capped at its stock limit; anything that ends at 0 removes the line.
// Unknown lines and non-finite quantities are ignored.
func (s *Store) UpdateQuantity(productID string, qty float64, optionID string) UpdateResult {
	if math.IsNaN(qty) || math.IsInf(qty, 0) {
		return UpdateResult{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return UpdateResult{}
	}
	idx := s.findLocked(productID, optionID)
	if idx < 0 {
		return UpdateResult{}
	}
	line := s.lines[idx]
	next, clamped := line.clampQuantity(line.Round(qty))
	if next <= 0 {
		s.removeLocked(idx)
		return UpdateResult{Removed: true, Clamped: clamped}
	}
	if next == line.Quantity {
		return UpdateResult{Line: line, Clamped: clamped}
	}
	line.Quantity = next
	s.lines[idx] = line
	s.version++
	s.saveLocked()
	s.enqueueLocked(&op{kind: opUpdate, line: line})
	return UpdateResult{Line: line, Clamped: clamped}
}

// Remove deletes a line. It reports false, and changes nothing, when the line
// does not exist.
func (s *Store) Remove(productID, optionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	idx := s.findLocked(productID, optionID)
	if idx < 0 {
		return false
	}
	s.removeLocked(idx)
	return true
}

func (s *Store) removeLocked(idx int) {
	line := s.lines[idx]
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	s.version++
	s.saveLocked()
	s.enqueueLocked(&op{kind: opRemove, line: line})
}

// Clear empties the cart. For an authenticated session it returns only after
// the server acknowledged the clear, queued behind earlier writes, and
// returns the server's error if it failed.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	s.lines = []Line{}
	s.version++
	s.saveLocked()
	p := &op{kind: opClear, done: make(chan error, 1)}
	s.enqueueLocked(p)
	s.mu.Unlock()

	select {
	case err := <-p.done:
		if err != nil {
			return fmt.Errorf("cart: clear: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login binds the cart to customerID. The server cart and the local cart are
// merged (see Merge), written back with Replace and the server's answer
// becomes the local cart. On error the store stays a guest cart. Logging in
// again as the same customer does nothing.
func (s *Store) Login(ctx context.Context, customerID string) error {
	if customerID == "" {
		return errors.New("cart: empty customer id")
	}
	if s.opts.Persistence == nil {
		return fmt.Errorf("cart: no persistence configured: %w", ErrNotAuthenticated)
	}
	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if s.session.CustomerID == customerID {
		s.mu.Unlock()
		return nil
	}
	if s.session.Authenticated() {
		s.logoutLocked()
	}
	local := copyLines(s.lines)
	startVersion := s.version
	s.mu.Unlock()

	server, err := s.opts.Persistence.Get(ctx, customerID)
	if err != nil {
		return fmt.Errorf("cart: fetch server cart: %w", err)
	}
	merged := Merge(server, local)
	snapshot, err := s.opts.Persistence.Replace(ctx, customerID, merged)
	if err != nil {
		return fmt.Errorf("cart: write merged cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.session.CustomerID = customerID
	s.epoch++
	unchanged := s.version == startVersion
	s.version++
	if unchanged {
		s.lines = reconcile(snapshot, merged)
		s.saveLocked()
		return nil
	}
	// The shopper kept editing while we talked to the server.
	s.lines = Merge(server, s.lines)
	s.saveLocked()
	s.enqueueLocked(&op{kind: opReplace, lines: copyLines(s.lines)})
	return nil
}

// Resume marks the store as logged in as customerID without merging. Use it
// when the local cart already mirrors that customer's server cart, e.g. after
// a restart; call Sync to pick up the server's current lines.
func (s *Store) Resume(customerID string) error {
	if customerID == "" {
		return errors.New("cart: empty customer id")
	}
	if s.opts.Persistence == nil {
		return fmt.Errorf("cart: no persistence configured: %w", ErrNotAuthenticated)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if s.session.CustomerID == customerID {
		return nil
	}
	if s.session.Authenticated() {
		s.logoutLocked()
	}
	s.session.CustomerID = customerID
	s.epoch++
	return nil
}

// Logout turns the cart back into a guest cart. Queued server writes are
// dropped; the local lines stay.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked()
}

func (s *Store) logoutLocked() {
	s.session.CustomerID = ""
	s.epoch++
	for _, p := range s.outbox.drop() {
		p.finish(ErrNotAuthenticated)
	}
}

// Flush waits until every queued server write has completed.
func (s *Store) Flush(ctx context.Context) error {
	return s.outbox.wait(ctx)
}

// Close flushes briefly, aborts what is still in flight and stops the worker.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), closeFlushTimeout)
	if err := s.outbox.wait(ctx); err != nil {
		log.Printf("cart: close: pending writes abandoned: %v", err)
	}
	cancel()
	s.cancel()
	for _, p := range s.outbox.close() {
		p.finish(ErrStoreClosed)
	}
	return nil
}

// exec runs on the outbox worker.
func (s *Store) exec(p *op) {
	ctx, cancel := context.WithTimeout(s.ctx, s.opts.RequestTimeout)
	snapshot, err := s.send(ctx, p)
	cancel()
	if err != nil {
		s.reportSyncError(p.kind.String(), err)
		p.finish(err)
		return
	}
	s.adopt(p.seq, p.epoch, snapshot)
	p.finish(nil)
}

func (s *Store) send(ctx context.Context, p *op) ([]Line, error) {
	ps := s.opts.Persistence
	if ps == nil {
		return nil, ErrNotAuthenticated
	}
	switch p.kind {
	case opAdd:
		return ps.Add(ctx, p.customerID, p.line)
	case opUpdate:
		return ps.Update(ctx, p.customerID, p.line)
	case opRemove:
		return ps.Remove(ctx, p.customerID, p.line.ProductID, p.line.OptionID)
	case opClear:
		return ps.Clear(ctx, p.customerID)
	case opReplace:
		return ps.Replace(ctx, p.customerID, p.lines)
	}
	return nil, fmt.Errorf("cart: unknown op %d", p.kind)
}

// adopt replaces local lines with a server snapshot when it answers the
// latest local version of the current session. It reports whether it did.
func (s *Store) adopt(seq, epoch uint64, snapshot []Line) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || epoch != s.epoch || seq != s.version {
		return false
	}
	s.lines = reconcile(snapshot, s.lines)
	s.saveLocked()
	return true
}

// reconcile fills extras the server may not keep from the matching local line.
func reconcile(snapshot, local []Line) []Line {
	byKey := make(map[lineKey]Line, len(local))
	for _, l := range local {
		byKey[l.key()] = l
	}
	out := copyLines(snapshot)
	for i := range out {
		l, ok := byKey[out[i].key()]
		if !ok {
			continue
		}
		if out[i].MeasurementIncrement == 0 {
			out[i].MeasurementIncrement = l.MeasurementIncrement
		}
		if out[i].StockLimit == nil && l.StockLimit != nil {
			v := *l.StockLimit
			out[i].StockLimit = &v
		}
		if out[i].PriceKind == "" {
			out[i].PriceKind = l.PriceKind
		}
	}
	return sanitize(out)
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

// Count is the badge number: unit lines by quantity, weight lines once each.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CountItems(s.lines)
}

// Total is the sum of line totals.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CartTotal(s.lines)
}

// Version counts local mutations. Server writes carry the version they were
// issued at.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}
