package cart

import (
	"context"
	"sync"
)

// memPersistence is an in-memory server cart. When gate is set every write
// announces itself on started and then blocks until a value arrives on gate.
type memPersistence struct {
	mu      sync.Mutex
	carts   map[string][]Line
	fail    map[string]error
	calls   map[string]int
	respond func(op string, call int, lines []Line) []Line

	gate    chan struct{}
	started chan string
}

func newMemPersistence() *memPersistence {
	return &memPersistence{
		carts: map[string][]Line{},
		fail:  map[string]error{},
		calls: map[string]int{},
	}
}

func (m *memPersistence) hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = make(chan struct{})
	m.started = make(chan string, 16)
}

func (m *memPersistence) enter(op string) {
	m.mu.Lock()
	gate, started := m.gate, m.started
	m.mu.Unlock()
	if started != nil {
		started <- op
	}
	if gate != nil {
		<-gate
	}
}

func (m *memPersistence) finish(op, customerID string) ([]Line, error) {
	m.calls[op]++
	if err := m.fail[op]; err != nil {
		return nil, err
	}
	out := copyLines(m.carts[customerID])
	if m.respond != nil {
		out = m.respond(op, m.calls[op], out)
	}
	return out, nil
}

func (m *memPersistence) set(customerID string, lines []Line) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[customerID] = copyLines(lines)
}

func (m *memPersistence) get(customerID string) []Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyLines(m.carts[customerID])
}

func (m *memPersistence) index(customerID string, k lineKey) int {
	for i, l := range m.carts[customerID] {
		if l.key() == k {
			return i
		}
	}
	return -1
}

func (m *memPersistence) Get(ctx context.Context, customerID string) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finish("get", customerID)
}

func (m *memPersistence) Add(ctx context.Context, customerID string, l Line) ([]Line, error) {
	m.enter("add")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail["add"] == nil {
		if i := m.index(customerID, l.key()); i >= 0 {
			m.carts[customerID][i].Quantity = addQuantity(m.carts[customerID][i].Quantity, l.Quantity)
		} else {
			m.carts[customerID] = append(m.carts[customerID], l)
		}
	}
	return m.finish("add", customerID)
}

func (m *memPersistence) Update(ctx context.Context, customerID string, l Line) ([]Line, error) {
	m.enter("update")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail["update"] == nil {
		if i := m.index(customerID, l.key()); i >= 0 {
			if l.Quantity <= 0 {
				m.carts[customerID] = append(m.carts[customerID][:i], m.carts[customerID][i+1:]...)
			} else {
				m.carts[customerID][i].Quantity = l.Quantity
			}
		}
	}
	return m.finish("update", customerID)
}

func (m *memPersistence) Remove(ctx context.Context, customerID, productID, optionID string) ([]Line, error) {
	m.enter("remove")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail["remove"] == nil {
		if i := m.index(customerID, lineKey{productID, optionID}); i >= 0 {
			m.carts[customerID] = append(m.carts[customerID][:i], m.carts[customerID][i+1:]...)
		}
	}
	return m.finish("remove", customerID)
}

func (m *memPersistence) Clear(ctx context.Context, customerID string) ([]Line, error) {
	m.enter("clear")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail["clear"] == nil {
		delete(m.carts, customerID)
	}
	return m.finish("clear", customerID)
}

func (m *memPersistence) Replace(ctx context.Context, customerID string, lines []Line) ([]Line, error) {
	m.enter("replace")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail["replace"] == nil {
		m.carts[customerID] = copyLines(lines)
	}
	return m.finish("replace", customerID)
}
