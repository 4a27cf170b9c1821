package store

import (
	"sync"

	"github.com/karen-369/spark/pkg/model"
	"github.com/tidwall/btree"
)

const btreeDegree = 32

// Store holds the current set of open orders in arrival order. It is the
// only shared mutable state in the service; readers get copies.
type Store struct {
	mu          sync.RWMutex
	orders      *btree.Map[uint64, model.Order] // keyed by arrival sequence
	index       map[string]uint64
	seq         uint64
	initialized bool

	subMu  sync.Mutex
	subs   map[uint64]chan struct{}
	nextID uint64
}

func New() *Store {
	return &Store{
		orders: btree.NewMap[uint64, model.Order](btreeDegree),
		index:  make(map[string]uint64),
		subs:   make(map[uint64]chan struct{}),
	}
}

// Replace swaps in a full snapshot and marks the store initialized. Orders
// keep the relative order of the snapshot.
func (s *Store) Replace(orders []model.Order) {
	s.mu.Lock()
	s.orders = btree.NewMap[uint64, model.Order](btreeDegree)
	s.index = make(map[string]uint64, len(orders))
	for _, o := range orders {
		s.upsertLocked(o)
	}
	s.initialized = true
	s.mu.Unlock()
	s.notify()
}

// Upsert adds an order or updates it in place, keeping its arrival position.
func (s *Store) Upsert(o model.Order) {
	s.mu.Lock()
	s.upsertLocked(o)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) upsertLocked(o model.Order) {
	if seq, ok := s.index[o.ID]; ok {
		s.orders.Set(seq, o)
		return
	}
	s.seq++
	s.index[o.ID] = s.seq
	s.orders.Set(s.seq, o)
}

func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	seq, ok := s.index[id]
	if ok {
		delete(s.index, id)
		s.orders.Delete(seq)
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
	return ok
}

// Snapshot returns a copy of the open orders in arrival order and whether
// the first load has completed.
func (s *Store) Snapshot() ([]model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Order, 0, s.orders.Len())
	s.orders.Scan(func(_ uint64, o model.Order) bool {
		out = append(out, o)
		return true
	})
	return out, s.initialized
}

func (s *Store) Get(id string) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq, ok := s.index[id]
	if !ok {
		return model.Order{}, false
	}
	return s.orders.Get(seq)
}

func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orders.Len()
}

// Subscribe returns a channel that receives a signal after every change.
// Signals coalesce: a slow reader sees one pending signal, never a backlog.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	return ch, func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
