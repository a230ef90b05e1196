// Package memory provides in-process stores used for local runs and tests.
// They honour the same contracts as the MongoDB adapters.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/shopline/commerce/internal/core/domain"
	"github.com/shopline/commerce/internal/core/ports"
)

// UserStore is a concurrency-safe in-memory ports.UserRepository.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	stored := *user
	stored.ID = uuid.NewString()
	s.byID[stored.ID] = &stored
	s.byEmail[stored.Email] = stored.ID

	out := stored
	return &out, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *s.byID[id]
	return &out, nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// OrderStore is a concurrency-safe in-memory ports.OrderRepository.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	seq    uint64
	order  map[string]uint64
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[string]*domain.Order),
		order:  make(map[string]uint64),
	}
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.OrderItem(nil), o.Items...)
	c.StatusHistory = append([]domain.StatusHistoryEntry(nil), o.StatusHistory...)
	return &c
}

func (s *OrderStore) Create(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = uuid.NewString()
	s.seq++
	s.orders[order.ID] = cloneOrder(order)
	s.order[order.ID] = s.seq
	return nil
}

func (s *OrderStore) FindByID(_ context.Context, id, userID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok || !o.OwnedBy(userID) {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (s *OrderStore) Update(_ context.Context, order *domain.Order, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[order.ID]
	if !ok || !stored.OwnedBy(order.UserID) {
		return domain.ErrOrderNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}

	updated := cloneOrder(stored)
	updated.Status = order.Status
	updated.ShippingAddress = order.ShippingAddress
	updated.StatusHistory = append([]domain.StatusHistoryEntry(nil), order.StatusHistory...)
	updated.Version = order.Version
	updated.UpdatedAt = order.UpdatedAt
	s.orders[order.ID] = updated
	return nil
}

func (s *OrderStore) List(_ context.Context, f ports.ListOrdersFilter) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Order, 0)
	for _, o := range s.orders {
		if !o.OwnedBy(f.UserID) {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] < s.order[out[j].ID] })
	return out, nil
}

// EventStore keeps order events in memory.
type EventStore struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) InsertEvent(_ context.Context, event *domain.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

// Events returns a snapshot of the stored events.
func (s *EventStore) Events() []domain.OrderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OrderEvent(nil), s.events...)
}
