// Package repotest provides in-memory repositories for tests. They honour the
// repository contracts (ordering, not-found and invalid-id errors, timestamp
// handling) without a database.
package repotest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"sprockets/internal/inventory"
	"sprockets/internal/model"
	"sprockets/internal/repository"

	"github.com/google/uuid"
)

// Ids are 24 hex digits, accepted in either case like Mongo ObjectIDs.
var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// clock hands out strictly increasing timestamps so creation order is stable.
type clock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

var tick clock

// store is a generic in-memory Store[T].
type store[T any] struct {
	mu     sync.Mutex
	entity string
	seq    int
	rows   map[string]T
	order  []string
	name   func(T) string
	meta   func(*T) (id *string, created, updated *time.Time)
}

func newStore[T any](entity string, name func(T) string, meta func(*T) (*string, *time.Time, *time.Time)) *store[T] {
	return &store[T]{entity: entity, rows: make(map[string]T), name: name, meta: meta}
}

// key validates id and returns its canonical lower-case form.
func (s *store[T]) key(id string) (string, error) {
	if !idPattern.MatchString(id) {
		return "", inventory.ErrInvalidID
	}
	return strings.ToLower(id), nil
}

func (s *store[T]) Create(_ context.Context, item *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id, created, updated := s.meta(item)
	*id = fmt.Sprintf("%024x", s.seq)
	*created = tick.now()
	*updated = *created
	s.rows[*id] = *item
	s.order = append(s.order, *id)
	return nil
}

func (s *store[T]) FindAll(_ context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(T) bool { return true }), nil
}

func (s *store[T]) FindByID(_ context.Context, id string) (*T, error) {
	id, err := s.key(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.rows[id]
	if !ok {
		return nil, inventory.NotFound(s.entity)
	}
	return &item, nil
}

func (s *store[T]) FindByName(_ context.Context, text string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(text)
	return s.filter(func(item T) bool {
		return strings.Contains(strings.ToLower(s.name(item)), needle)
	}), nil
}

func (s *store[T]) Update(_ context.Context, id string, item *T) error {
	id, err := s.key(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.rows[id]
	if !ok {
		return inventory.NotFound(s.entity)
	}
	_, oldCreated, _ := s.meta(&old)
	newID, created, updated := s.meta(item)
	*newID = id
	*created = *oldCreated
	*updated = tick.now()
	s.rows[id] = *item
	return nil
}

func (s *store[T]) Delete(_ context.Context, id string) error {
	id, err := s.key(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return inventory.NotFound(s.entity)
	}
	delete(s.rows, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Put stores item under its own id without touching timestamps. Tests use it
// to plant records such as dangling references.
func (s *store[T]) Put(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _, _ := s.meta(&item)
	if _, ok := s.rows[*id]; !ok {
		s.order = append(s.order, *id)
	}
	s.rows[*id] = item
}

// Len reports how many records are stored.
func (s *store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *store[T]) filter(keep func(T) bool) []T {
	out := []T{}
	for _, id := range s.order {
		if item := s.rows[id]; keep(item) {
			out = append(out, item)
		}
	}
	return out
}

type snapshot[T any] struct {
	seq   int
	rows  map[string]T
	order []string
}

func (s *store[T]) snapshot() snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make(map[string]T, len(s.rows))
	for k, v := range s.rows {
		rows[k] = v
	}
	return snapshot[T]{seq: s.seq, rows: rows, order: append([]string(nil), s.order...)}
}

func (s *store[T]) restore(snap snapshot[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq, s.rows, s.order = snap.seq, snap.rows, snap.order
}

// ── Parts ────────────────────────────────────────────────────────────────────

type Parts struct {
	*store[inventory.Part]
}

func NewParts() *Parts {
	return &Parts{newStore(inventory.EntityPart,
		func(p inventory.Part) string { return p.Name },
		func(p *inventory.Part) (*string, *time.Time, *time.Time) { return &p.ID, &p.CreatedAt, &p.UpdatedAt },
	)}
}

func (r *Parts) FindByIDs(_ context.Context, ids []string) ([]inventory.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.Part
	for _, id := range ids {
		if p, ok := r.rows[strings.ToLower(id)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// ── Products ─────────────────────────────────────────────────────────────────

type Products struct {
	*store[inventory.Product]
	// RemoveErr, when set, makes RemovePartReferences fail.
	RemoveErr error
}

func NewProducts() *Products {
	return &Products{store: newStore(inventory.EntityProduct,
		func(p inventory.Product) string { return p.Name },
		func(p *inventory.Product) (*string, *time.Time, *time.Time) { return &p.ID, &p.CreatedAt, &p.UpdatedAt },
	)}
}

func (r *Products) RemovePartReferences(_ context.Context, partID string) (int64, error) {
	if r.RemoveErr != nil {
		return 0, r.RemoveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var touched int64
	for id, p := range r.rows {
		refs, removed := inventory.WithoutPart(p.AssociatedParts, partID)
		if removed == 0 {
			continue
		}
		p.AssociatedParts = refs
		p.UpdatedAt = tick.now()
		r.rows[id] = p
		touched++
	}
	return touched, nil
}

// ── Users ────────────────────────────────────────────────────────────────────

type Users struct {
	mu    sync.Mutex
	users []model.User
}

func NewUsers() *Users { return &Users{} }

func (r *Users) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = tick.now()
	u.UpdatedAt = u.CreatedAt
	r.users = append(r.users, *u)
	return nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == strings.ToLower(email) })
}

func (r *Users) FindByID(_ context.Context, id string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ID.String() == id })
}

func (r *Users) FindAll(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.User{}, r.users...), nil
}

func (r *Users) find(match func(model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// ── Transactions ─────────────────────────────────────────────────────────────

// Tx snapshots the part and product stores before fn and restores them when
// fn fails, giving the same all-or-nothing outcome as a database transaction.
type Tx struct {
	Parts    *Parts
	Products *Products
	Calls    int
}

func (t *Tx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	parts, products := t.Parts.snapshot(), t.Products.snapshot()
	if err := fn(ctx); err != nil {
		t.Parts.restore(parts)
		t.Products.restore(products)
		return err
	}
	return nil
}

var (
	_ repository.PartRepository    = (*Parts)(nil)
	_ repository.ProductRepository = (*Products)(nil)
	_ repository.UserRepository    = (*Users)(nil)
	_ repository.Transactor        = (*Tx)(nil)
)
