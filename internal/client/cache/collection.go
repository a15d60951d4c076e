// Package cache holds the in-memory, locally persisted mirror of each domain
// collection for the signed-in user. A Collection is the single source the
// CLI renders from; every mutation is written through to the KeyedStore
// before it returns.
package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/studenthub/internal/client/keyedstore"
	"github.com/dmitrijs2005/studenthub/internal/client/session"
	"github.com/dmitrijs2005/studenthub/internal/logging"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

var (
	ErrNoSession    = errors.New("no active session")
	ErrStaleSession = errors.New("result belongs to a previous session")
	ErrItemNotFound = errors.New("item not found")
	ErrDuplicateID  = errors.New("item with this id already exists")
	ErrMissingID    = errors.New("item has no id")
)

// Order is where Insert puts new items.
type Order int

const (
	Append Order = iota
	Prepend
)

// Collection is a per-user ordered list of T. Item ids are unique.
type Collection[T models.Item] struct {
	name  models.Collection
	order Order
	store *keyedstore.Store
	log   logging.Logger

	mu     sync.RWMutex
	ticket session.Ticket
	items  []T

	lmu       sync.RWMutex
	listeners []func([]T)
}

func New[T models.Item](name models.Collection, order Order, store *keyedstore.Store, log logging.Logger) *Collection[T] {
	return &Collection[T]{
		name:  name,
		order: order,
		store: store,
		log:   log.With("collection", string(name)),
	}
}

func (c *Collection[T]) Name() models.Collection { return c.name }

// Subscribe registers fn to be called with a snapshot after every change.
func (c *Collection[T]) Subscribe(fn func(items []T)) {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Load binds the collection to t and reads its persisted items. Missing or
// corrupt data yields an empty collection.
func (c *Collection[T]) Load(ctx context.Context, t session.Ticket) {
	var items []T
	if !c.store.GetJSON(ctx, t.Identity, c.name, &items) {
		items = nil
	}

	c.mu.Lock()
	c.ticket = t
	c.items = items
	snap := c.snapshot()
	c.mu.Unlock()

	c.notify(snap)
}

// Clear unbinds the collection and drops the in-memory items. Nothing is
// written to the store.
func (c *Collection[T]) Clear() {
	c.mu.Lock()
	c.ticket = session.Ticket{}
	c.items = nil
	c.mu.Unlock()

	c.notify(nil)
}

// Ticket returns the session period the collection is bound to.
func (c *Collection[T]) Ticket() session.Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ticket
}

// Items returns a copy of the current items.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot()
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the item carrying id.
func (c *Collection[T]) Get(id models.ItemID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// GetFor is Get on behalf of t.
func (c *Collection[T]) GetFor(t session.Ticket, id models.ItemID) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	if err := c.checkTicket(&t); err != nil {
		return zero, err
	}
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], nil
	}
	return zero, ErrItemNotFound
}

// Resolve turns a user supplied identifier into an ItemID, looking among
// server ids first and local ids second.
func (c *Collection[T]) Resolve(raw string) (models.ItemID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if raw == "" {
		return models.ItemID{}, false
	}
	if id := models.ServerID(raw); c.indexOf(id) >= 0 {
		return id, true
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if id := models.LocalID(n); c.indexOf(id) >= 0 {
			return id, true
		}
	}
	return models.ItemID{}, false
}

// ReplaceAll swaps in items fetched for t. A ticket from another session
// period is rejected with ErrStaleSession and nothing changes.
func (c *Collection[T]) ReplaceAll(ctx context.Context, t session.Ticket, items []T) error {
	next := append([]T(nil), items...)
	return c.mutate(ctx, &t, func(cur []T) ([]T, error) { return next, nil })
}

// Insert adds item at the collection's configured end.
func (c *Collection[T]) Insert(ctx context.Context, item T) error {
	return c.add(ctx, nil, item, c.order == Prepend)
}

// InsertFor is Insert on behalf of t. It fails with ErrStaleSession once
// the collection is bound to another session period.
func (c *Collection[T]) InsertFor(ctx context.Context, t session.Ticket, item T) error {
	return c.add(ctx, &t, item, c.order == Prepend)
}

func (c *Collection[T]) Append(ctx context.Context, item T) error {
	return c.add(ctx, nil, item, false)
}

func (c *Collection[T]) Prepend(ctx context.Context, item T) error {
	return c.add(ctx, nil, item, true)
}

func (c *Collection[T]) add(ctx context.Context, expect *session.Ticket, item T, front bool) error {
	return c.mutate(ctx, expect, func(cur []T) ([]T, error) {
		ref := item.Key()
		if ref.ID().IsZero() {
			return nil, ErrMissingID
		}
		for _, existing := range cur {
			if shareID(existing.Key(), ref) {
				return nil, ErrDuplicateID
			}
		}
		next := make([]T, 0, len(cur)+1)
		if front {
			next = append(next, item)
			next = append(next, cur...)
		} else {
			next = append(next, cur...)
			next = append(next, item)
		}
		return next, nil
	})
}

// Update applies patch to the item carrying id.
func (c *Collection[T]) Update(ctx context.Context, id models.ItemID, patch func(item *T)) error {
	return c.update(ctx, nil, id, patch)
}

// UpdateFor is Update on behalf of t.
func (c *Collection[T]) UpdateFor(ctx context.Context, t session.Ticket, id models.ItemID, patch func(item *T)) error {
	return c.update(ctx, &t, id, patch)
}

func (c *Collection[T]) update(ctx context.Context, expect *session.Ticket, id models.ItemID, patch func(item *T)) error {
	return c.mutate(ctx, expect, func(cur []T) ([]T, error) {
		i := indexIn(cur, id)
		if i < 0 {
			return nil, ErrItemNotFound
		}
		next := append([]T(nil), cur...)
		patch(&next[i])
		return next, nil
	})
}

// Remove deletes the item carrying id.
func (c *Collection[T]) Remove(ctx context.Context, id models.ItemID) error {
	return c.remove(ctx, nil, id)
}

// RemoveFor is Remove on behalf of t.
func (c *Collection[T]) RemoveFor(ctx context.Context, t session.Ticket, id models.ItemID) error {
	return c.remove(ctx, &t, id)
}

func (c *Collection[T]) remove(ctx context.Context, expect *session.Ticket, id models.ItemID) error {
	return c.mutate(ctx, expect, func(cur []T) ([]T, error) {
		i := indexIn(cur, id)
		if i < 0 {
			return nil, ErrItemNotFound
		}
		next := make([]T, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		return next, nil
	})
}

// Reconcile replaces the item carrying id with item at the same position.
// It is used once the server has accepted a locally created record, and
// rejects tickets from an earlier session period.
func (c *Collection[T]) Reconcile(ctx context.Context, t session.Ticket, id models.ItemID, item T) error {
	return c.mutate(ctx, &t, func(cur []T) ([]T, error) {
		i := indexIn(cur, id)
		if i < 0 {
			return nil, ErrItemNotFound
		}
		next := append([]T(nil), cur...)
		next[i] = item
		return next, nil
	})
}

// mutate computes the next item list under the lock, persists it and only
// then publishes it. When expect is set, the collection must still be bound
// to that ticket.
func (c *Collection[T]) mutate(ctx context.Context, expect *session.Ticket, fn func(cur []T) ([]T, error)) error {
	c.mu.Lock()

	if err := c.checkTicket(expect); err != nil {
		c.mu.Unlock()
		return err
	}

	next, err := fn(c.items)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if err := c.store.SetJSON(ctx, c.ticket.Identity, c.name, next); err != nil {
		c.mu.Unlock()
		c.log.Error(ctx, "persist failed", "err", err)
		return fmt.Errorf("persist %s: %w", c.name, err)
	}
	c.items = next
	snap := c.snapshot()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// checkTicket reports whether the collection may be changed on behalf of
// expect. A nil expect only needs a bound collection. Callers hold c.mu.
func (c *Collection[T]) checkTicket(expect *session.Ticket) error {
	switch {
	case !c.ticket.Valid() && (expect == nil || !expect.Valid()):
		return ErrNoSession
	case !c.ticket.Valid():
		return ErrStaleSession
	case expect != nil && !expect.Same(c.ticket):
		return ErrStaleSession
	}
	return nil
}

func (c *Collection[T]) snapshot() []T {
	if c.items == nil {
		return nil
	}
	return append([]T(nil), c.items...)
}

func (c *Collection[T]) notify(items []T) {
	c.lmu.RLock()
	listeners := slices.Clone(c.listeners)
	c.lmu.RUnlock()

	for _, fn := range listeners {
		fn(items)
	}
}

func (c *Collection[T]) indexOf(id models.ItemID) int {
	return indexIn(c.items, id)
}

func indexIn[T models.Item](items []T, id models.ItemID) int {
	for i, it := range items {
		if it.Key().Has(id) {
			return i
		}
	}
	return -1
}

func shareID(a, b models.Ref) bool {
	if a.ServerID != "" && a.ServerID == b.ServerID {
		return true
	}
	return a.LocalID != 0 && a.LocalID == b.LocalID
}
