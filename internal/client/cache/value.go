package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/studenthub/internal/client/keyedstore"
	"github.com/dmitrijs2005/studenthub/internal/client/session"
	"github.com/dmitrijs2005/studenthub/internal/logging"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

// Value is a single per-user string, e.g. the avatar data URI. A new Set
// replaces the previous value; no history is kept.
type Value struct {
	name  models.Collection
	store *keyedstore.Store
	log   logging.Logger

	mu     sync.RWMutex
	ticket session.Ticket
	value  string
}

func NewValue(name models.Collection, store *keyedstore.Store, log logging.Logger) *Value {
	return &Value{name: name, store: store, log: log.With("collection", string(name))}
}

func (v *Value) Load(ctx context.Context, t session.Ticket) {
	raw, _ := v.store.Get(ctx, t.Identity, v.name)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.ticket = t
	v.value = string(raw)
}

func (v *Value) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ticket = session.Ticket{}
	v.value = ""
}

func (v *Value) Get() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set persists s for the bound user. An empty s removes the stored value.
func (v *Value) Set(ctx context.Context, s string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ticket.Valid() {
		return ErrNoSession
	}

	var err error
	if s == "" {
		err = v.store.Remove(ctx, v.ticket.Identity, v.name)
	} else {
		err = v.store.Set(ctx, v.ticket.Identity, v.name, []byte(s))
	}
	if err != nil {
		return fmt.Errorf("persist %s: %w", v.name, err)
	}
	v.value = s
	return nil
}
