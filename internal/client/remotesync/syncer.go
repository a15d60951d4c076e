// Package remotesync keeps a cache.Collection in step with its remote
// service. Reads fall back to the local cache when the service is
// unreachable; writes are applied locally first and reconciled once the
// service accepts them.
package remotesync

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/studenthub/internal/client/cache"
	"github.com/dmitrijs2005/studenthub/internal/client/session"
	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/logging"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

type Syncer[T models.Item] struct {
	cache  *cache.Collection[T]
	remote Remote[T]
	log    logging.Logger
}

func NewSyncer[T models.Item](c *cache.Collection[T], r Remote[T], log logging.Logger) *Syncer[T] {
	return &Syncer[T]{
		cache:  c,
		remote: r,
		log:    log.With("component", "remotesync", "collection", string(c.Name())),
	}
}

func (s *Syncer[T]) Cache() *cache.Collection[T] { return s.cache }

// FetchAndReconcile replaces the cache with the server's records for t. On
// failure the cache is left as it is. A result that arrives after t's period
// ended is discarded with cache.ErrStaleSession.
func (s *Syncer[T]) FetchAndReconcile(t session.Ticket) error {
	ctx := t.Context()

	items, err := s.remote.List(ctx, t.Identity)
	if err != nil {
		if ctx.Err() != nil {
			s.log.Debug(ctx, "fetch abandoned, session ended", "user", t.Identity)
			return cache.ErrStaleSession
		}
		s.log.Warn(ctx, "fetch failed, keeping local cache", "err", err)
		return err
	}

	if err := s.cache.ReplaceAll(ctx, t, items); err != nil {
		if errors.Is(err, cache.ErrStaleSession) {
			s.log.Debug(ctx, "discarding stale fetch", "user", t.Identity, "epoch", t.Epoch)
		}
		return err
	}
	s.log.Debug(ctx, "fetched", "count", len(items))
	return nil
}

// Submit inserts item locally, then offers it to the service. synced reports
// whether the server accepted it, in which case the local copy is replaced by
// the server's record in place. A remote failure is not an error: the item
// stays in the cache under its local id. A ticket from an ended session
// period is rejected with cache.ErrStaleSession before anything is written.
func (s *Syncer[T]) Submit(ctx context.Context, t session.Ticket, item T) (stored T, synced bool, err error) {
	if err := s.cache.InsertFor(ctx, t, item); err != nil {
		return item, false, err
	}

	created, err := s.remote.Create(ctx, item)
	if err != nil {
		s.log.Warn(ctx, "create failed, kept locally", "id", item.Key().ID().String(), "err", err)
		return item, false, nil
	}

	switch err := s.cache.Reconcile(ctx, t, item.Key().ID(), created); {
	case err == nil:
		return created, true, nil
	case errors.Is(err, cache.ErrStaleSession), errors.Is(err, cache.ErrItemNotFound):
		s.log.Debug(ctx, "created record no longer needed locally", "err", err)
		return created, true, nil
	default:
		return item, false, err
	}
}

// Remove deletes the item carrying id. Items that never reached the server
// are removed without a network call. Otherwise the service is asked first;
// an ownership refusal is returned and nothing changes locally, any other
// failure is logged and the item is removed locally anyway.
func (s *Syncer[T]) Remove(ctx context.Context, t session.Ticket, id models.ItemID) error {
	item, err := s.cache.GetFor(t, id)
	if err != nil {
		return err
	}

	if ref := item.Key(); !ref.LocalOnly() {
		err := s.remote.Delete(ctx, ref.ServerID, t.Identity)
		switch {
		case errors.Is(err, common.ErrForbidden):
			return err
		case err != nil:
			s.log.Warn(ctx, "remote delete failed, removing locally", "id", ref.ServerID, "err", err)
		}
	}

	return s.cache.RemoveFor(ctx, t, id)
}

// Update patches the item locally and, when the remote supports it and the
// item has a server id, pushes the result. Remote failures are only logged.
func (s *Syncer[T]) Update(ctx context.Context, t session.Ticket, id models.ItemID, patch func(item *T)) error {
	if err := s.cache.UpdateFor(ctx, t, id, patch); err != nil {
		return err
	}

	up, ok := s.remote.(Updater[T])
	if !ok {
		return nil
	}
	item, err := s.cache.GetFor(t, id)
	if err != nil || item.Key().LocalOnly() {
		return nil
	}

	updated, err := up.Update(ctx, item.Key().ServerID, item)
	if err != nil {
		s.log.Warn(ctx, "remote update failed, kept locally", "id", item.Key().ServerID, "err", err)
		return nil
	}
	if err := s.cache.Reconcile(ctx, t, id, updated); err != nil {
		s.log.Debug(ctx, "update result not applied", "err", err)
	}
	return nil
}
