package remotesync

import (
	"context"

	"github.com/dmitrijs2005/studenthub/internal/models"
)

// Remote is the collection service behind one Syncer.
type Remote[T models.Item] interface {
	List(ctx context.Context, userID string) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, serverID, userID string) error
}

// Updater is implemented by remotes that accept in-place edits.
type Updater[T models.Item] interface {
	Update(ctx context.Context, serverID string, item T) (T, error)
}

// RESTAPI is the uniform collection contract of the HTTP client.
type RESTAPI interface {
	List(ctx context.Context, coll models.Collection, userID string, out any) error
	Create(ctx context.Context, coll models.Collection, record, out any) error
	Update(ctx context.Context, coll models.Collection, id string, record, out any) error
	Delete(ctx context.Context, coll models.Collection, id, userID string) error
}

// RESTRemote binds a RESTAPI to one collection and its record type.
type RESTRemote[T models.Item] struct {
	api  RESTAPI
	coll models.Collection
}

func NewRESTRemote[T models.Item](api RESTAPI, coll models.Collection) *RESTRemote[T] {
	return &RESTRemote[T]{api: api, coll: coll}
}

func (r *RESTRemote[T]) List(ctx context.Context, userID string) ([]T, error) {
	var out []T
	if err := r.api.List(ctx, r.coll, userID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RESTRemote[T]) Create(ctx context.Context, item T) (T, error) {
	var out T
	err := r.api.Create(ctx, r.coll, item, &out)
	return out, err
}

func (r *RESTRemote[T]) Update(ctx context.Context, serverID string, item T) (T, error) {
	var out T
	err := r.api.Update(ctx, r.coll, serverID, item, &out)
	return out, err
}

func (r *RESTRemote[T]) Delete(ctx context.Context, serverID, userID string) error {
	return r.api.Delete(ctx, r.coll, serverID, userID)
}
