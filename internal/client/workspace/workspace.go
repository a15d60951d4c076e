// Package workspace is the authenticated-app scope of the client. A Workspace
// owns the session, one cache per collection and the syncers that connect
// them to the services, and exposes the user-facing operations on top.
//
// Every operation validates its input before touching the cache or the
// network. Writes go to the local cache first; remote failures degrade to
// local-only state instead of surfacing as errors.
package workspace

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/studenthub/internal/client/cache"
	"github.com/dmitrijs2005/studenthub/internal/client/keyedstore"
	"github.com/dmitrijs2005/studenthub/internal/client/remotesync"
	"github.com/dmitrijs2005/studenthub/internal/client/session"
	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/logging"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

// API is the remote surface the workspace uses. *client.HTTPClient
// implements it.
type API interface {
	remotesync.RESTAPI

	Ping(ctx context.Context) error
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
	UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.User, error)
	Stats(ctx context.Context, userID string) (models.Stats, error)
	ToggleLike(ctx context.Context, postID, userID string) (models.FeedPost, error)
	AddComment(ctx context.Context, postID string, comment models.Comment) (models.FeedPost, error)
	DeleteComment(ctx context.Context, postID, commentID, userID string) (models.FeedPost, error)
}

type Workspace struct {
	store   *keyedstore.Store
	session *session.Manager
	api     API
	log     logging.Logger

	Expenses *remotesync.Syncer[models.Expense]
	Tasks    *remotesync.Syncer[models.Task]
	Events   *remotesync.Syncer[models.Event]
	Moods    *remotesync.Syncer[models.MoodLog]
	Diary    *remotesync.Syncer[models.DiaryEntry]
	Feed     *remotesync.Syncer[models.FeedPost]
	Notes    *cache.Collection[models.Note]
	Avatar   *cache.Value

	now  func() time.Time
	pick func(n int) int

	inflight sync.WaitGroup
}

type Option func(*Workspace)

// WithClock replaces time.Now, e.g. for default dates and the dashboard.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

// WithPicker replaces the random choice of affirmations.
func WithPicker(pick func(n int) int) Option {
	return func(w *Workspace) { w.pick = pick }
}

func New(store *keyedstore.Store, api API, log logging.Logger, opts ...Option) *Workspace {
	w := &Workspace{
		store:   store,
		session: session.NewManager(store, log),
		api:     api,
		log:     log.With("component", "workspace"),
		now:     time.Now,
		pick:    rand.IntN,
	}
	for _, o := range opts {
		o(w)
	}

	w.Expenses = newSyncer[models.Expense](w, models.Expenses, cache.Prepend)
	w.Tasks = newSyncer[models.Task](w, models.Tasks, cache.Append)
	w.Events = newSyncer[models.Event](w, models.Events, cache.Append)
	w.Moods = newSyncer[models.MoodLog](w, models.Moods, cache.Prepend)
	w.Diary = newSyncer[models.DiaryEntry](w, models.Diary, cache.Prepend)
	w.Feed = newSyncer[models.FeedPost](w, models.Feed, cache.Prepend)
	w.Notes = cache.New[models.Note](models.Notes, cache.Prepend, store, log)
	w.Avatar = cache.NewValue(models.Avatar, store, log)

	w.session.Subscribe(w)
	return w
}

func newSyncer[T models.Item](w *Workspace, name models.Collection, order cache.Order) *remotesync.Syncer[T] {
	c := cache.New[T](name, order, w.store, w.log)
	return remotesync.NewSyncer[T](c, remotesync.NewRESTRemote[T](w.api, name), w.log)
}

// Open removes data left by older client versions and restores the
// persisted session, if any.
func (w *Workspace) Open(ctx context.Context) session.State {
	w.store.PurgeLegacy(ctx)
	return w.session.Restore(ctx)
}

// Close waits for in-flight fetches to finish.
func (w *Workspace) Close() {
	w.inflight.Wait()
}

func (w *Workspace) Session() *session.Manager { return w.session }

// User returns the signed-in profile.
func (w *Workspace) User() (models.User, bool) { return w.session.Current() }

func (w *Workspace) Ping(ctx context.Context) error { return w.api.Ping(ctx) }

// SessionStarted loads every cache from the store, then refreshes them from
// the services in the background.
func (w *Workspace) SessionStarted(ctx context.Context, t session.Ticket) {
	w.Expenses.Cache().Load(ctx, t)
	w.Tasks.Cache().Load(ctx, t)
	w.Events.Cache().Load(ctx, t)
	w.Moods.Cache().Load(ctx, t)
	w.Diary.Cache().Load(ctx, t)
	w.Feed.Cache().Load(ctx, t)
	w.Notes.Load(ctx, t)
	w.Avatar.Load(ctx, t)

	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()
		_ = w.fetchAll(t)
	}()
}

// SessionEnded drops every in-memory cache. Persisted data stays.
func (w *Workspace) SessionEnded(ctx context.Context) {
	w.Expenses.Cache().Clear()
	w.Tasks.Cache().Clear()
	w.Events.Cache().Clear()
	w.Moods.Cache().Clear()
	w.Diary.Cache().Clear()
	w.Feed.Cache().Clear()
	w.Notes.Clear()
	w.Avatar.Clear()
}

// WaitSync blocks until the fetches started by the last transitions finish.
func (w *Workspace) WaitSync() { w.inflight.Wait() }

// Sync refreshes every remote collection now and reports the failures.
// Collections that failed keep their cached items.
func (w *Workspace) Sync(ctx context.Context) error {
	t, err := w.ticket()
	if err != nil {
		return err
	}
	return w.fetchAll(t)
}

// fetchAll runs one fetch per collection concurrently. Each fetch only
// touches its own collection.
func (w *Workspace) fetchAll(t session.Ticket) error {
	fetches := []func(session.Ticket) error{
		w.Expenses.FetchAndReconcile,
		w.Tasks.FetchAndReconcile,
		w.Events.FetchAndReconcile,
		w.Moods.FetchAndReconcile,
		w.Diary.FetchAndReconcile,
		w.Feed.FetchAndReconcile,
	}

	var g errgroup.Group
	errs := make([]error, len(fetches))
	for i, fetch := range fetches {
		g.Go(func() error {
			errs[i] = fetch(t)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// ticket returns the current session period or cache.ErrNoSession.
func (w *Workspace) ticket() (session.Ticket, error) {
	t := w.session.Ticket()
	if !t.Valid() {
		return t, cache.ErrNoSession
	}
	return t, nil
}

func (w *Workspace) today() string {
	return w.now().Format(time.DateOnly)
}

// resolve maps a user supplied id onto an item of c.
func resolve[T models.Item](c *cache.Collection[T], raw string) (models.ItemID, T, error) {
	id, ok := c.Resolve(raw)
	if !ok {
		var zero T
		return id, zero, cache.ErrItemNotFound
	}
	item, _ := c.Get(id)
	return id, item, nil
}

// remove deletes the item named raw through s.
func remove[T models.Item](ctx context.Context, w *Workspace, s *remotesync.Syncer[T], raw string) error {
	t, err := w.ticket()
	if err != nil {
		return err
	}
	id, _, err := resolve(s.Cache(), raw)
	if err != nil {
		return err
	}
	return s.Remove(ctx, t, id)
}

// offline reports whether err means the service could not be reached.
func offline(err error) bool {
	return errors.Is(err, common.ErrUnavailable)
}
