package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

// fakeAPI is an in-memory stand-in for the services. Records are kept as
// JSON objects so every collection shares one implementation.
type fakeAPI struct {
	mu sync.Mutex

	down    bool
	calls   int
	nextID  int
	records map[models.Collection][]map[string]any
	users   map[string]models.User
	gates   map[string]chan struct{} // List for a user waits on its gate
	stats   models.Stats

	resets []models.ResetPasswordRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		records: map[models.Collection][]map[string]any{},
		users:   map[string]models.User{},
		gates:   map[string]chan struct{}{},
	}
}

func (f *fakeAPI) enter() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.down {
		return fmt.Errorf("%w: connection refused", common.ErrUnavailable)
	}
	return nil
}

func (f *fakeAPI) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAPI) seed(coll models.Collection, record any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[coll] = append(f.records[coll], toMap(record))
}

func toMap(v any) map[string]any {
	b, _ := json.Marshal(v)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

func convert(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (f *fakeAPI) Ping(ctx context.Context) error { return f.enter() }

func (f *fakeAPI) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	if err := f.enter(); err != nil {
		return models.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[req.StudentID]; ok {
		return models.User{}, common.ErrConflict
	}
	u := models.User{ID: "id-" + req.StudentID, StudentID: req.StudentID, Name: req.Name, Email: req.Email}
	f.users[req.StudentID] = u
	return u, nil
}

func (f *fakeAPI) Login(ctx context.Context, req models.LoginRequest) (models.User, error) {
	if err := f.enter(); err != nil {
		return models.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[req.StudentID]
	if !ok {
		return models.User{}, common.ErrUnauthorized
	}
	return u, nil
}

func (f *fakeAPI) ForgotPassword(ctx context.Context, email string) error { return f.enter() }

func (f *fakeAPI) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := f.enter(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, req)
	return nil
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.User, error) {
	if err := f.enter(); err != nil {
		return models.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for sid, u := range f.users {
		if u.ID == patch.UserID {
			patch.Apply(&u)
			f.users[sid] = u
			return u, nil
		}
	}
	return models.User{}, common.ErrNotFound
}

func (f *fakeAPI) Stats(ctx context.Context, userID string) (models.Stats, error) {
	if err := f.enter(); err != nil {
		return models.Stats{}, err
	}
	return f.stats, nil
}

func (f *fakeAPI) List(ctx context.Context, coll models.Collection, userID string, out any) error {
	f.mu.Lock()
	gate := f.gates[userID]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err := f.enter(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	res := []map[string]any{}
	for _, r := range f.records[coll] {
		if coll == models.Feed || r["userId"] == userID {
			res = append(res, r)
		}
	}
	return convert(res, out)
}

func (f *fakeAPI) Create(ctx context.Context, coll models.Collection, record, out any) error {
	if err := f.enter(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m := toMap(record)
	delete(m, "id")
	m["_id"] = fmt.Sprintf("%s-%d", coll, f.nextID)
	f.records[coll] = append(f.records[coll], m)
	return convert(m, out)
}

func (f *fakeAPI) Update(ctx context.Context, coll models.Collection, id string, record, out any) error {
	if err := f.enter(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records[coll] {
		if r["_id"] == id {
			m := toMap(record)
			delete(m, "id")
			f.records[coll][i] = m
			return convert(m, out)
		}
	}
	return common.ErrNotFound
}

func (f *fakeAPI) Delete(ctx context.Context, coll models.Collection, id, userID string) error {
	if err := f.enter(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records[coll] {
		if r["_id"] == id {
			if r["userId"] != userID {
				return common.ErrForbidden
			}
			f.records[coll] = append(f.records[coll][:i], f.records[coll][i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeAPI) post(id string) (models.FeedPost, int, error) {
	for i, r := range f.records[models.Feed] {
		if r["_id"] == id {
			var p models.FeedPost
			err := convert(r, &p)
			return p, i, err
		}
	}
	return models.FeedPost{}, -1, common.ErrNotFound
}

func (f *fakeAPI) ToggleLike(ctx context.Context, postID, userID string) (models.FeedPost, error) {
	if err := f.enter(); err != nil {
		return models.FeedPost{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, i, err := f.post(postID)
	if err != nil {
		return p, err
	}
	p.ToggleLike(userID)
	f.records[models.Feed][i] = toMap(p)
	return p, nil
}

func (f *fakeAPI) AddComment(ctx context.Context, postID string, c models.Comment) (models.FeedPost, error) {
	if err := f.enter(); err != nil {
		return models.FeedPost{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, i, err := f.post(postID)
	if err != nil {
		return p, err
	}
	f.nextID++
	c.ID = fmt.Sprintf("c-%d", f.nextID)
	p.Comments = append(p.Comments, c)
	f.records[models.Feed][i] = toMap(p)
	return p, nil
}

func (f *fakeAPI) DeleteComment(ctx context.Context, postID, commentID, userID string) (models.FeedPost, error) {
	if err := f.enter(); err != nil {
		return models.FeedPost{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, i, err := f.post(postID)
	if err != nil {
		return p, err
	}
	j := p.FindComment(commentID)
	if j < 0 {
		return p, common.ErrNotFound
	}
	if p.Comments[j].UserID != userID {
		return p, common.ErrForbidden
	}
	p.Comments = append(p.Comments[:j], p.Comments[j+1:]...)
	f.records[models.Feed][i] = toMap(p)
	return p, nil
}
