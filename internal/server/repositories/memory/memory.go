// Package memory keeps users and records in process memory. It backs the
// service and HTTP tests and the server's -d memory mode.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/studenthub/internal/common"
	dto "github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/server/models"
)

// Store holds the tables. Repositories returned by Users and Records share it.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users   map[string]models.User
	records []models.Record

	Now func() time.Time
}

func NewStore() *Store {
	return &Store{users: make(map[string]models.User), Now: time.Now}
}

// WithTx runs fn with transactions serialized. When fn fails every change it
// made is rolled back.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	users := make(map[string]models.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	recs := make([]models.Record, len(s.records))
	copy(recs, s.records)
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.users, s.records = users, recs
		s.mu.Unlock()
		return err
	}
	return nil
}

type UserRepository struct{ s *Store }

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.StudentID == user.StudentID {
			return nil, common.ErrConflict
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.Now()
	r.s.users[user.ID] = *user
	return user, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByStudentID(_ context.Context, studentID string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.StudentID == studentID })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email != "" && strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *UserRepository) UpdateProfile(_ context.Context, user *models.User) error {
	return r.update(user.ID, func(u *models.User) {
		u.Name, u.Email, u.Phone = user.Name, user.Email, user.Phone
		u.Department, u.Batch, u.Avatar = user.Department, user.Batch, user.Avatar
	})
}

func (r *UserRepository) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	return r.update(id, func(u *models.User) {
		u.ResetTokenHash, u.ResetExpires = tokenHash, expires
	})
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return r.update(id, func(u *models.User) {
		u.PasswordHash = passwordHash
		u.ResetTokenHash, u.ResetExpires = "", time.Time{}
	})
}

func (r *UserRepository) update(id string, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	fn(&u)
	r.s.users[id] = u
	return nil
}

type RecordRepository struct{ s *Store }

func (s *Store) Records() *RecordRepository { return &RecordRepository{s: s} }

func clone(rec models.Record) *models.Record {
	rec.Body = slices.Clone(rec.Body)
	return &rec
}

func (r *RecordRepository) Create(_ context.Context, rec *models.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.CreatedAt = r.s.Now()
	r.s.records = append(r.s.records, *clone(*rec))
	return nil
}

func (r *RecordRepository) index(coll dto.Collection, id string) int {
	return slices.IndexFunc(r.s.records, func(rec models.Record) bool {
		return rec.Collection == coll && rec.ID == id
	})
}

func (r *RecordRepository) Get(_ context.Context, coll dto.Collection, id string) (*models.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.index(coll, id)
	if i < 0 {
		return nil, common.ErrNotFound
	}
	return clone(r.s.records[i]), nil
}

// List orders by creation time; records created at the same instant keep
// insertion order.
func (r *RecordRepository) List(_ context.Context, q models.ListQuery) ([]*models.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Record, 0)
	for _, rec := range r.s.records {
		if rec.Collection != q.Collection || (q.UserID != "" && rec.UserID != q.UserID) {
			continue
		}
		out = append(out, clone(rec))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if q.NewestFirst {
		slices.Reverse(out)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *RecordRepository) Update(_ context.Context, rec *models.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.index(rec.Collection, rec.ID)
	if i < 0 {
		return common.ErrNotFound
	}
	r.s.records[i].Body = slices.Clone(rec.Body)
	return nil
}

func (r *RecordRepository) Delete(_ context.Context, coll dto.Collection, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.index(coll, id)
	if i < 0 {
		return common.ErrNotFound
	}
	r.s.records = slices.Delete(r.s.records, i, i+1)
	return nil
}

func (r *RecordRepository) CountByUser(_ context.Context, userID string) (map[dto.Collection]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[dto.Collection]int)
	for _, rec := range r.s.records {
		if rec.UserID == userID {
			counts[rec.Collection]++
		}
	}
	return counts, nil
}

func (r *RecordRepository) SumNumber(_ context.Context, coll dto.Collection, userID, field string) (float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sum float64
	for _, rec := range r.s.records {
		if rec.Collection != coll || rec.UserID != userID {
			continue
		}
		sum += numberField(rec.Body, field)
	}
	return sum, nil
}
