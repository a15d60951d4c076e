package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/studenthub/internal/common"
	dto "github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/server/models"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Users()

	u, err := repo.Create(ctx, &models.User{StudentID: "s-1", Email: "Ann@X.io", PasswordHash: "h"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	_, err = repo.Create(ctx, &models.User{StudentID: "s-1"})
	assert.ErrorIs(t, err, common.ErrConflict)

	got, err := repo.GetByEmail(ctx, "ann@x.io")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	expires := time.Now().Add(time.Hour)
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "th", expires))
	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "h2"))

	got, err = repo.GetByStudentID(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "h2", got.PasswordHash)
	assert.Empty(t, got.ResetTokenHash)
	assert.True(t, got.ResetExpires.IsZero())

	got.Name = "Ann"
	require.NoError(t, repo.UpdateProfile(ctx, got))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, "ghost", "x"), common.ErrNotFound)
	_, err = repo.GetByEmail(ctx, "")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRecords_ListOrderAndFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	s.Now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick/2) * time.Minute) // pairs share a timestamp
	}
	repo := s.Records()

	for i, owner := range []string{"u1", "u2", "u1", "u1"} {
		rec := &models.Record{Collection: dto.Tasks, UserID: owner, Body: []byte(`{"n":` + string(rune('0'+i)) + `}`)}
		require.NoError(t, repo.Create(ctx, rec))
	}
	require.NoError(t, repo.Create(ctx, &models.Record{Collection: dto.Moods, UserID: "u1", Body: []byte(`{}`)}))

	asc, err := repo.List(ctx, models.ListQuery{Collection: dto.Tasks, UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.JSONEq(t, `{"n":0}`, string(asc[0].Body))
	assert.JSONEq(t, `{"n":3}`, string(asc[2].Body))

	desc, err := repo.List(ctx, models.ListQuery{Collection: dto.Tasks, NewestFirst: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.JSONEq(t, `{"n":3}`, string(desc[0].Body))

	desc[0].Body[1] = 'X'
	again, err := repo.Get(ctx, dto.Tasks, desc[0].ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":3}`, string(again.Body), "results must not alias stored bodies")
}

func TestRecords_UpdateDeleteAndStats(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Records()

	a := &models.Record{Collection: dto.Expenses, UserID: "u1", Body: []byte(`{"amount":2.5}`)}
	b := &models.Record{Collection: dto.Expenses, UserID: "u1", Body: []byte(`{"amount":"oops"}`)}
	c := &models.Record{Collection: dto.Feed, UserID: "u1", Body: []byte(`{}`)}
	for _, r := range []*models.Record{a, b, c} {
		require.NoError(t, repo.Create(ctx, r))
	}

	a.Body = []byte(`{"amount":4}`)
	require.NoError(t, repo.Update(ctx, a))

	sum, err := repo.SumNumber(ctx, dto.Expenses, "u1", "amount")
	require.NoError(t, err)
	assert.Equal(t, 4.0, sum)

	counts, err := repo.CountByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[dto.Collection]int{dto.Expenses: 2, dto.Feed: 1}, counts)

	require.NoError(t, repo.Delete(ctx, dto.Expenses, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, dto.Expenses, b.ID), common.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, b), common.ErrNotFound)
	_, err = repo.Get(ctx, dto.Tasks, a.ID)
	assert.ErrorIs(t, err, common.ErrNotFound, "collection is part of the key")
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context) error {
		_, err := s.Users().Create(ctx, &models.User{StudentID: "kept"})
		return err
	}))

	err := s.WithTx(ctx, func(ctx context.Context) error {
		_, _ = s.Users().Create(ctx, &models.User{StudentID: "dropped"})
		_ = s.Records().Create(ctx, &models.Record{Collection: dto.Feed})
		return errors.New("abort")
	})
	require.Error(t, err)

	_, err = s.Users().GetByStudentID(ctx, "kept")
	assert.NoError(t, err)
	_, err = s.Users().GetByStudentID(ctx, "dropped")
	assert.ErrorIs(t, err, common.ErrNotFound)

	feed, err := s.Records().List(ctx, models.ListQuery{Collection: dto.Feed})
	require.NoError(t, err)
	assert.Empty(t, feed)
}
