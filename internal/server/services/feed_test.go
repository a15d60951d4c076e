package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/studenthub/internal/common"
	dto "github.com/dmitrijs2005/studenthub/internal/models"
)

func TestNormalizePost(t *testing.T) {
	tests := []struct {
		name string
		in   dto.FeedPost
		want dto.FeedPost
	}{
		{
			name: "event fields derived from text",
			in:   dto.FeedPost{Category: "event", Text: "Hackathon on 2024-06-01 at 09:30"},
			want: dto.FeedPost{Category: "event", Text: "Hackathon on 2024-06-01 at 09:30",
				EventName: "Hackathon on 2024-06-01 at 09:30", EventDate: "2024-06-01", EventTime: "09:30",
				EventDescription: "Hackathon on 2024-06-01 at 09:30", EventColor: dto.DefaultPostEventColor},
		},
		{
			name: "explicit event fields win",
			in: dto.FeedPost{Category: "event", Text: "see 2024-06-01", EventName: "Fair",
				EventDate: "2024-07-01", EventTime: "18:00", EventDescription: "d", EventColor: "#000000"},
			want: dto.FeedPost{Category: "event", Text: "see 2024-06-01", EventName: "Fair",
				EventDate: "2024-07-01", EventTime: "18:00", EventDescription: "d", EventColor: "#000000"},
		},
		{
			name: "event without text",
			in:   dto.FeedPost{Category: "event", MediaData: "x"},
			want: dto.FeedPost{Category: "event", MediaData: "x", EventName: "Event", EventColor: dto.DefaultPostEventColor},
		},
		{
			name: "general posts drop event fields",
			in:   dto.FeedPost{Text: "hi", EventName: "stray", EventColor: "#fff"},
			want: dto.FeedPost{Category: "general", Text: "hi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			normalizePost(&p)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestFeed_CreateAndList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ann := e.register(t, "s-1", "Ann", "")
	bob := e.register(t, "s-2", "Bob", "")

	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	e.feed.now = func() time.Time { return fixed }

	p1, err := e.feed.Create(ctx, dto.FeedPost{UserID: ann.ID, UserName: "Ann", Text: "first", Likes: []string{"x"}})
	require.NoError(t, err)
	assert.Empty(t, p1.Likes, "likes start empty")
	assert.Equal(t, fixed, p1.Timestamp)
	assert.NotEmpty(t, p1.ServerID)

	_, err = e.feed.Create(ctx, dto.FeedPost{UserID: bob.ID, UserName: "Bob", Text: "second"})
	require.NoError(t, err)

	posts, err := e.feed.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Text, "newest first across users")
	assert.NotNil(t, posts[1].Comments)

	_, err = e.feed.Create(ctx, dto.FeedPost{UserID: ann.ID, Text: "  "})
	assert.Contains(t, fields(t, err), "text")
	_, err = e.feed.Create(ctx, dto.FeedPost{Text: "anon"})
	assert.Contains(t, fields(t, err), common.UserIDParam)
	_, err = e.feed.Create(ctx, dto.FeedPost{UserID: ann.ID, Text: "x", Category: "rumour"})
	assert.Contains(t, fields(t, err), "category")
}

func TestFeed_ListLimit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ann := e.register(t, "s-1", "Ann", "")

	for i := 0; i < FeedLimit+5; i++ {
		_, err := e.feed.Create(ctx, dto.FeedPost{UserID: ann.ID, Text: "p"})
		require.NoError(t, err)
	}
	posts, err := e.feed.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, FeedLimit)
}

func TestFeed_LikesAndComments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ann := e.register(t, "s-1", "Ann", "")
	bob := e.register(t, "s-2", "Bob", "")

	post, err := e.feed.Create(ctx, dto.FeedPost{UserID: ann.ID, Text: "hello"})
	require.NoError(t, err)

	got, err := e.feed.ToggleLike(ctx, post.ServerID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, got.Likes)
	got, err = e.feed.ToggleLike(ctx, post.ServerID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)

	_, err = e.feed.ToggleLike(ctx, post.ServerID, "")
	assert.Contains(t, fields(t, err), common.UserIDParam)
	_, err = e.feed.ToggleLike(ctx, "00000000-0000-0000-0000-000000000000", bob.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err = e.feed.AddComment(ctx, post.ServerID, dto.Comment{UserID: bob.ID, UserName: "Bob", Text: " nice "})
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	c := got.Comments[0]
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "nice", c.Text)
	assert.False(t, c.CreatedAt.IsZero())

	_, err = e.feed.AddComment(ctx, post.ServerID, dto.Comment{UserID: bob.ID, Text: ""})
	assert.Contains(t, fields(t, err), "text")

	_, err = e.feed.DeleteComment(ctx, post.ServerID, c.ID, ann.ID)
	assert.ErrorIs(t, err, common.ErrForbidden, "the post author cannot delete others' comments")
	_, err = e.feed.DeleteComment(ctx, post.ServerID, "nope", bob.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err = e.feed.DeleteComment(ctx, post.ServerID, c.ID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestFeed_DeleteAndRename(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ann := e.register(t, "s-1", "Ann", "")
	bob := e.register(t, "s-2", "Bob", "")

	mine, err := e.feed.Create(ctx, dto.FeedPost{UserID: ann.ID, UserName: "Ann", Text: "one"})
	require.NoError(t, err)
	theirs, err := e.feed.Create(ctx, dto.FeedPost{UserID: bob.ID, UserName: "Bob", Text: "two"})
	require.NoError(t, err)
	_, err = e.feed.AddComment(ctx, theirs.ServerID, dto.Comment{UserID: ann.ID, UserName: "Ann", Text: "hey"})
	require.NoError(t, err)

	posts, comments, err := e.feed.RenameAuthor(ctx, ann.ID, "Annie")
	require.NoError(t, err)
	assert.Equal(t, 1, posts)
	assert.Equal(t, 1, comments)

	posts, comments, err = e.feed.RenameAuthor(ctx, ann.ID, "Annie")
	require.NoError(t, err)
	assert.Zero(t, posts+comments, "renaming to the same name changes nothing")

	_, _, err = e.feed.RenameAuthor(ctx, ann.ID, " ")
	assert.Contains(t, fields(t, err), "userName")

	assert.ErrorIs(t, e.feed.Delete(ctx, mine.ServerID, bob.ID), common.ErrForbidden)
	require.NoError(t, e.feed.Delete(ctx, mine.ServerID, ann.ID))
	assert.ErrorIs(t, e.feed.Delete(ctx, mine.ServerID, ann.ID), common.ErrNotFound)

	list, err := e.feed.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Annie", list[0].Comments[0].UserName)
}
