package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_IDPrefersServer(t *testing.T) {
	assert.Equal(t, ServerID("abc"), Ref{ServerID: "abc", LocalID: 17}.ID())
	assert.Equal(t, LocalID(17), Ref{LocalID: 17}.ID())
	assert.True(t, Ref{}.ID().IsZero())
}

func TestRef_Has(t *testing.T) {
	r := Ref{ServerID: "abc", LocalID: 17}

	assert.True(t, r.Has(ServerID("abc")))
	assert.True(t, r.Has(LocalID(17)))
	assert.False(t, r.Has(ServerID("17")))
	assert.False(t, r.Has(LocalID(18)))
	assert.False(t, Ref{}.Has(ServerID("")))
}

func TestItemID_String(t *testing.T) {
	assert.Equal(t, "server:abc", ServerID("abc").String())
	assert.Equal(t, "local:5", LocalID(5).String())
	assert.Equal(t, "", ItemID{}.String())
}

func TestNextLocalID_StrictlyIncreasing(t *testing.T) {
	orig := nowFn
	t.Cleanup(func() { nowFn = orig })

	frozen := time.UnixMilli(1_700_000_000_000)
	nowFn = func() time.Time { return frozen }

	a := NextLocalID()
	b := NextLocalID()
	c := NextLocalID()
	assert.Less(t, a, b)
	assert.Less(t, b, c)
	assert.GreaterOrEqual(t, a, frozen.UnixMilli())
}

func TestExpense_JSONShape(t *testing.T) {
	e := Expense{Ref: Ref{LocalID: 42}, Title: "Coffee", Amount: 3.5, Date: "2024-05-01"}

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42,"title":"Coffee","amount":3.5,"date":"2024-05-01"}`, string(b))

	var back Expense
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"s1","title":"Tea","amount":2,"date":"2024-05-02"}`), &back))
	assert.Equal(t, "s1", back.ServerID)
	assert.Equal(t, 2.0, back.Amount)
}

func TestFeedPost_ToggleLike(t *testing.T) {
	p := FeedPost{}
	p.ToggleLike("u1")
	p.ToggleLike("u2")
	assert.True(t, p.LikedBy("u1"))

	p.ToggleLike("u1")
	assert.False(t, p.LikedBy("u1"))
	assert.Equal(t, []string{"u2"}, p.Likes)
}

func TestFeedPost_FindComment(t *testing.T) {
	p := FeedPost{Comments: []Comment{{ID: "c1"}, {ID: "c2"}}}
	assert.Equal(t, 1, p.FindComment("c2"))
	assert.Equal(t, -1, p.FindComment("zz"))
}

func TestUser_Identity(t *testing.T) {
	assert.Equal(t, "oid", User{ID: "oid", StudentID: "s-1"}.Identity())
	assert.Equal(t, "s-1", User{StudentID: "s-1"}.Identity())
	assert.Equal(t, "s-1", User{StudentID: "s-1"}.DisplayName())
}

func TestProfilePatch_Apply(t *testing.T) {
	name := "Ann"
	u := User{StudentID: "s-1", Name: "Old", Phone: "1"}
	ProfilePatch{Name: &name}.Apply(&u)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "1", u.Phone)
}

func TestCollection_Singular(t *testing.T) {
	assert.Equal(t, "entry", Diary.Singular())
	assert.Equal(t, "post", Feed.Singular())
	assert.True(t, Moods.Valid())
	assert.False(t, Notes.Valid())
}

func TestMoodSuggestions_CoverAllMoods(t *testing.T) {
	for _, m := range MoodNames {
		assert.NotEmpty(t, MoodSuggestions[m], m)
	}
}
