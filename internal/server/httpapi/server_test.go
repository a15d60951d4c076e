package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/studenthub/internal/logging"
	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/server/config"
	"github.com/dmitrijs2005/studenthub/internal/server/mail"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/studenthub/internal/server/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	log := logging.Nop()
	repos := repomanager.NewInMemoryRepositoryManager()

	return NewServer(&Options{
		Address:        ":0",
		DisableReqLogs: true,
		Users:          services.NewUserService(repos, mail.NewConsoleMailer(log), cfg, log),
		Records:        services.NewRecordService(repos, log),
		Feed:           services.NewFeedService(repos, log),
		Logger:         log,
	})
}

type response struct {
	code int
	body map[string]json.RawMessage
	raw  []byte
}

func (r response) decode(t *testing.T, key string, out any) {
	t.Helper()
	raw, ok := r.body[key]
	require.True(t, ok, "no %q in %s", key, r.raw)
	require.NoError(t, json.Unmarshal(raw, out))
}

func (r response) errorText(t *testing.T) string {
	t.Helper()
	var msg string
	r.decode(t, "error", &msg)
	return msg
}

func do(t *testing.T, srv *Server, method, target string, body any) response {
	t.Helper()

	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	res := response{code: rec.Code, raw: rec.Body.Bytes()}
	if bytes.HasPrefix(bytes.TrimSpace(res.raw), []byte("{")) {
		require.NoError(t, json.Unmarshal(res.raw, &res.body))
	}
	return res
}

func registerUser(t *testing.T, srv *Server, studentID, name string) models.User {
	t.Helper()
	res := do(t, srv, http.MethodPost, "/api/register", models.RegisterRequest{
		StudentID: studentID, Password: "Secret123", Name: name, Email: studentID + "@uni.edu",
	})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	var u models.User
	res.decode(t, "user", &u)
	return u
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	res := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, res.code)

	var status string
	res.decode(t, "status", &status)
	assert.Equal(t, "ok", status)
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	u := registerUser(t, srv, "s1", "Ann")
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "s1", u.StudentID)

	t.Run("duplicate registration", func(t *testing.T) {
		res := do(t, srv, http.MethodPost, "/api/register", models.RegisterRequest{StudentID: "s1", Password: "Secret123"})
		assert.Equal(t, http.StatusConflict, res.code)
		assert.Equal(t, "student already registered", res.errorText(t))
	})

	t.Run("login", func(t *testing.T) {
		res := do(t, srv, http.MethodPost, "/api/login", models.LoginRequest{StudentID: "s1", Password: "Secret123"})
		require.Equal(t, http.StatusOK, res.code)
		var got models.User
		res.decode(t, "user", &got)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("bad password", func(t *testing.T) {
		res := do(t, srv, http.MethodPost, "/api/login", models.LoginRequest{StudentID: "s1", Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, res.code)
		assert.Equal(t, "invalid credentials", res.errorText(t))
	})

	t.Run("forgot password", func(t *testing.T) {
		res := do(t, srv, http.MethodPost, "/api/forgot-password", map[string]string{"email": "s1@uni.edu"})
		assert.Equal(t, http.StatusOK, res.code)

		res = do(t, srv, http.MethodPost, "/api/forgot-password", map[string]string{"email": "ghost@uni.edu"})
		assert.Equal(t, http.StatusNotFound, res.code)
		assert.Equal(t, "user not found", res.errorText(t))
	})

	t.Run("reset with a bad token", func(t *testing.T) {
		res := do(t, srv, http.MethodPost, "/api/reset-password", models.ResetPasswordRequest{
			Email: "s1@uni.edu", Token: "bogus", NewPassword: "Other1234",
		})
		assert.Equal(t, http.StatusUnauthorized, res.code)
	})
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		target string
		body   any
		field  string
	}{
		{"weak password", http.MethodPost, "/api/register", models.RegisterRequest{StudentID: "s1", Password: "short"}, "password"},
		{"missing student id", http.MethodPost, "/api/login", models.LoginRequest{Password: "x"}, "studentId"},
		{"malformed json", http.MethodPost, "/api/login", "{nope", "request"},
		{"non-object record", http.MethodPost, "/api/expenses", "[1,2]", "request"},
		{"list without user", http.MethodGet, "/api/tasks", nil, "userId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, srv, tt.method, tt.target, tt.body)
			require.Equal(t, http.StatusBadRequest, res.code, string(res.raw))

			var fields map[string]string
			res.decode(t, "fields", &fields)
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestProfileAndStats(t *testing.T) {
	srv := newTestServer(t)
	u := registerUser(t, srv, "s1", "Ann")

	res := do(t, srv, http.MethodGet, "/api/profile/"+u.ID, nil)
	require.Equal(t, http.StatusOK, res.code)

	name := "Annie"
	res = do(t, srv, http.MethodPut, "/api/profile", models.ProfilePatch{UserID: u.ID, Name: &name})
	require.Equal(t, http.StatusOK, res.code, string(res.raw))
	var updated models.User
	res.decode(t, "user", &updated)
	assert.Equal(t, "Annie", updated.Name)

	res = do(t, srv, http.MethodPost, "/api/expenses", models.Expense{UserID: u.ID, Title: "Lunch", Amount: 12.5, Date: "2024-03-01"})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))

	res = do(t, srv, http.MethodGet, "/api/user-stats/"+u.ID, nil)
	require.Equal(t, http.StatusOK, res.code)
	var stats models.Stats
	require.NoError(t, json.Unmarshal(res.raw, &stats))
	assert.Equal(t, 1, stats.TotalExpenses)
	assert.InDelta(t, 12.5, stats.TotalExpenseAmount, 0.001)

	res = do(t, srv, http.MethodGet, "/api/profile/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, res.code)
}

func TestRecordLifecycle(t *testing.T) {
	srv := newTestServer(t)
	ann := registerUser(t, srv, "s1", "Ann")
	bob := registerUser(t, srv, "s2", "Bob")

	res := do(t, srv, http.MethodPost, "/api/tasks", models.Task{UserID: ann.ID, Title: "Essay", DueDate: "2024-05-01"})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	var task models.Task
	res.decode(t, "task", &task)
	require.NotEmpty(t, task.ServerID)

	list := func(userID string) []models.Task {
		res := do(t, srv, http.MethodGet, "/api/tasks?"+url.Values{"userId": {userID}}.Encode(), nil)
		require.Equal(t, http.StatusOK, res.code)
		var out []models.Task
		require.NoError(t, json.Unmarshal(res.raw, &out))
		return out
	}
	assert.Len(t, list(ann.ID), 1)
	assert.Empty(t, list(bob.ID))

	task.Completed = true
	res = do(t, srv, http.MethodPut, "/api/tasks/"+task.ServerID, task)
	require.Equal(t, http.StatusOK, res.code, string(res.raw))
	var updated models.Task
	res.decode(t, "task", &updated)
	assert.True(t, updated.Completed)

	stolen := task
	stolen.UserID = bob.ID
	res = do(t, srv, http.MethodPut, "/api/tasks/"+task.ServerID, stolen)
	assert.Equal(t, http.StatusForbidden, res.code)

	res = do(t, srv, http.MethodDelete, "/api/tasks/"+task.ServerID+"?userId="+bob.ID, nil)
	assert.Equal(t, http.StatusForbidden, res.code)

	res = do(t, srv, http.MethodDelete, "/api/tasks/"+task.ServerID+"?userId="+ann.ID, nil)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Empty(t, list(ann.ID))

	res = do(t, srv, http.MethodDelete, "/api/tasks/"+task.ServerID+"?userId="+ann.ID, nil)
	assert.Equal(t, http.StatusNotFound, res.code)
}

func TestTrailingSlashIsIgnored(t *testing.T) {
	srv := newTestServer(t)
	res := do(t, srv, http.MethodGet, "/api/feed/", nil)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "[]", strings.TrimSpace(string(res.raw)))
}

func TestFeedFlow(t *testing.T) {
	srv := newTestServer(t)
	ann := registerUser(t, srv, "s1", "Ann")
	bob := registerUser(t, srv, "s2", "Bob")

	res := do(t, srv, http.MethodPost, "/api/feed", models.FeedPost{UserID: ann.ID, UserName: "Ann", Text: "Hello"})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	var post models.FeedPost
	res.decode(t, "post", &post)
	require.NotEmpty(t, post.ServerID)
	base := "/api/feed/" + post.ServerID

	res = do(t, srv, http.MethodPost, base+"/like", map[string]string{"userId": bob.ID})
	require.Equal(t, http.StatusOK, res.code, string(res.raw))
	res.decode(t, "post", &post)
	assert.Equal(t, []string{bob.ID}, post.Likes)

	res = do(t, srv, http.MethodPost, base+"/comment", models.Comment{UserID: bob.ID, UserName: "Bob", Text: "Hi"})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	res.decode(t, "post", &post)
	require.Len(t, post.Comments, 1)
	cid := post.Comments[0].ID

	res = do(t, srv, http.MethodPut, "/api/users/"+bob.ID+"/name", map[string]string{"userName": "Robert"})
	require.Equal(t, http.StatusOK, res.code, string(res.raw))
	var comments int
	res.decode(t, "commentsUpdated", &comments)
	assert.Equal(t, 1, comments)

	res = do(t, srv, http.MethodDelete, base+"/comment/"+cid+"?userId="+ann.ID, nil)
	assert.Equal(t, http.StatusForbidden, res.code)

	res = do(t, srv, http.MethodDelete, base+"/comment/"+cid+"?userId="+bob.ID, nil)
	require.Equal(t, http.StatusOK, res.code)
	res.decode(t, "post", &post)
	assert.Empty(t, post.Comments)

	res = do(t, srv, http.MethodDelete, base+"?userId="+bob.ID, nil)
	assert.Equal(t, http.StatusForbidden, res.code)
	res = do(t, srv, http.MethodDelete, base+"?userId="+ann.ID, nil)
	assert.Equal(t, http.StatusOK, res.code)

	res = do(t, srv, http.MethodGet, "/api/feed", nil)
	assert.Equal(t, "[]", strings.TrimSpace(string(res.raw)))
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := newTestServer(t)
	srv.opts.Address = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
