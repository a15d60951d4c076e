package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/studenthub/internal/logging"
	dto "github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/server/config"
	"github.com/dmitrijs2005/studenthub/internal/server/mail"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

const goodPassword = "Secret123"

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type env struct {
	repos   *repomanager.InMemoryRepositoryManager
	mailer  *fakeMailer
	users   *UserService
	records *RecordService
	feed    *FeedService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	repos := repomanager.NewInMemoryRepositoryManager()
	mailer := &fakeMailer{}
	log := logging.Nop()

	return &env{
		repos:   repos,
		mailer:  mailer,
		users:   NewUserService(repos, mailer, cfg, log),
		records: NewRecordService(repos, log),
		feed:    NewFeedService(repos, log),
	}
}

func (e *env) register(t *testing.T, studentID, name, email string) dto.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), dto.RegisterRequest{
		StudentID: studentID, Password: goodPassword, Name: name, Email: email,
	})
	require.NoError(t, err)
	return u
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *validate.ValidationError
	require.True(t, errors.As(err, &ve), "expected a validation error, got %v", err)
	return ve.Fields
}

func raw(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
