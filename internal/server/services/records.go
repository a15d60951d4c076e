package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/dbx"
	"github.com/dmitrijs2005/studenthub/internal/logging"
	dto "github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/server/models"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

// Generic lists the collections served by RecordService.
var Generic = []dto.Collection{dto.Expenses, dto.Tasks, dto.Events, dto.Moods, dto.Diary}

// newDocument returns the typed payload of coll, used to validate bodies.
func newDocument(coll dto.Collection) (any, bool) {
	switch coll {
	case dto.Expenses:
		return &dto.Expense{}, true
	case dto.Tasks:
		return &dto.Task{}, true
	case dto.Events:
		return &dto.Event{}, true
	case dto.Moods:
		return &dto.MoodLog{}, true
	case dto.Diary:
		return &dto.DiaryEntry{}, true
	default:
		return nil, false
	}
}

// newestFirst reports the listing order of coll. Planner items read in
// calendar order, everything else most recent first.
func newestFirst(coll dto.Collection) bool {
	return coll != dto.Tasks && coll != dto.Events
}

// RecordService stores the per-user collections. Records are owned by the
// userId in their body and only the owner may change or delete them.
type RecordService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewRecordService(m repomanager.RepositoryManager, log logging.Logger) *RecordService {
	return &RecordService{repomanager: m, log: log.With("service", "records")}
}

// List returns the records userID owns in coll, each with its "_id".
func (s *RecordService) List(ctx context.Context, coll dto.Collection, userID string) ([]json.RawMessage, error) {
	if _, ok := newDocument(coll); !ok {
		return nil, fmt.Errorf("%w: unknown collection %q", common.ErrNotFound, coll)
	}
	if userID == "" {
		return nil, validate.NewFieldError(common.UserIDParam, "userId is required")
	}
	if checkID(userID) != nil {
		return []json.RawMessage{}, nil
	}

	recs, err := s.repomanager.Records(s.repomanager.Conn()).List(ctx, models.ListQuery{
		Collection:  coll,
		UserID:      userID,
		NewestFirst: newestFirst(coll),
	})
	if err != nil {
		return nil, err
	}

	out := make([]json.RawMessage, 0, len(recs))
	for _, rec := range recs {
		doc, err := withID(rec.Body, rec.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// decode validates body as a coll document and returns the owner and the
// canonical body to store.
func decode(coll dto.Collection, body []byte) (owner string, stored []byte, err error) {
	doc, ok := newDocument(coll)
	if !ok {
		return "", nil, fmt.Errorf("%w: unknown collection %q", common.ErrNotFound, coll)
	}
	if err := json.Unmarshal(body, doc); err != nil {
		return "", nil, validate.NewFieldError("request", "malformed JSON body")
	}
	if err := validate.Struct(doc); err != nil {
		return "", nil, err
	}

	switch d := doc.(type) {
	case *dto.Expense:
		owner = d.UserID
	case *dto.Task:
		owner = d.UserID
	case *dto.Event:
		if d.Color == "" {
			d.Color = dto.EventColors[0]
		}
		owner = d.UserID
	case *dto.MoodLog:
		if d.Suggestion == "" {
			d.Suggestion = dto.MoodSuggestions[d.Mood]
		}
		owner = d.UserID
	case *dto.DiaryEntry:
		if d.Title == "" {
			d.Title = dto.DefaultDiaryTitle
		}
		owner = d.UserID
	}

	stored, err = stripIDs(doc)
	return owner, stored, err
}

// Create stores a new record and returns it with its server id.
func (s *RecordService) Create(ctx context.Context, coll dto.Collection, body []byte) (json.RawMessage, error) {
	owner, stored, err := decode(coll, body)
	if err != nil {
		return nil, err
	}

	db := s.repomanager.Conn()
	if err := checkOwner(ctx, s.repomanager, db, owner); err != nil {
		return nil, err
	}

	rec := &models.Record{Collection: coll, UserID: owner, Body: stored}
	if err := s.repomanager.Records(db).Create(ctx, rec); err != nil {
		return nil, err
	}
	return withID(rec.Body, rec.ID)
}

// Update replaces the body of record id. The userId of the new body must be
// the record's owner.
func (s *RecordService) Update(ctx context.Context, coll dto.Collection, id string, body []byte) (json.RawMessage, error) {
	owner, stored, err := decode(coll, body)
	if err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, notFound(err, coll.Singular())
	}

	var out json.RawMessage
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)
		rec, err := repo.Get(ctx, coll, id)
		if err != nil {
			return notFound(err, coll.Singular())
		}
		if rec.UserID != owner {
			return fmt.Errorf("%w: %s belongs to another user", common.ErrForbidden, coll.Singular())
		}

		rec.Body = stored
		if err := repo.Update(ctx, rec); err != nil {
			return err
		}
		out, err = withID(rec.Body, rec.ID)
		return err
	})
	return out, err
}

// Delete removes record id on behalf of userID.
func (s *RecordService) Delete(ctx context.Context, coll dto.Collection, id, userID string) error {
	if _, ok := newDocument(coll); !ok {
		return fmt.Errorf("%w: unknown collection %q", common.ErrNotFound, coll)
	}
	if userID == "" {
		return validate.NewFieldError(common.UserIDParam, "userId is required")
	}
	if err := checkID(id); err != nil {
		return notFound(err, coll.Singular())
	}

	return s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)
		rec, err := repo.Get(ctx, coll, id)
		if err != nil {
			return notFound(err, coll.Singular())
		}
		if rec.UserID != userID {
			return fmt.Errorf("%w: %s belongs to another user", common.ErrForbidden, coll.Singular())
		}
		if err := repo.Delete(ctx, coll, id); err != nil {
			return notFound(err, coll.Singular())
		}
		s.log.Debug(ctx, "record deleted", "collection", coll, "id", id)
		return nil
	})
}
