// Package services contains the business logic of the collection services:
// accounts and profiles, generic per-user collections, and the shared feed.
// Handlers translate transport concerns only; every rule lives here.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/dbx"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

// checkID rejects ids that cannot name a stored row. Such lookups are
// reported as not found rather than as database errors.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrNotFound
	}
	return nil
}

// checkOwner verifies that userID names an existing account.
func checkOwner(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, userID string) error {
	if userID == "" {
		return validate.NewFieldError(common.UserIDParam, "userId is required")
	}
	if checkID(userID) != nil {
		return validate.NewFieldError(common.UserIDParam, "unknown user")
	}
	if _, err := m.Users(db).GetByID(ctx, userID); err != nil {
		if isNotFound(err) {
			return validate.NewFieldError(common.UserIDParam, "unknown user")
		}
		return err
	}
	return nil
}

// stripIDs encodes doc without its "_id" and "id" members; identifiers live
// in their own columns.
func stripIDs(doc any) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "_id")
	delete(m, "id")
	return json.Marshal(m)
}

// withID adds the server id to a stored body.
func withID(body []byte, id string) (json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("corrupt record %s: %w", id, err)
	}
	if m == nil {
		m = make(map[string]json.RawMessage)
	}
	idJSON, _ := json.Marshal(id)
	m["_id"] = idJSON
	return json.Marshal(m)
}

func isNotFound(err error) bool { return errors.Is(err, common.ErrNotFound) }

// notFound names what was missing when err is common.ErrNotFound.
func notFound(err error, what string) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %s not found", common.ErrNotFound, what)
	}
	return err
}
