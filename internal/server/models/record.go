package models

import (
	"time"

	dto "github.com/dmitrijs2005/studenthub/internal/models"
)

// Record is one element of a collection. Body holds the JSON document without
// its identifiers; ID and CreatedAt are assigned by the database.
type Record struct {
	ID         string
	Collection dto.Collection
	UserID     string
	Body       []byte
	CreatedAt  time.Time
}

// ListQuery selects records of one collection. An empty UserID lists every
// owner; a zero Limit means no limit.
type ListQuery struct {
	Collection  dto.Collection
	UserID      string
	NewestFirst bool
	Limit       int
}
