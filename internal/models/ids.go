// Package models holds the domain records exchanged between the StudentHub
// client and the collection services, plus the identifier scheme the client
// uses for items created while offline.
package models

import (
	"strconv"
	"sync"
	"time"
)

// IDKind tells which identifier space an ItemID belongs to.
type IDKind int

const (
	KindServer IDKind = iota + 1
	KindLocal
)

func (k IDKind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindLocal:
		return "local"
	default:
		return "none"
	}
}

// ItemID is a tagged item identifier: either server-issued or a local
// temporary id taken from a monotonic clock.
type ItemID struct {
	Kind  IDKind
	Value string
}

func ServerID(v string) ItemID { return ItemID{Kind: KindServer, Value: v} }

func LocalID(v int64) ItemID { return ItemID{Kind: KindLocal, Value: strconv.FormatInt(v, 10)} }

func (id ItemID) IsZero() bool { return id.Kind == 0 || id.Value == "" }

func (id ItemID) String() string {
	if id.IsZero() {
		return ""
	}
	return id.Kind.String() + ":" + id.Value
}

// Ref carries both identifiers of a record. It is embedded in every
// collection item; the JSON names match the wire format of the services.
type Ref struct {
	ServerID string `json:"_id,omitempty"`
	LocalID  int64  `json:"id,omitempty"`
}

// Key returns the Ref itself so that any struct embedding Ref satisfies Item.
func (r Ref) Key() Ref { return r }

// ID resolves the preferred identifier: the server one once known, the local
// one before that.
func (r Ref) ID() ItemID {
	if r.ServerID != "" {
		return ServerID(r.ServerID)
	}
	if r.LocalID != 0 {
		return LocalID(r.LocalID)
	}
	return ItemID{}
}

// LocalOnly reports whether the record never reached a server.
func (r Ref) LocalOnly() bool { return r.ServerID == "" }

// Has reports whether id names this record in either identifier space.
func (r Ref) Has(id ItemID) bool {
	switch id.Kind {
	case KindServer:
		return r.ServerID != "" && r.ServerID == id.Value
	case KindLocal:
		return r.LocalID != 0 && strconv.FormatInt(r.LocalID, 10) == id.Value
	default:
		return false
	}
}

// Item is implemented by every cached collection element.
type Item interface {
	Key() Ref
}

var (
	localMu   sync.Mutex
	lastLocal int64
	nowFn     = time.Now
)

// NextLocalID returns a millisecond clock reading that is strictly greater
// than any value previously returned in this process.
func NextLocalID() int64 {
	localMu.Lock()
	defer localMu.Unlock()

	id := nowFn().UnixMilli()
	if id <= lastLocal {
		id = lastLocal + 1
	}
	lastLocal = id
	return id
}
