package models

// Collection names a per-user cached collection. The same names are used as
// REST path segments and as KeyedStore suffixes.
type Collection string

const (
	Expenses Collection = "expenses"
	Tasks    Collection = "tasks"
	Events   Collection = "events"
	Moods    Collection = "moods"
	Diary    Collection = "diary"
	Feed     Collection = "feed"
	Notes    Collection = "notes"
	Avatar   Collection = "avatar"
)

// Remote lists the collections owned by a remote service.
var Remote = []Collection{Expenses, Tasks, Events, Moods, Diary, Feed}

// Singular is the envelope key a create response wraps the record in.
func (c Collection) Singular() string {
	switch c {
	case Expenses:
		return "expense"
	case Tasks:
		return "task"
	case Events:
		return "event"
	case Moods:
		return "mood"
	case Diary:
		return "entry"
	case Feed:
		return "post"
	default:
		return string(c)
	}
}

// Valid reports whether c is one of the known remote collections.
func (c Collection) Valid() bool {
	for _, r := range Remote {
		if r == c {
			return true
		}
	}
	return false
}
