package workspace

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/studenthub/internal/client/datefilter"
	"github.com/dmitrijs2005/studenthub/internal/filex"
	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

// MaxNoteAttachment is the largest file a note may carry.
const MaxNoteAttachment = 5 << 20

// AddNote stores a note on this device only. An empty date means today.
func (w *Workspace) AddNote(ctx context.Context, text, date, attachment string) (models.Note, error) {
	if _, err := w.ticket(); err != nil {
		return models.Note{}, err
	}
	if date == "" {
		date = w.today()
	}

	n := models.Note{
		Ref:       models.Ref{LocalID: models.NextLocalID()},
		Text:      strings.TrimSpace(text),
		Date:      date,
		Timestamp: w.now(),
	}
	if err := validate.Struct(n); err != nil {
		return n, err
	}

	if attachment != "" {
		a, err := filex.ReadDataURI(attachment, MaxNoteAttachment)
		if err != nil {
			return n, validate.NewFieldError("attachment", err.Error())
		}
		n.FileData = a.DataURI
		n.FileName = a.FileName
	}

	return n, w.Notes.Insert(ctx, n)
}

func (w *Workspace) DeleteNote(ctx context.Context, id string) error {
	itemID, _, err := resolve(w.Notes, id)
	if err != nil {
		return err
	}
	return w.Notes.Remove(ctx, itemID)
}

func (w *Workspace) NoteList(opts datefilter.Options) []models.Note {
	return datefilter.Filter(w.Notes.Items(), func(n models.Note) string { return n.Date }, w.withNow(opts))
}
