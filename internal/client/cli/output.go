package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/dmitrijs2005/studenthub/internal/client/cache"
	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

// table prints rows aligned in columns. An empty listing prints "none".
func (a *App) table(rows ...[]any) {
	if len(rows) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(a.out, " none")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	for _, r := range rows {
		tbl.AddRow(r...)
	}
	_, _ = fmt.Fprintln(a.out, tbl)
}

// saved reports a write and whether it reached the service.
func (a *App) saved(what string, synced bool) {
	if synced {
		fmt.Fprintf(a.out, "%s saved\n", what)
		return
	}
	fmt.Fprintf(a.out, "%s saved locally %s\n", what, color.YellowString("(offline)"))
}

func (a *App) printComments(p models.FeedPost) {
	rows := make([][]any, 0, len(p.Comments))
	for _, c := range p.Comments {
		rows = append(rows, []any{c.ID, c.UserName, c.Text})
	}
	a.table(rows...)
}

// itemID shows the id a user can type back; local-only items are starred.
func itemID(r models.Ref) string {
	if r.LocalOnly() {
		return r.ID().Value + "*"
	}
	return r.ServerID
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

func check(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// describe turns an error into a message fit for the prompt.
func describe(err error) string {
	var ve *validate.ValidationError
	switch {
	case errors.As(err, &ve):
		keys := make([]string, 0, len(ve.Fields))
		for k := range ve.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msgs := make([]string, 0, len(keys))
		for _, k := range keys {
			msgs = append(msgs, ve.Fields[k])
		}
		return strings.Join(msgs, "; ")
	case errors.Is(err, common.ErrUnauthorized):
		return "invalid credentials"
	case errors.Is(err, common.ErrForbidden):
		return "you can only change your own items"
	case errors.Is(err, common.ErrConflict):
		return "already registered"
	case errors.Is(err, common.ErrUnavailable):
		return "server unavailable, try again when online"
	case errors.Is(err, cache.ErrItemNotFound), errors.Is(err, common.ErrNotFound):
		return "no such item"
	case errors.Is(err, cache.ErrNoSession):
		return "please login first"
	default:
		return err.Error()
	}
}
