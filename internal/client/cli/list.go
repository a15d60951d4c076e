package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/studenthub/internal/client/datefilter"
	"github.com/dmitrijs2005/studenthub/internal/client/workspace"
	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

// chartWidth is the length of the longest bar drawn by Chart.
const chartWidth = 40

// parseFilter reads "[kind [from to]]". No arguments means all.
func parseFilter(args []string) (datefilter.Options, error) {
	if len(args) == 0 {
		return datefilter.Options{Kind: datefilter.All}, nil
	}
	k, err := datefilter.ParseKind(args[0])
	if err != nil {
		return datefilter.Options{}, validate.NewFieldError("filter", err.Error())
	}
	opts := datefilter.Options{Kind: k}
	if k == datefilter.Range {
		if len(args) != 3 {
			return opts, validate.NewFieldError("filter", "range needs a from and a to date")
		}
		opts.From, opts.To = args[1], args[2]
	}
	return opts, nil
}

// List prints one collection, optionally filtered by date.
func (a *App) List(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: list <expenses|tasks|events|moods|diary|feed|notes> [all|week|month|year|range <from> <to>]")
		return nil
	}
	opts, err := parseFilter(args[1:])
	if err != nil {
		return err
	}

	switch models.Collection(args[0]) {
	case models.Expenses:
		items := a.ws.ExpenseList(opts)
		rows := [][]any{{"ID", "DATE", "TITLE", "AMOUNT"}}
		for _, e := range items {
			rows = append(rows, []any{itemID(e.Ref), e.Date, e.Title, money(e.Amount)})
		}
		a.listing(rows)
		fmt.Fprintf(a.out, "Total: %s\n", money(workspace.ExpenseTotal(items)))
	case models.Tasks:
		rows := [][]any{{"ID", "", "DUE", "TIME", "TITLE"}}
		for _, t := range a.ws.TaskList(opts) {
			rows = append(rows, []any{itemID(t.Ref), check(t.Completed), t.DueDate, t.Time, t.Title})
		}
		a.listing(rows)
	case models.Events:
		rows := [][]any{{"ID", "DATE", "TIME", "NAME", "DESCRIPTION"}}
		for _, e := range a.ws.EventList(opts) {
			rows = append(rows, []any{itemID(e.Ref), e.Date, e.Time, e.Name, e.Description})
		}
		a.listing(rows)
	case models.Moods:
		rows := [][]any{{"ID", "DATE", "MOOD", "NOTE"}}
		for _, m := range a.ws.MoodList(opts) {
			rows = append(rows, []any{itemID(m.Ref), m.Date, m.Mood, m.Note})
		}
		a.listing(rows)
	case models.Diary:
		rows := [][]any{{"ID", "DATE", "TITLE", "MESSAGE"}}
		for _, e := range a.ws.DiaryList(opts) {
			rows = append(rows, []any{itemID(e.Ref), e.Date, e.Title, e.Message})
		}
		a.listing(rows)
	case models.Feed:
		a.listFeed()
	case models.Notes:
		rows := [][]any{{"ID", "DATE", "TEXT", "FILE"}}
		for _, n := range a.ws.NoteList(opts) {
			rows = append(rows, []any{itemID(n.Ref), n.Date, n.Text, n.FileName})
		}
		a.listing(rows)
	default:
		printlnFn("Unknown collection:", args[0])
	}
	return nil
}

// listing prints a header row followed by items, or "none".
func (a *App) listing(rows [][]any) {
	if len(rows) <= 1 {
		a.table()
		return
	}
	a.table(rows...)
}

func (a *App) listFeed() {
	u, _ := a.ws.User()
	rows := [][]any{{"ID", "AUTHOR", "CATEGORY", "TEXT", "LIKES", "COMMENTS"}}
	for _, p := range a.ws.FeedList() {
		likes := fmt.Sprint(len(p.Likes))
		if p.LikedBy(u.Identity()) {
			likes += " " + color.RedString("♥")
		}
		text := p.Text
		if p.Category == models.CategoryEvent {
			text = strings.TrimSpace(fmt.Sprintf("[%s %s %s] %s", p.EventName, p.EventDate, p.EventTime, p.Text))
		}
		if p.FileName != "" {
			text = strings.TrimSpace(text + " (" + p.FileName + ")")
		}
		rows = append(rows, []any{itemID(p.Ref), p.UserName, p.Category, text, likes, len(p.Comments)})
	}
	a.listing(rows)
}

// Chart draws the daily expense totals as horizontal bars.
func (a *App) Chart(ctx context.Context, args []string) error {
	opts, err := parseFilter(args)
	if err != nil {
		return err
	}
	days := a.ws.ExpenseChart(opts)

	var peak float64
	for _, d := range days {
		peak = max(peak, d.Total)
	}
	rows := make([][]any, 0, len(days))
	for _, d := range days {
		n := 0
		if peak > 0 {
			n = max(1, int(d.Total/peak*chartWidth))
		}
		rows = append(rows, []any{d.Date, color.CyanString(strings.Repeat("█", n)), money(d.Total)})
	}
	a.table(rows...)
	return nil
}

// Dashboard prints today's summary computed from the local caches.
func (a *App) Dashboard(ctx context.Context) error {
	d := a.ws.Dashboard()
	_, _ = color.New(color.Bold, color.Underline).Fprintln(a.out, "Today "+d.Date)

	mood := "-"
	if d.LatestMood != nil {
		mood = fmt.Sprintf("%s (%s)", d.LatestMood.Mood, d.LatestMood.Date)
	}
	a.table(
		[]any{"TASKS DUE TODAY", d.TasksDue},
		[]any{"OPEN TASKS", d.TasksOpen},
		[]any{"EVENTS TODAY", len(d.EventsToday)},
		[]any{"SPENT TODAY", money(d.SpentToday)},
		[]any{"SPENT THIS WEEK", money(d.SpentThisWeek)},
		[]any{"LATEST MOOD", mood},
		[]any{"DIARY ENTRIES", d.DiaryEntries},
		[]any{"NOTES", d.Notes},
	)
	for _, e := range d.EventsToday {
		fmt.Fprintf(a.out, "  %s %s\n", e.Time, e.Name)
	}
	return nil
}
