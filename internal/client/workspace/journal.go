package workspace

import (
	"context"
	"sort"
	"strings"

	"github.com/dmitrijs2005/studenthub/internal/client/datefilter"
	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/timex"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

// LogMood records a mood with the matching suggestion and a random
// affirmation. An empty date means today.
func (w *Workspace) LogMood(ctx context.Context, mood, date, note string) (models.MoodLog, bool, error) {
	t, err := w.ticket()
	if err != nil {
		return models.MoodLog{}, false, err
	}
	if date == "" {
		date = w.today()
	}

	m := models.MoodLog{
		Ref:         models.Ref{LocalID: models.NextLocalID()},
		UserID:      t.Identity,
		Mood:        canonicalMood(mood),
		Date:        date,
		Note:        strings.TrimSpace(note),
		Affirmation: models.Affirmations[w.pick(len(models.Affirmations))],
	}
	m.Suggestion = models.MoodSuggestions[m.Mood]
	if err := validate.Struct(m); err != nil {
		return m, false, err
	}
	return w.Moods.Submit(ctx, t, m)
}

// canonicalMood accepts mood names in any case.
func canonicalMood(s string) string {
	s = strings.TrimSpace(s)
	for _, m := range models.MoodNames {
		if strings.EqualFold(m, s) {
			return m
		}
	}
	return s
}

func (w *Workspace) DeleteMood(ctx context.Context, id string) error {
	return remove(ctx, w, w.Moods, id)
}

// MoodList returns the mood logs matching opts, newest first.
func (w *Workspace) MoodList(opts datefilter.Options) []models.MoodLog {
	items := datefilter.Filter(w.Moods.Cache().Items(), func(m models.MoodLog) string { return m.Date }, w.withNow(opts))
	sortByDateDesc(items, func(m models.MoodLog) string { return m.Date })
	return items
}

// AddDiaryEntry saves a diary entry. An empty title becomes
// models.DefaultDiaryTitle and an empty date means today.
func (w *Workspace) AddDiaryEntry(ctx context.Context, title, date, message string) (models.DiaryEntry, bool, error) {
	t, err := w.ticket()
	if err != nil {
		return models.DiaryEntry{}, false, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = models.DefaultDiaryTitle
	}
	if date == "" {
		date = w.today()
	}

	e := models.DiaryEntry{
		Ref:     models.Ref{LocalID: models.NextLocalID()},
		UserID:  t.Identity,
		Title:   title,
		Date:    date,
		Message: strings.TrimSpace(message),
	}
	if err := validate.Struct(e); err != nil {
		return e, false, err
	}
	return w.Diary.Submit(ctx, t, e)
}

func (w *Workspace) DeleteDiaryEntry(ctx context.Context, id string) error {
	return remove(ctx, w, w.Diary, id)
}

// DiaryList returns the entries matching opts, newest first.
func (w *Workspace) DiaryList(opts datefilter.Options) []models.DiaryEntry {
	items := datefilter.Filter(w.Diary.Cache().Items(), func(e models.DiaryEntry) string { return e.Date }, w.withNow(opts))
	sortByDateDesc(items, func(e models.DiaryEntry) string { return e.Date })
	return items
}

// sortByDateDesc orders items newest first; undated items go last.
func sortByDateDesc[T any](items []T, dateOf func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		di, okI := timex.ParseDate(dateOf(items[i]))
		dj, okJ := timex.ParseDate(dateOf(items[j]))
		switch {
		case okI && okJ:
			return di.After(dj)
		default:
			return okI && !okJ
		}
	})
}
