package workspace

import (
	"github.com/dmitrijs2005/studenthub/internal/client/datefilter"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

// Dashboard summarises today from the local caches.
type Dashboard struct {
	Date          string
	TasksDue      int
	TasksOpen     int
	EventsToday   []models.Event
	SpentToday    float64
	SpentThisWeek float64
	LatestMood    *models.MoodLog
	DiaryEntries  int
	Notes         int
}

func (w *Workspace) Dashboard() Dashboard {
	now := w.now()
	today := w.today()
	todayOnly := datefilter.Options{Kind: datefilter.Range, From: today, To: today, Now: now}

	d := Dashboard{
		Date:          today,
		EventsToday:   w.EventList(todayOnly),
		SpentToday:    ExpenseTotal(w.ExpenseList(todayOnly)),
		SpentThisWeek: ExpenseTotal(w.ExpenseList(datefilter.Options{Kind: datefilter.Week, Now: now})),
		DiaryEntries:  w.Diary.Cache().Len(),
		Notes:         w.Notes.Len(),
	}
	for _, t := range w.TaskList(todayOnly) {
		if !t.Completed {
			d.TasksDue++
		}
	}
	for _, t := range w.Tasks.Cache().Items() {
		if !t.Completed {
			d.TasksOpen++
		}
	}
	if moods := w.MoodList(datefilter.Options{Kind: datefilter.All}); len(moods) > 0 {
		d.LatestMood = &moods[0]
	}
	return d
}
