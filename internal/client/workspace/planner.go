package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/studenthub/internal/client/datefilter"
	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

func (w *Workspace) AddTask(ctx context.Context, title, dueDate, timeOfDay string) (models.Task, bool, error) {
	t, err := w.ticket()
	if err != nil {
		return models.Task{}, false, err
	}

	task := models.Task{
		Ref:     models.Ref{LocalID: models.NextLocalID()},
		UserID:  t.Identity,
		Title:   strings.TrimSpace(title),
		DueDate: dueDate,
		Time:    timeOfDay,
	}
	if err := validate.Struct(task); err != nil {
		return task, false, err
	}
	return w.Tasks.Submit(ctx, t, task)
}

// ToggleTask flips the completion flag of a task.
func (w *Workspace) ToggleTask(ctx context.Context, id string) (models.Task, error) {
	t, err := w.ticket()
	if err != nil {
		return models.Task{}, err
	}
	itemID, _, err := resolve(w.Tasks.Cache(), id)
	if err != nil {
		return models.Task{}, err
	}
	if err := w.Tasks.Update(ctx, t, itemID, func(task *models.Task) { task.Completed = !task.Completed }); err != nil {
		return models.Task{}, err
	}
	task, _ := w.Tasks.Cache().Get(itemID)
	return task, nil
}

func (w *Workspace) DeleteTask(ctx context.Context, id string) error {
	return remove(ctx, w, w.Tasks, id)
}

func (w *Workspace) TaskList(opts datefilter.Options) []models.Task {
	return datefilter.Filter(w.Tasks.Cache().Items(), func(t models.Task) string { return t.DueDate }, w.withNow(opts))
}

// EventInput is a calendar event as entered by the user.
type EventInput struct {
	Name        string
	Date        string
	Time        string
	Description string
	Color       string
}

// AddEvent records a calendar event. An empty colour takes the first colour
// of the palette.
func (w *Workspace) AddEvent(ctx context.Context, in EventInput) (models.Event, bool, error) {
	t, err := w.ticket()
	if err != nil {
		return models.Event{}, false, err
	}
	if in.Color == "" {
		in.Color = models.EventColors[0]
	}

	ev := models.Event{
		Ref:         models.Ref{LocalID: models.NextLocalID()},
		UserID:      t.Identity,
		Name:        strings.TrimSpace(in.Name),
		Date:        in.Date,
		Time:        in.Time,
		Description: in.Description,
		Color:       in.Color,
	}
	if err := validate.Struct(ev); err != nil {
		return ev, false, err
	}
	return w.Events.Submit(ctx, t, ev)
}

// AddEventFromPost copies an event announced in the feed into the user's
// calendar. The post must carry an event name, date and time.
func (w *Workspace) AddEventFromPost(ctx context.Context, postID string) (models.Event, bool, error) {
	_, post, err := resolve(w.Feed.Cache(), postID)
	if err != nil {
		return models.Event{}, false, err
	}

	missing := &validate.ValidationError{Fields: map[string]string{}}
	for field, v := range map[string]string{"eventName": post.EventName, "eventDate": post.EventDate, "eventTime": post.EventTime} {
		if v == "" {
			missing.Fields[field] = field + " is required"
		}
	}
	if len(missing.Fields) > 0 {
		return models.Event{}, false, missing
	}

	desc := post.EventDescription
	if desc == "" {
		desc = "Posted by " + post.UserName
	}
	color := post.EventColor
	if color == "" {
		color = models.DefaultPostEventColor
	}

	return w.AddEvent(ctx, EventInput{
		Name:        fmt.Sprintf("%s (from %s)", post.EventName, post.UserName),
		Date:        post.EventDate,
		Time:        post.EventTime,
		Description: desc,
		Color:       color,
	})
}

func (w *Workspace) DeleteEvent(ctx context.Context, id string) error {
	return remove(ctx, w, w.Events, id)
}

func (w *Workspace) EventList(opts datefilter.Options) []models.Event {
	return datefilter.Filter(w.Events.Cache().Items(), func(e models.Event) string { return e.Date }, w.withNow(opts))
}

