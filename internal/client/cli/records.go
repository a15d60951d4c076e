package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/studenthub/internal/client/workspace"
	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

// AddExpense prompts for an expense. An empty date means today.
func (a *App) AddExpense(ctx context.Context) error {
	v, err := a.prompt("Enter title", "Enter amount", "Enter date YYYY-MM-DD (empty for today)")
	if err != nil {
		return err
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(v[1], ",", "."), 64)
	if err != nil {
		return validate.NewFieldError("amount", "amount must be a number")
	}

	e, synced, err := a.ws.AddExpense(ctx, v[0], amount, v[2])
	if err != nil {
		return err
	}
	a.saved(fmt.Sprintf("Expense %q (%s)", e.Title, money(e.Amount)), synced)
	return nil
}

func (a *App) AddTask(ctx context.Context) error {
	v, err := a.prompt("Enter title", "Enter due date YYYY-MM-DD", "Enter time HH:MM (optional)")
	if err != nil {
		return err
	}
	t, synced, err := a.ws.AddTask(ctx, v[0], v[1], v[2])
	if err != nil {
		return err
	}
	a.saved(fmt.Sprintf("Task %q", t.Title), synced)
	return nil
}

func (a *App) AddEvent(ctx context.Context) error {
	v, err := a.prompt("Enter name", "Enter date YYYY-MM-DD", "Enter time HH:MM (optional)", "Enter description (optional)",
		fmt.Sprintf("Enter colour %s (empty for %s)", strings.Join(models.EventColors, " "), models.EventColors[0]))
	if err != nil {
		return err
	}
	ev, synced, err := a.ws.AddEvent(ctx, workspace.EventInput{Name: v[0], Date: v[1], Time: v[2], Description: v[3], Color: v[4]})
	if err != nil {
		return err
	}
	a.saved(fmt.Sprintf("Event %q on %s", ev.Name, ev.Date), synced)
	return nil
}

// LogMood prompts for a mood and shows the suggestion and affirmation that
// come with it.
func (a *App) LogMood(ctx context.Context) error {
	v, err := a.prompt(fmt.Sprintf("How do you feel? (%s)", strings.Join(models.MoodNames, ", ")), "Enter a note (optional)")
	if err != nil {
		return err
	}
	m, synced, err := a.ws.LogMood(ctx, v[0], "", v[1])
	if err != nil {
		return err
	}
	a.saved("Mood "+m.Mood, synced)
	fmt.Fprintln(a.out, m.Suggestion)
	fmt.Fprintln(a.out, m.Affirmation)
	return nil
}

func (a *App) AddDiary(ctx context.Context) error {
	v, err := a.prompt("Enter title (optional)", "Enter date YYYY-MM-DD (empty for today)")
	if err != nil {
		return err
	}
	msg, err := askBlock(a.reader, "Write your entry", a.out)
	if err != nil {
		return err
	}
	e, synced, err := a.ws.AddDiaryEntry(ctx, v[0], v[1], msg)
	if err != nil {
		return err
	}
	a.saved(fmt.Sprintf("Diary entry %q", e.Title), synced)
	return nil
}

// AddPost prompts for a feed post. Event posts ask for the event fields too.
func (a *App) AddPost(ctx context.Context) error {
	v, err := a.prompt("Category general|event (empty for general)")
	if err != nil {
		return err
	}
	in := workspace.PostInput{Category: v[0]}
	if in.Category == models.CategoryEvent {
		ev, err := a.prompt("Enter event name", "Enter event date YYYY-MM-DD", "Enter event time HH:MM (optional)", "Enter event description (optional)")
		if err != nil {
			return err
		}
		in.EventName, in.EventDate, in.EventTime, in.EventDescription = ev[0], ev[1], ev[2], ev[3]
	}

	if in.Text, err = askBlock(a.reader, "Write your post", a.out); err != nil {
		return err
	}
	if in.Attachment, err = askLine(a.reader, "Attachment path (optional)", a.out); err != nil {
		return err
	}

	p, synced, err := a.ws.Post(ctx, in)
	if err != nil {
		return err
	}
	a.saved("Post "+p.ID().Value, synced)
	return nil
}

// AddNote stores a note on this device only.
func (a *App) AddNote(ctx context.Context) error {
	text, err := askBlock(a.reader, "Enter note text", a.out)
	if err != nil {
		return err
	}
	v, err := a.prompt("Enter date YYYY-MM-DD (empty for today)", "Attachment path (optional)")
	if err != nil {
		return err
	}
	n, err := a.ws.AddNote(ctx, text, v[0], v[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Note %s saved on this device\n", n.ID().Value)
	return nil
}

// Toggle flips the completion flag of a task.
func (a *App) Toggle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: toggle <taskId>")
		return nil
	}
	t, err := a.ws.ToggleTask(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", check(t.Completed), t.Title)
	return nil
}

func (a *App) Like(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: like <postId>")
		return nil
	}
	p, err := a.ws.ToggleLike(ctx, args[0])
	if err != nil {
		return err
	}
	u, _ := a.ws.User()
	if p.LikedBy(u.Identity()) {
		fmt.Fprintf(a.out, "Liked (%d)\n", len(p.Likes))
	} else {
		fmt.Fprintf(a.out, "Unliked (%d)\n", len(p.Likes))
	}
	return nil
}

func (a *App) Comment(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: comment <postId>")
		return nil
	}
	text, err := askLine(a.reader, "Enter comment", a.out)
	if err != nil {
		return err
	}
	p, err := a.ws.Comment(ctx, args[0], text)
	if err != nil {
		return err
	}
	a.printComments(p)
	return nil
}

func (a *App) Uncomment(ctx context.Context, args []string) error {
	if len(args) != 2 {
		printlnFn("Usage: uncomment <postId> <commentId>")
		return nil
	}
	p, err := a.ws.DeleteComment(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	a.printComments(p)
	return nil
}

// FromFeed copies the event announced in a post into the calendar.
func (a *App) FromFeed(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: fromfeed <postId>")
		return nil
	}
	ev, synced, err := a.ws.AddEventFromPost(ctx, args[0])
	if err != nil {
		return err
	}
	a.saved(fmt.Sprintf("Event %q on %s", ev.Name, ev.Date), synced)
	return nil
}

// Delete removes an item from one of the collections.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		printlnFn("Usage: delete <expenses|tasks|events|moods|diary|feed|notes> <id>")
		return nil
	}
	id := args[1]

	var err error
	switch models.Collection(args[0]) {
	case models.Expenses:
		err = a.ws.DeleteExpense(ctx, id)
	case models.Tasks:
		err = a.ws.DeleteTask(ctx, id)
	case models.Events:
		err = a.ws.DeleteEvent(ctx, id)
	case models.Moods:
		err = a.ws.DeleteMood(ctx, id)
	case models.Diary:
		err = a.ws.DeleteDiaryEntry(ctx, id)
	case models.Feed:
		err = a.ws.DeletePost(ctx, id)
	case models.Notes:
		err = a.ws.DeleteNote(ctx, id)
	default:
		printlnFn("Unknown collection:", args[0])
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}
