package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studenthub/internal/client/workspace"
	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

// Input hooks, replaced in tests.
var (
	askLine   = ReadLine
	askSecret = ReadSecret
	askBlock  = ReadBlock
)

// prompt reads one line for each label, stopping at the first error.
func (a *App) prompt(labels ...string) ([]string, error) {
	out := make([]string, len(labels))
	for i, l := range labels {
		v, err := askLine(a.reader, l, a.out)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Register prompts for the account fields and a password, creates the
// account and signs it in. The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	v, err := a.prompt("Enter student id", "Enter name (optional)", "Enter email (optional)", "Enter department (optional)")
	if err != nil {
		return err
	}
	password, err := askSecret(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.ws.Register(ctx, models.RegisterRequest{
		StudentID:  v[0],
		Name:       v[1],
		Email:      v[2],
		Department: v[3],
		Password:   string(password),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", u.DisplayName())
	return nil
}

// Login prompts for credentials and switches the session to the returned
// profile. Logging in needs the auth service; an unreachable service is
// reported and the current session is left as it is.
func (a *App) Login(ctx context.Context) error {
	studentID, err := askLine(a.reader, "Enter student id", a.out)
	if err != nil {
		return err
	}
	password, err := askSecret(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.ws.Login(ctx, studentID, string(password))
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}
	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Logged in as %s\n", u.DisplayName())
	return nil
}

// Logout ends the session. Cached data of the user stays on this device.
func (a *App) Logout(ctx context.Context) error {
	if err := a.ws.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := askLine(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.ws.ForgotPassword(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "If the address is registered, a reset link is on its way")
	return nil
}

// ResetPassword uses the pending reset link when there is one and asks for
// the token and email otherwise.
func (a *App) ResetPassword(ctx context.Context) error {
	var email, token string
	if _, ok := a.ws.Session().PendingReset(); !ok {
		v, err := a.prompt("Enter email", "Enter reset token")
		if err != nil {
			return err
		}
		email, token = v[0], v[1]
	}

	password, err := askSecret(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.ws.ResetPassword(ctx, email, token, string(password)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated, you can login now")
	return nil
}

// DeepLink handles a link opened from a reset email.
func (a *App) DeepLink(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: deeplink <url>")
		return nil
	}
	ok, err := a.ws.HandleDeepLink(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Not a password reset link")
		return nil
	}
	fmt.Fprintln(a.out, "Reset link accepted, type 'reset' to choose a new password")
	return nil
}

// Profile shows the profile and offers to change it. Empty answers keep the
// current value.
func (a *App) Profile(ctx context.Context) error {
	u, _ := a.ws.User()
	a.table(
		[]any{"STUDENT ID", u.StudentID},
		[]any{"NAME", u.Name},
		[]any{"EMAIL", u.Email},
		[]any{"PHONE", u.Phone},
		[]any{"DEPARTMENT", u.Department},
		[]any{"BATCH", u.Batch},
	)

	v, err := a.prompt("New name (empty to keep)", "New email (empty to keep)", "New phone (empty to keep)", "New department (empty to keep)")
	if err != nil {
		return err
	}
	in := workspace.ProfileInput{Name: changed(v[0]), Email: changed(v[1]), Phone: changed(v[2]), Department: changed(v[3])}
	if in == (workspace.ProfileInput{}) {
		return nil
	}

	u, err = a.ws.UpdateProfile(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile of %s updated\n", u.DisplayName())
	return nil
}

func changed(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: avatar <path>")
		return nil
	}
	synced, err := a.ws.UploadAvatar(ctx, args[0])
	if err != nil {
		return err
	}
	a.saved("Avatar", synced)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	st, remote, err := a.ws.Stats(ctx)
	if err != nil {
		return err
	}
	if !remote {
		fmt.Fprintln(a.out, "(counted from local data)")
	}
	a.table(
		[]any{"EXPENSES", st.TotalExpenses},
		[]any{"SPENT", money(st.TotalExpenseAmount)},
		[]any{"TASKS", st.TotalTasks},
		[]any{"EVENTS", st.TotalEvents},
		[]any{"DIARY ENTRIES", st.TotalDiaryEntries},
		[]any{"POSTS", st.TotalFeedPosts},
	)
	return nil
}

// Status prints who is signed in, the connectivity mode and the cache sizes.
func (a *App) Status(ctx context.Context) error {
	u, ok := a.ws.User()
	if !ok {
		fmt.Fprintf(a.out, "Not logged in, %s\n", a.Mode())
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s), %s\n", u.DisplayName(), u.StudentID, a.Mode())
	a.table(
		[]any{"COLLECTION", "CACHED"},
		[]any{models.Expenses, a.ws.Expenses.Cache().Len()},
		[]any{models.Tasks, a.ws.Tasks.Cache().Len()},
		[]any{models.Events, a.ws.Events.Cache().Len()},
		[]any{models.Moods, a.ws.Moods.Cache().Len()},
		[]any{models.Diary, a.ws.Diary.Cache().Len()},
		[]any{models.Feed, a.ws.Feed.Cache().Len()},
		[]any{models.Notes, a.ws.Notes.Len()},
	)
	return nil
}

// Sync refreshes every collection now. Collections whose fetch failed keep
// their cached items.
func (a *App) Sync(ctx context.Context) error {
	if err := a.ws.Sync(ctx); err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			a.setMode(ModeOffline)
			fmt.Fprintln(a.out, "Some collections could not be refreshed, showing cached data")
			return nil
		}
		return err
	}
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Synchronized")
	return nil
}
