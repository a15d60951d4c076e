package workspace

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/studenthub/internal/filex"
	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

// MaxAvatarSize is the largest avatar image accepted.
const MaxAvatarSize = 5 << 20

var AvatarMediaTypes = []string{"image/jpeg", "image/png", "image/gif"}

// ProfileInput holds the profile fields to change; nil fields are kept.
type ProfileInput struct {
	Name       *string
	Email      *string
	Phone      *string
	Department *string
}

// UpdateProfile sends the changed fields to the profile service and adopts
// the returned profile. The session is only updated on success.
func (w *Workspace) UpdateProfile(ctx context.Context, in ProfileInput) (models.User, error) {
	t, err := w.ticket()
	if err != nil {
		return models.User{}, err
	}

	patch := models.ProfilePatch{
		UserID:     t.Identity,
		Name:       trimmed(in.Name),
		Email:      trimmed(in.Email),
		Phone:      trimmed(in.Phone),
		Department: trimmed(in.Department),
	}
	if err := validate.Struct(patch); err != nil {
		return models.User{}, err
	}

	u, err := w.api.UpdateProfile(ctx, patch)
	if err != nil {
		return models.User{}, err
	}
	if err := w.session.UpdateProfile(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// UploadAvatar replaces the avatar with the image at path. The image is
// stored locally first; synced reports whether the service accepted it.
func (w *Workspace) UploadAvatar(ctx context.Context, path string) (synced bool, err error) {
	t, err := w.ticket()
	if err != nil {
		return false, err
	}

	a, err := filex.ReadDataURI(path, MaxAvatarSize, AvatarMediaTypes...)
	if err != nil {
		return false, validate.NewFieldError("avatar", err.Error())
	}
	if err := w.Avatar.Set(ctx, a.DataURI); err != nil {
		return false, err
	}

	u, err := w.api.UpdateProfile(ctx, models.ProfilePatch{UserID: t.Identity, Avatar: &a.DataURI})
	if err != nil {
		w.log.Warn(ctx, "avatar not sent, kept locally", "err", err)
		return false, nil
	}
	if err := w.session.UpdateProfile(ctx, u); err != nil {
		w.log.Warn(ctx, "profile not persisted", "err", err)
	}
	return true, nil
}

// AvatarURI is the locally stored avatar, falling back to the profile's.
func (w *Workspace) AvatarURI() string {
	if v := w.Avatar.Get(); v != "" {
		return v
	}
	u, _ := w.session.Current()
	return u.Avatar
}

// Stats asks the profile service for the user's totals and falls back to
// counting the local caches when it cannot be reached. remote reports which
// source answered.
func (w *Workspace) Stats(ctx context.Context) (st models.Stats, remote bool, err error) {
	t, err := w.ticket()
	if err != nil {
		return st, false, err
	}

	st, err = w.api.Stats(ctx, t.Identity)
	switch {
	case err == nil:
		return st, true, nil
	case offline(err):
		w.log.Warn(ctx, "stats unavailable, counting locally", "err", err)
		return w.localStats(t.Identity), false, nil
	default:
		return st, false, err
	}
}

func (w *Workspace) localStats(identity string) models.Stats {
	expenses := w.Expenses.Cache().Items()
	st := models.Stats{
		TotalExpenses:      len(expenses),
		TotalExpenseAmount: ExpenseTotal(expenses),
		TotalEvents:        w.Events.Cache().Len(),
		TotalTasks:         w.Tasks.Cache().Len(),
		TotalDiaryEntries:  w.Diary.Cache().Len(),
	}
	for _, p := range w.Feed.Cache().Items() {
		if p.UserID == identity {
			st.TotalFeedPosts++
		}
	}
	return st
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
