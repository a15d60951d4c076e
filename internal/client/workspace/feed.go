package workspace

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/studenthub/internal/client/session"
	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/filex"
	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

// MaxPostAttachment is the largest file a feed post may carry.
const MaxPostAttachment = 10 << 20

// PostMediaTypes are the attachment types the feed accepts.
var PostMediaTypes = []string{"image/jpeg", "image/png", "image/gif", "application/pdf", "video/mp4", "video/webm"}

// PostInput is a feed post as entered by the user. Attachment is a file path.
type PostInput struct {
	Text             string
	Category         string
	EventName        string
	EventDate        string
	EventTime        string
	EventDescription string
	EventColor       string
	Attachment       string
}

// Post publishes to the feed. The attachment, if any, is read and encoded
// before anything is submitted.
func (w *Workspace) Post(ctx context.Context, in PostInput) (models.FeedPost, bool, error) {
	t, err := w.ticket()
	if err != nil {
		return models.FeedPost{}, false, err
	}
	u, _ := w.session.Current()

	p := models.FeedPost{
		Ref:       models.Ref{LocalID: models.NextLocalID()},
		UserID:    t.Identity,
		UserName:  u.DisplayName(),
		Text:      strings.TrimSpace(in.Text),
		Category:  in.Category,
		Likes:     []string{},
		Comments:  []models.Comment{},
		Timestamp: w.now(),
	}
	if p.Category == "" {
		p.Category = models.CategoryGeneral
	}
	if p.Category == models.CategoryEvent {
		p.EventName = strings.TrimSpace(in.EventName)
		p.EventDate = in.EventDate
		p.EventTime = in.EventTime
		p.EventDescription = in.EventDescription
		p.EventColor = in.EventColor
		if p.EventColor == "" {
			p.EventColor = models.DefaultPostEventColor
		}
		if err := validate.Var("eventName", p.EventName, "required"); err != nil {
			return p, false, err
		}
		if err := validate.Var("eventDate", p.EventDate, "required"); err != nil {
			return p, false, err
		}
	}

	if p.Text == "" && in.Attachment == "" {
		return p, false, validate.NewFieldError("text", "text or attachment is required")
	}
	if err := validate.Struct(p); err != nil {
		return p, false, err
	}

	if in.Attachment != "" {
		a, err := filex.ReadDataURI(in.Attachment, MaxPostAttachment, PostMediaTypes...)
		if err != nil {
			return p, false, validate.NewFieldError("attachment", err.Error())
		}
		p.MediaData = a.DataURI
		p.MediaType = a.MediaType
		p.FileName = a.FileName
		p.FileSize = a.Size
	}

	return w.Feed.Submit(ctx, t, p)
}

// ToggleLike likes or unlikes a post. The local copy changes first; when the
// service answers, its version of the post replaces the local one.
func (w *Workspace) ToggleLike(ctx context.Context, postID string) (models.FeedPost, error) {
	t, err := w.ticket()
	if err != nil {
		return models.FeedPost{}, err
	}
	id, post, err := resolve(w.Feed.Cache(), postID)
	if err != nil {
		return post, err
	}

	if err := w.Feed.Cache().UpdateFor(ctx, t, id, func(p *models.FeedPost) { p.ToggleLike(t.Identity) }); err != nil {
		return post, err
	}
	if !post.LocalOnly() {
		remote, err := w.api.ToggleLike(ctx, post.ServerID, t.Identity)
		w.applyRemotePost(ctx, t, id, remote, err)
	}
	post, _ = w.Feed.Cache().Get(id)
	return post, nil
}

// Comment adds a comment under the user's name.
func (w *Workspace) Comment(ctx context.Context, postID, text string) (models.FeedPost, error) {
	t, err := w.ticket()
	if err != nil {
		return models.FeedPost{}, err
	}
	u, _ := w.session.Current()
	id, post, err := resolve(w.Feed.Cache(), postID)
	if err != nil {
		return post, err
	}

	c := models.Comment{
		UserID:    t.Identity,
		UserName:  u.DisplayName(),
		Text:      strings.TrimSpace(text),
		CreatedAt: w.now(),
	}
	if err := validate.Struct(c); err != nil {
		return post, err
	}

	if !post.LocalOnly() {
		remote, err := w.api.AddComment(ctx, post.ServerID, c)
		if err == nil {
			w.applyRemotePost(ctx, t, id, remote, nil)
			post, _ = w.Feed.Cache().Get(id)
			return post, nil
		}
		w.log.Warn(ctx, "comment not sent, kept locally", "post", post.ServerID, "err", err)
	}

	c.ID = strconv.FormatInt(models.NextLocalID(), 10)
	if err := w.Feed.Cache().UpdateFor(ctx, t, id, func(p *models.FeedPost) { p.Comments = append(p.Comments, c) }); err != nil {
		return post, err
	}
	post, _ = w.Feed.Cache().Get(id)
	return post, nil
}

// DeleteComment removes one of the user's own comments.
func (w *Workspace) DeleteComment(ctx context.Context, postID, commentID string) (models.FeedPost, error) {
	t, err := w.ticket()
	if err != nil {
		return models.FeedPost{}, err
	}
	id, post, err := resolve(w.Feed.Cache(), postID)
	if err != nil {
		return post, err
	}
	i := post.FindComment(commentID)
	if i < 0 {
		return post, common.ErrNotFound
	}
	if post.Comments[i].UserID != t.Identity {
		return post, common.ErrForbidden
	}

	if !post.LocalOnly() {
		_, err := w.api.DeleteComment(ctx, post.ServerID, commentID, t.Identity)
		switch {
		case errors.Is(err, common.ErrForbidden):
			return post, err
		case err != nil:
			w.log.Warn(ctx, "remote comment delete failed, removing locally", "post", post.ServerID, "err", err)
		}
	}

	err = w.Feed.Cache().UpdateFor(ctx, t, id, func(p *models.FeedPost) {
		if j := p.FindComment(commentID); j >= 0 {
			p.Comments = append(p.Comments[:j:j], p.Comments[j+1:]...)
		}
	})
	if err != nil {
		return post, err
	}
	post, _ = w.Feed.Cache().Get(id)
	return post, nil
}

// DeletePost removes one of the user's own posts.
func (w *Workspace) DeletePost(ctx context.Context, postID string) error {
	_, post, err := resolve(w.Feed.Cache(), postID)
	if err != nil {
		return err
	}
	u, _ := w.session.Current()
	if post.UserID != u.Identity() {
		return common.ErrForbidden
	}
	return remove(ctx, w, w.Feed, postID)
}

func (w *Workspace) FeedList() []models.FeedPost {
	return w.Feed.Cache().Items()
}

// applyRemotePost replaces the cached post with the service's version. A
// failed call keeps the local change.
func (w *Workspace) applyRemotePost(ctx context.Context, t session.Ticket, id models.ItemID, remote models.FeedPost, err error) {
	if err != nil {
		w.log.Warn(ctx, "feed update not sent, kept locally", "err", err)
		return
	}
	if err := w.Feed.Cache().Reconcile(ctx, t, id, remote); err != nil {
		w.log.Debug(ctx, "feed update not applied", "err", err)
	}
}
