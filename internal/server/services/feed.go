package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/dbx"
	"github.com/dmitrijs2005/studenthub/internal/logging"
	dto "github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/server/models"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/records"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

// FeedLimit caps the number of posts returned by List.
const FeedLimit = 100

var (
	textDate = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	textTime = regexp.MustCompile(`\b(\d{2}:\d{2})\b`)
)

// FeedService manages the campus feed shared by all users.
type FeedService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewFeedService(m repomanager.RepositoryManager, log logging.Logger) *FeedService {
	return &FeedService{repomanager: m, log: log.With("service", "feed"), now: time.Now}
}

func loadPost(rec *models.Record) (dto.FeedPost, error) {
	var p dto.FeedPost
	if err := json.Unmarshal(rec.Body, &p); err != nil {
		return dto.FeedPost{}, fmt.Errorf("corrupt post %s: %w", rec.ID, err)
	}
	p.Ref = dto.Ref{ServerID: rec.ID}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []dto.Comment{}
	}
	return p, nil
}

func storePost(p dto.FeedPost) ([]byte, error) {
	p.Ref = dto.Ref{}
	return json.Marshal(p)
}

// List returns the most recent posts of every user, newest first.
func (s *FeedService) List(ctx context.Context) ([]dto.FeedPost, error) {
	recs, err := s.repomanager.Records(s.repomanager.Conn()).List(ctx, models.ListQuery{
		Collection:  dto.Feed,
		NewestFirst: true,
		Limit:       FeedLimit,
	})
	if err != nil {
		return nil, err
	}

	posts := make([]dto.FeedPost, 0, len(recs))
	for _, rec := range recs {
		p, err := loadPost(rec)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// normalizePost fills the event fields of an event post: the name falls back
// to the text, date and time are looked up in the text when missing, and the
// colour gets the feed default. Other posts carry no event fields.
func normalizePost(p *dto.FeedPost) {
	if p.Category == "" {
		p.Category = dto.CategoryGeneral
	}
	if p.Category != dto.CategoryEvent {
		p.EventName, p.EventDate, p.EventTime = "", "", ""
		p.EventDescription, p.EventColor = "", ""
		return
	}

	if p.EventName == "" {
		p.EventName = p.Text
	}
	if p.EventName == "" {
		p.EventName = "Event"
	}
	if p.EventDate == "" {
		if m := textDate.FindStringSubmatch(p.Text); m != nil {
			p.EventDate = m[1]
		}
	}
	if p.EventTime == "" {
		if m := textTime.FindStringSubmatch(p.Text); m != nil {
			p.EventTime = m[1]
		}
	}
	if p.EventDescription == "" {
		p.EventDescription = p.Text
	}
	if p.EventColor == "" {
		p.EventColor = dto.DefaultPostEventColor
	}
}

// Create publishes post. Likes and comments always start empty.
func (s *FeedService) Create(ctx context.Context, post dto.FeedPost) (dto.FeedPost, error) {
	post.Text = strings.TrimSpace(post.Text)
	normalizePost(&post)
	if err := validate.Struct(post); err != nil {
		return dto.FeedPost{}, err
	}
	if post.Text == "" && post.MediaData == "" {
		return dto.FeedPost{}, validate.NewFieldError("text", "text or an attachment is required")
	}

	db := s.repomanager.Conn()
	if err := checkOwner(ctx, s.repomanager, db, post.UserID); err != nil {
		return dto.FeedPost{}, err
	}

	post.Likes = []string{}
	post.Comments = []dto.Comment{}
	post.Timestamp = s.now().UTC()

	body, err := storePost(post)
	if err != nil {
		return dto.FeedPost{}, err
	}
	rec := &models.Record{Collection: dto.Feed, UserID: post.UserID, Body: body}
	if err := s.repomanager.Records(db).Create(ctx, rec); err != nil {
		return dto.FeedPost{}, err
	}

	s.log.Debug(ctx, "post created", "id", rec.ID, "category", post.Category)
	post.Ref = dto.Ref{ServerID: rec.ID}
	return post, nil
}

// mutate loads post id, applies fn and stores the result in one transaction.
func (s *FeedService) mutate(ctx context.Context, id string, fn func(p *dto.FeedPost) error) (dto.FeedPost, error) {
	if err := checkID(id); err != nil {
		return dto.FeedPost{}, notFound(err, "post")
	}

	var out dto.FeedPost
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)
		rec, err := repo.Get(ctx, dto.Feed, id)
		if err != nil {
			return notFound(err, "post")
		}
		p, err := loadPost(rec)
		if err != nil {
			return err
		}
		if err := fn(&p); err != nil {
			return err
		}
		if rec.Body, err = storePost(p); err != nil {
			return err
		}
		if err := repo.Update(ctx, rec); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// ToggleLike likes the post on behalf of userID, or withdraws the like.
func (s *FeedService) ToggleLike(ctx context.Context, id, userID string) (dto.FeedPost, error) {
	if userID == "" {
		return dto.FeedPost{}, validate.NewFieldError(common.UserIDParam, "userId is required")
	}
	return s.mutate(ctx, id, func(p *dto.FeedPost) error {
		p.ToggleLike(userID)
		return nil
	})
}

// AddComment appends c to the post with a fresh id and timestamp.
func (s *FeedService) AddComment(ctx context.Context, id string, c dto.Comment) (dto.FeedPost, error) {
	c.Text = strings.TrimSpace(c.Text)
	if err := validate.Struct(c); err != nil {
		return dto.FeedPost{}, err
	}
	if c.UserID == "" {
		return dto.FeedPost{}, validate.NewFieldError(common.UserIDParam, "userId is required")
	}

	c.ID = uuid.NewString()
	c.CreatedAt = s.now().UTC()
	return s.mutate(ctx, id, func(p *dto.FeedPost) error {
		p.Comments = append(p.Comments, c)
		return nil
	})
}

// DeleteComment removes comment commentID. Only its author may do that.
func (s *FeedService) DeleteComment(ctx context.Context, id, commentID, userID string) (dto.FeedPost, error) {
	return s.mutate(ctx, id, func(p *dto.FeedPost) error {
		i := p.FindComment(commentID)
		if i < 0 {
			return fmt.Errorf("%w: comment not found", common.ErrNotFound)
		}
		if p.Comments[i].UserID != userID {
			return fmt.Errorf("%w: comment belongs to another user", common.ErrForbidden)
		}
		p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
		return nil
	})
}

// Delete removes post id. Only its author may do that.
func (s *FeedService) Delete(ctx context.Context, id, userID string) error {
	if err := checkID(id); err != nil {
		return notFound(err, "post")
	}

	return s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)
		rec, err := repo.Get(ctx, dto.Feed, id)
		if err != nil {
			return notFound(err, "post")
		}
		if rec.UserID != userID {
			return fmt.Errorf("%w: post belongs to another user", common.ErrForbidden)
		}
		return notFound(repo.Delete(ctx, dto.Feed, id), "post")
	})
}

// RenameAuthor writes name into every post and comment by userID and returns
// how many posts and comments changed.
func (s *FeedService) RenameAuthor(ctx context.Context, userID, name string) (posts, comments int, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, 0, validate.NewFieldError("userName", "userName is required")
	}
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		posts, comments, err = renameAuthor(ctx, s.repomanager.Records(tx), userID, name)
		return err
	})
	return posts, comments, err
}

func renameAuthor(ctx context.Context, repo records.Repository, userID, name string) (posts, comments int, err error) {
	recs, err := repo.List(ctx, models.ListQuery{Collection: dto.Feed})
	if err != nil {
		return 0, 0, err
	}

	for _, rec := range recs {
		p, err := loadPost(rec)
		if err != nil {
			return 0, 0, err
		}

		changed := false
		if p.UserID == userID && p.UserName != name {
			p.UserName = name
			posts++
			changed = true
		}
		for i := range p.Comments {
			if p.Comments[i].UserID == userID && p.Comments[i].UserName != name {
				p.Comments[i].UserName = name
				comments++
				changed = true
			}
		}
		if !changed {
			continue
		}

		if rec.Body, err = storePost(p); err != nil {
			return 0, 0, err
		}
		if err := repo.Update(ctx, rec); err != nil {
			return 0, 0, err
		}
	}
	return posts, comments, nil
}
