package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
	Profile(ctx context.Context, userID string) (models.User, error)
	UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.User, error)
	Stats(ctx context.Context, userID string) (models.Stats, error)
}

type RecordService interface {
	List(ctx context.Context, coll models.Collection, userID string) ([]json.RawMessage, error)
	Create(ctx context.Context, coll models.Collection, body []byte) (json.RawMessage, error)
	Update(ctx context.Context, coll models.Collection, id string, body []byte) (json.RawMessage, error)
	Delete(ctx context.Context, coll models.Collection, id, userID string) error
}

type FeedService interface {
	List(ctx context.Context) ([]models.FeedPost, error)
	Create(ctx context.Context, post models.FeedPost) (models.FeedPost, error)
	ToggleLike(ctx context.Context, id, userID string) (models.FeedPost, error)
	AddComment(ctx context.Context, id string, c models.Comment) (models.FeedPost, error)
	DeleteComment(ctx context.Context, id, commentID, userID string) (models.FeedPost, error)
	Delete(ctx context.Context, id, userID string) error
	RenameAuthor(ctx context.Context, userID, name string) (posts, comments int, err error)
}

func errMalformedBody() error {
	return validate.NewFieldError("request", "request body must be a valid JSON object")
}

// bind decodes the JSON request body into v. Path and query parameters are
// read explicitly by the handlers.
func bind(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return err
		}
		return errMalformedBody()
	}
	return nil
}

// rawBody reads the request body as is. Empty or non-object bodies are
// rejected.
func rawBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil || probe == nil {
		return nil, errMalformedBody()
	}
	return body, nil
}
