package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/logging"
	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/netx"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

const apiPrefix = "/api"

type HTTPClient struct {
	ep  Endpoints
	hc  *http.Client
	log logging.Logger
}

func NewHTTPClient(ep Endpoints, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		ep:  ep,
		hc:  &http.Client{Timeout: timeout},
		log: log.With("component", "httpclient"),
	}
}

// Ping checks that the auth service answers its health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, c.ep.auth()+common.HealthPath, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return common.ErrUnavailable
	}
	return nil
}

type userEnvelope struct {
	Message string      `json:"message,omitempty"`
	User    models.User `json:"user"`
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	var resp userEnvelope
	err := c.do(ctx, http.MethodPost, c.ep.auth()+apiPrefix+"/register", req, &resp)
	return resp.User, err
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (models.User, error) {
	var resp userEnvelope
	err := c.do(ctx, http.MethodPost, c.ep.auth()+apiPrefix+"/login", req, &resp)
	return resp.User, err
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, c.ep.auth()+apiPrefix+"/forgot-password", body, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	return c.do(ctx, http.MethodPost, c.ep.auth()+apiPrefix+"/reset-password", req, nil)
}

func (c *HTTPClient) Profile(ctx context.Context, userID string) (models.User, error) {
	var resp userEnvelope
	err := c.do(ctx, http.MethodGet, c.ep.profile()+apiPrefix+"/profile/"+url.PathEscape(userID), nil, &resp)
	return resp.User, err
}

// UpdateProfile sends a partial profile and returns the full updated record.
func (c *HTTPClient) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.User, error) {
	var resp userEnvelope
	err := c.do(ctx, http.MethodPut, c.ep.profile()+apiPrefix+"/profile", patch, &resp)
	return resp.User, err
}

func (c *HTTPClient) Stats(ctx context.Context, userID string) (models.Stats, error) {
	var resp models.Stats
	err := c.do(ctx, http.MethodGet, c.ep.profile()+apiPrefix+"/user-stats/"+url.PathEscape(userID), nil, &resp)
	return resp, err
}

func (c *HTTPClient) collectionURL(coll models.Collection, id string) string {
	u := c.ep.collection(coll) + apiPrefix + "/" + string(coll)
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func withUser(u, userID string) string {
	if userID == "" {
		return u
	}
	return u + "?" + url.Values{common.UserIDParam: {userID}}.Encode()
}

// List decodes the records of userID in coll into out, which must point to a
// slice.
func (c *HTTPClient) List(ctx context.Context, coll models.Collection, userID string, out any) error {
	return c.do(ctx, http.MethodGet, withUser(c.collectionURL(coll, ""), userID), nil, out)
}

// Create posts record and decodes the created record, found under the
// collection's singular name, into out.
func (c *HTTPClient) Create(ctx context.Context, coll models.Collection, record, out any) error {
	var env map[string]json.RawMessage
	if err := c.do(ctx, http.MethodPost, c.collectionURL(coll, ""), record, &env); err != nil {
		return err
	}
	return unwrap(env, coll.Singular(), out)
}

// Update replaces the record with server id id and decodes the result into out.
func (c *HTTPClient) Update(ctx context.Context, coll models.Collection, id string, record, out any) error {
	var env map[string]json.RawMessage
	if err := c.do(ctx, http.MethodPut, c.collectionURL(coll, id), record, &env); err != nil {
		return err
	}
	return unwrap(env, coll.Singular(), out)
}

// Delete removes the record with server id id. The service checks that it
// belongs to userID.
func (c *HTTPClient) Delete(ctx context.Context, coll models.Collection, id, userID string) error {
	return c.do(ctx, http.MethodDelete, withUser(c.collectionURL(coll, id), userID), nil, nil)
}

type postEnvelope struct {
	Post models.FeedPost `json:"post"`
}

// ToggleLike likes or unlikes a post on behalf of userID.
func (c *HTTPClient) ToggleLike(ctx context.Context, postID, userID string) (models.FeedPost, error) {
	var resp postEnvelope
	body := map[string]string{common.UserIDParam: userID}
	err := c.do(ctx, http.MethodPost, c.collectionURL(models.Feed, postID)+"/like", body, &resp)
	return resp.Post, err
}

func (c *HTTPClient) AddComment(ctx context.Context, postID string, comment models.Comment) (models.FeedPost, error) {
	var resp postEnvelope
	err := c.do(ctx, http.MethodPost, c.collectionURL(models.Feed, postID)+"/comment", comment, &resp)
	return resp.Post, err
}

func (c *HTTPClient) DeleteComment(ctx context.Context, postID, commentID, userID string) (models.FeedPost, error) {
	var resp postEnvelope
	u := withUser(c.collectionURL(models.Feed, postID)+"/comment/"+url.PathEscape(commentID), userID)
	err := c.do(ctx, http.MethodDelete, u, nil, &resp)
	return resp.Post, err
}

func (c *HTTPClient) do(ctx context.Context, method, u string, body, out any) error {
	err := netx.DoJSON(ctx, c.hc, method, u, body, out)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", method, "url", u, "err", err)
	}
	return mapError(err)
}

func unwrap(env map[string]json.RawMessage, key string, out any) error {
	raw, ok := env[key]
	if !ok {
		return fmt.Errorf("%w: %w: no %q in response", common.ErrUnavailable, netx.ErrMalformedBody, key)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w: %v", common.ErrUnavailable, netx.ErrMalformedBody, err)
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var se *netx.StatusError
	if !errors.As(err, &se) {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}

	msg := netx.ErrorMessage(se.Body)
	switch se.Code {
	case http.StatusBadRequest:
		return validationError(se.Body, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrForbidden, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrConflict, msg)
	default:
		return fmt.Errorf("%w: %w", common.ErrUnavailable, se)
	}
}

// validationError rebuilds the field map of a 400 response. Services that
// only send a message get it under the "request" key.
func validationError(body []byte, msg string) error {
	var env struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(body, &env); err == nil && len(env.Fields) > 0 {
		return &validate.ValidationError{Fields: env.Fields}
	}
	return validate.NewFieldError("request", msg)
}
