package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

func registerFeedAPI(g *echo.Group, feed FeedService) {
	h := &feedHandler{feed: feed}
	fg := g.Group("/" + string(models.Feed))
	fg.GET("", h.list)
	fg.POST("", h.create)
	fg.DELETE("/:id", h.delete)
	fg.POST("/:id/like", h.like)
	fg.POST("/:id/comment", h.comment)
	fg.DELETE("/:id/comment/:cid", h.deleteComment)

	g.PUT("/users/:"+common.UserIDParam+"/name", h.renameAuthor)
}

type feedHandler struct {
	feed FeedService
}

func (h *feedHandler) list(c echo.Context) error {
	posts, err := h.feed.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *feedHandler) create(c echo.Context) error {
	var post models.FeedPost
	if err := bind(c, &post); err != nil {
		return err
	}
	created, err := h.feed.Create(c.Request().Context(), post)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Post created", "post": created})
}

func (h *feedHandler) delete(c echo.Context) error {
	if err := h.feed.Delete(c.Request().Context(), c.Param("id"), c.QueryParam(common.UserIDParam)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted"})
}

func (h *feedHandler) like(c echo.Context) error {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	post, err := h.feed.ToggleLike(c.Request().Context(), c.Param("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post})
}

func (h *feedHandler) comment(c echo.Context) error {
	var comment models.Comment
	if err := bind(c, &comment); err != nil {
		return err
	}
	post, err := h.feed.AddComment(c.Request().Context(), c.Param("id"), comment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"post": post})
}

func (h *feedHandler) deleteComment(c echo.Context) error {
	post, err := h.feed.DeleteComment(c.Request().Context(), c.Param("id"), c.Param("cid"), c.QueryParam(common.UserIDParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post})
}

func (h *feedHandler) renameAuthor(c echo.Context) error {
	var req struct {
		UserName string `json:"userName"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	posts, comments, err := h.feed.RenameAuthor(c.Request().Context(), c.Param(common.UserIDParam), req.UserName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":         "Author name updated",
		"postsUpdated":    posts,
		"commentsUpdated": comments,
	})
}
