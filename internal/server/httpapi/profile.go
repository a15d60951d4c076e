package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

func registerProfileAPI(g *echo.Group, users UserService) {
	h := &profileHandler{users: users}
	g.GET("/profile/:"+common.UserIDParam, h.get)
	g.PUT("/profile", h.update)
	g.GET("/user-stats/:"+common.UserIDParam, h.stats)
}

type profileHandler struct {
	users UserService
}

func (h *profileHandler) get(c echo.Context) error {
	user, err := h.users.Profile(c.Request().Context(), c.Param(common.UserIDParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func (h *profileHandler) update(c echo.Context) error {
	var patch models.ProfilePatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.Request().Context(), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated", "user": user})
}

func (h *profileHandler) stats(c echo.Context) error {
	stats, err := h.users.Stats(c.Request().Context(), c.Param(common.UserIDParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
