package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/models"
)

// recordCollections are served by the generic record handlers. The feed has
// its own routes.
var recordCollections = []models.Collection{models.Expenses, models.Tasks, models.Events, models.Moods, models.Diary}

func registerRecordAPI(g *echo.Group, records RecordService) {
	for _, coll := range recordCollections {
		h := &recordHandler{coll: coll, records: records}
		cg := g.Group("/" + string(coll))
		cg.GET("", h.list)
		cg.POST("", h.create)
		cg.PUT("/:id", h.update)
		cg.DELETE("/:id", h.delete)
	}
}

type recordHandler struct {
	coll    models.Collection
	records RecordService
}

func (h *recordHandler) list(c echo.Context) error {
	items, err := h.records.List(c.Request().Context(), h.coll, c.QueryParam(common.UserIDParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *recordHandler) create(c echo.Context) error {
	body, err := rawBody(c)
	if err != nil {
		return err
	}
	rec, err := h.records.Create(c.Request().Context(), h.coll, body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{h.coll.Singular(): rec})
}

func (h *recordHandler) update(c echo.Context) error {
	body, err := rawBody(c)
	if err != nil {
		return err
	}
	rec, err := h.records.Update(c.Request().Context(), h.coll, c.Param("id"), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{h.coll.Singular(): rec})
}

func (h *recordHandler) delete(c echo.Context) error {
	err := h.records.Delete(c.Request().Context(), h.coll, c.Param("id"), c.QueryParam(common.UserIDParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": h.coll.Singular() + " deleted"})
}
