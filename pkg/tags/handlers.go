package tags

import (
	"net/http"
	"strconv"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	tagService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	tags, err := h.tagService.ListTags(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Tags []*models.Tag `json:"tags"`
	}{tags}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) listForStory(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Story")
	}

	tags, err := h.tagService.ListTagsForStory(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Tags []*models.Tag `json:"tags"`
	}{tags}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) setForStory(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Story")
	}

	// Bind params.
	params := SetStoryTagsPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := h.tagService.SetStoryTags(ctx, id, params.Tags); err != nil {
		return errors.WithStack(err)
	}

	tags, err := h.tagService.ListTagsForStory(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Tags []*models.Tag `json:"tags"`
	}{tags}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
