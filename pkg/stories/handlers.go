package stories

import (
	"context"
	"net/http"
	"strconv"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/ifiction"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Engine is the slice of the cataloging engine the story routes need.
type Engine interface {
	RemoveStory(ctx context.Context, storyID int) error
	MergeStory(ctx context.Context, sourceID, targetID int) error
	ExportIfiction(ctx context.Context, storyIDs []int) (*ifiction.Document, error)
}

// Launcher starts an interpreter for a story and opens auxiliary
// resources.
type Launcher interface {
	LaunchStory(ctx context.Context, storyID int) error
	OpenResource(uri string) error
}

type handler struct {
	storyService *Service
	engine       Engine
	launcher     Launcher
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListStoriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	stories, total, err := h.storyService.ListStoriesWithTotal(ctx, ListStoriesOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		Search:   params.Search,
		GenreID:  params.GenreID,
		TagID:    params.TagID,
		SeriesID: params.SeriesID,
		GroupID:  params.GroupID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Stories []*models.Story `json:"stories"`
		Total   int             `json:"total"`
	}{stories, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Story")
	}

	story, err := h.storyService.RetrieveStory(ctx, RetrieveStoryOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, story))
}

func (h *handler) remove(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Story")
	}

	if err := h.engine.RemoveStory(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) merge(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Story")
	}

	// Bind params.
	params := MergeStoryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := h.engine.MergeStory(ctx, id, params.TargetID); err != nil {
		return errors.WithStack(err)
	}

	story, err := h.storyService.RetrieveStory(ctx, RetrieveStoryOptions{ID: &params.TargetID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, story))
}

func (h *handler) launch(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Story")
	}

	if err := h.launcher.LaunchStory(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) listResources(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Story")
	}

	resources, err := h.storyService.ListResources(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Resources []*models.Resource `json:"resources"`
	}{resources}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) openResource(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Resource")
	}

	resource, err := h.storyService.RetrieveResource(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.launcher.OpenResource(resource.URI); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) export(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ExportStoriesPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	doc, err := h.engine.ExportIfiction(ctx, params.StoryIDs)
	if err != nil {
		return errors.WithStack(err)
	}

	data, err := doc.Render()
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, data))
}
