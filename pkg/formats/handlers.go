package formats

import (
	"net/http"
	"strconv"

	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	formatService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	formats, err := h.formatService.ListFormats(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Formats []*models.Format `json:"formats"`
	}{formats}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

// update sets or clears a format's interpreter launch command.
func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Format")
	}

	// Bind params.
	params := UpdateFormatPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	format, err := h.formatService.RetrieveFormat(ctx, RetrieveFormatOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	format.Command = params.Command
	err = h.formatService.UpdateFormat(ctx, format, UpdateFormatOptions{Columns: []string{"command"}})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, format))
}
