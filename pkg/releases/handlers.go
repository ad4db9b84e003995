package releases

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Launcher starts an interpreter for a single release.
type Launcher interface {
	LaunchRelease(ctx context.Context, ifid string) error
}

type handler struct {
	releaseService *Service
	launcher       Launcher
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	ifid := c.Param("ifid")

	release, err := h.releaseService.RetrieveRelease(ctx, RetrieveReleaseOptions{IFID: &ifid})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, release))
}

func (h *handler) launch(c echo.Context) error {
	ctx := c.Request().Context()
	ifid := c.Param("ifid")

	if err := h.launcher.LaunchRelease(ctx, ifid); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
