package settings

import (
	"github.com/grotesquebooks/grotesque/pkg/config"
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg *config.Config) {
	h := &handler{
		cfg: cfg,
	}

	e.GET("/settings", h.retrieve)
	e.PUT("/settings", h.update)
}
