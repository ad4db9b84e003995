package releases

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, launcher Launcher) {
	releaseService := NewService(db)

	h := &handler{
		releaseService: releaseService,
		launcher:       launcher,
	}

	e.GET("/releases/:ifid", h.retrieve)
	e.POST("/releases/:ifid/launch", h.launch)
}
