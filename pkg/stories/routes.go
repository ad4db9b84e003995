package stories

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, engine Engine, launcher Launcher) {
	storyService := NewService(db)

	h := &handler{
		storyService: storyService,
		engine:       engine,
		launcher:     launcher,
	}

	e.GET("/stories", h.list)
	e.GET("/stories/:id", h.retrieve)
	e.DELETE("/stories/:id", h.remove)
	e.POST("/stories/:id/merge", h.merge)
	e.POST("/stories/:id/launch", h.launch)
	e.POST("/stories/export", h.export)
	e.GET("/stories/:id/resources", h.listResources)
	e.POST("/resources/:id/open", h.openResource)
}
