package tags

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	tagService := NewService(db)

	h := &handler{
		tagService: tagService,
	}

	e.GET("/tags", h.list)
	e.GET("/stories/:id/tags", h.listForStory)
	e.PUT("/stories/:id/tags", h.setForStory)
}
