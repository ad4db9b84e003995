package formats

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	formatService := NewService(db)

	h := &handler{
		formatService: formatService,
	}

	e.GET("/formats", h.list)
	e.PATCH("/formats/:id", h.update)
}
