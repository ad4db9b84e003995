package genres

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	genreService := NewService(db)

	h := &handler{
		genreService: genreService,
	}

	e.GET("/genres", h.list)
}
