// Package server wires the HTTP surface: echo, the binder, the error
// handler, and every feature's routes. The handlers only call the
// cataloging engine's public operations and the per-entity services.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/babel"
	"github.com/grotesquebooks/grotesque/pkg/binder"
	"github.com/grotesquebooks/grotesque/pkg/catalog"
	"github.com/grotesquebooks/grotesque/pkg/config"
	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/formats"
	"github.com/grotesquebooks/grotesque/pkg/genres"
	"github.com/grotesquebooks/grotesque/pkg/ifdb"
	"github.com/grotesquebooks/grotesque/pkg/jobs"
	"github.com/grotesquebooks/grotesque/pkg/launch"
	"github.com/grotesquebooks/grotesque/pkg/releases"
	"github.com/grotesquebooks/grotesque/pkg/settings"
	"github.com/grotesquebooks/grotesque/pkg/stories"
	"github.com/grotesquebooks/grotesque/pkg/tags"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, engine *catalog.Engine) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	launcher := launch.NewService(db, cfg)

	stories.RegisterRoutes(e, db, engine, launcher)
	releases.RegisterRoutes(e, db, launcher)
	jobs.RegisterRoutes(e, db)
	formats.RegisterRoutes(e, db)
	genres.RegisterRoutes(e, db)
	tags.RegisterRoutes(e, db)
	settings.RegisterRoutes(e, cfg)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

// NewEngine builds the cataloging engine with its production collaborators:
// the extension classifier and the IFDB client.
func NewEngine(cfg *config.Config, db *bun.DB) *catalog.Engine {
	return catalog.New(db, cfg, babel.ExtensionClassifier{}, ifdb.New(cfg.User.IFDB))
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
