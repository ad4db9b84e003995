// Package settings exposes the user-editable configuration over HTTP:
// per-format launcher commands, the resource opener, and the IFDB fetch
// behavior. Updates are persisted back to the user config file.
package settings

import (
	"net/http"

	"github.com/grotesquebooks/grotesque/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	cfg *config.Config
}

func (h *handler) retrieve(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, settingsJSON(h.cfg.User)))
}

func (h *handler) update(c echo.Context) error {
	// Bind params.
	params := UpdateSettingsPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user := h.cfg.User
	if params.Launchers != nil {
		user.Launchers = params.Launchers
	}
	if params.ResourceOpener != nil {
		user.ResourceOpener = *params.ResourceOpener
	}
	if params.FetchMetadata != nil {
		user.IFDB.FetchMetadata = *params.FetchMetadata
	}
	if params.FetchCoverArt != nil {
		user.IFDB.FetchCoverArt = *params.FetchCoverArt
	}
	if params.RequestsPerMinute != nil {
		user.IFDB.RequestsPerMinute = *params.RequestsPerMinute
	}

	if h.cfg.UserConfigFilePath != "" {
		if err := config.SaveUserConfig(user, h.cfg.UserConfigFilePath); err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, settingsJSON(user)))
}

func settingsJSON(user *config.UserConfig) interface{} {
	return struct {
		Launchers         map[string]string `json:"launchers"`
		ResourceOpener    string            `json:"resource_opener"`
		FetchMetadata     bool              `json:"fetch_metadata"`
		FetchCoverArt     bool              `json:"fetch_cover_art"`
		RequestsPerMinute int               `json:"requests_per_minute"`
	}{
		Launchers:         user.Launchers,
		ResourceOpener:    user.ResourceOpener,
		FetchMetadata:     user.IFDB.FetchMetadata,
		FetchCoverArt:     user.IFDB.FetchCoverArt,
		RequestsPerMinute: user.IFDB.RequestsPerMinute,
	}
}
