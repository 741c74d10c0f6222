package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nissaya/reader/internal/reading"
)

type SettingsController struct {
	store *reading.Store
}

func NewSettingsController(store *reading.Store) *SettingsController {
	return &SettingsController{store: store}
}

// Get returns the current reading settings.
// GET /api/settings
func (sc *SettingsController) Get(c *gin.Context) {
	respondReady(c, sc.store.Settings())
}

// Update merges the given fields over the current settings.
// PATCH /api/settings
func (sc *SettingsController) Update(c *gin.Context) {
	var patch reading.SettingsPatch
	if !bindJSON(c, &patch) {
		return
	}
	sc.respond(c, func() (reading.Settings, error) { return sc.store.Update(patch) })
}

// POST /api/settings/font/increase
func (sc *SettingsController) IncreaseFontSize(c *gin.Context) {
	sc.respond(c, sc.store.IncreaseFontSize)
}

// POST /api/settings/font/decrease
func (sc *SettingsController) DecreaseFontSize(c *gin.Context) {
	sc.respond(c, sc.store.DecreaseFontSize)
}

// POST /api/settings/night-mode
func (sc *SettingsController) ToggleNightMode(c *gin.Context) {
	sc.respond(c, sc.store.ToggleNightMode)
}

func (sc *SettingsController) respond(c *gin.Context, mutate func() (reading.Settings, error)) {
	settings, err := mutate()
	if err != nil {
		if errors.Is(err, reading.ErrInvalidFontSize) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "save reading settings")
		return
	}
	respondReady(c, settings)
}
