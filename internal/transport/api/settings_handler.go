package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/azorastack/market/internal/domain"
	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsSvs SettingsServicer
}

func NewSettingsHandler(settingsSvs SettingsServicer) *SettingsHandler {
	return &SettingsHandler{
		settingsSvs: settingsSvs,
	}
}

type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Show GET RouteGroup + AdminSettingRoute.
func (h *SettingsHandler) Show(c *gin.Context) {
	key := c.Param("key")

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	value, err := h.settingsSvs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.JSON(http.StatusOK, SettingResponse{Key: key, Value: value})
}

type SettingUpdateParams struct {
	Value string `binding:"required,max=255" json:"value"`
}

// Update PUT RouteGroup + AdminSettingRoute. The new value takes effect on
// the next read; commission snapshots on existing orders are untouched.
func (h *SettingsHandler) Update(c *gin.Context) {
	key := c.Param("key")

	var params SettingUpdateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.settingsSvs.Set(ctx, key, params.Value); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.JSON(http.StatusOK, SettingResponse{Key: key, Value: params.Value})
}
