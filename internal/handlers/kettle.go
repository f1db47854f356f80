package handlers

import (
	"context"
	"errors"
	"net/http"

	"smart_kettle/internal/models"
	"smart_kettle/internal/service"
	"smart_kettle/internal/thermal"

	"github.com/gin-gonic/gin"
)

const (
	statusOK       = "ok"
	statusAccepted = "accepted"

	errGetStatus       = "failed to load status"
	errSubmitCommand   = "failed to submit command"
	errInvalidBodyPref = "invalid body: "
	errNotFound        = "ERROR 404: Page not found!"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// commandStatusCode maps command errors to HTTP codes.
func commandStatusCode(err error) int {
	switch {
	case errors.Is(err, thermal.ErrInvalidCommand), errors.Is(err, service.ErrTargetOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrTestInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

func (h *Handler) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": errNotFound})
}

// @Summary      Get kettle status
// @Tags         kettle
// @Produce      json
// @Success      200  {object}  models.KettleStatus
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/kettle/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	st, err := h.services.Monitoring.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "kettle_get_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Boil to a target temperature
// @Description  Queued for the next control tick. A newer command replaces a pending one.
// @Tags         kettle
// @Accept       json
// @Produce      json
// @Param        body  body      models.TargetRequest  true  "Target payload"
// @Success      202   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "test run in progress"
// @Router       /api/v1/kettle/target [post]
// @Security     BearerAuth
func (h *Handler) setTarget(c *gin.Context) {
	h.submitCommand(c, "set_target", h.services.Kettle.SetTarget)
}

// @Summary      Start a timed test run
// @Description  Heats to the target and reports the elapsed time when done.
// @Tags         kettle
// @Accept       json
// @Produce      json
// @Param        body  body      models.TargetRequest  true  "Target payload"
// @Success      202   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "test run in progress"
// @Router       /api/v1/kettle/test [post]
// @Security     BearerAuth
func (h *Handler) startTest(c *gin.Context) {
	h.submitCommand(c, "start_test", h.services.Kettle.StartTest)
}

func (h *Handler) submitCommand(c *gin.Context, name string, submit func(context.Context, int) error) {
	var req models.TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := submit(ctx, req.TargetTempC); err != nil {
		code := commandStatusCode(err)
		if code != http.StatusInternalServerError {
			if h.log != nil {
				h.log.Infow("kettle_command_rejected", "command", name, "target", req.TargetTempC, "err", err)
			}
			c.JSON(code, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, code, errSubmitCommand, "kettle_command_failed", err, "command", name)
		return
	}

	st, err := h.services.Monitoring.GetStatus(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "kettle_get_status_failed", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusAccepted, "state": st})
}
