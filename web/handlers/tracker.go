// Package handlers is the gin adapter over the attendance service. Handlers
// only parse requests and serialize responses; every decision lives in core.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rtotrack.dev/rtotrack/core"
	"rtotrack.dev/rtotrack/web/common"
)

type TrackerHandler struct {
	Service *core.Service
}

func NewTrackerHandler(service *core.Service) *TrackerHandler {
	return &TrackerHandler{Service: service}
}

// Register wires the tracker routes.
func Register(r gin.IRouter, service *core.Service) {
	h := NewTrackerHandler(service)

	r.PUT("/dashboard", h.CreateDashboard)
	r.GET("/dashboard/:guid", h.GetDashboard)
	r.GET("/dashboard/:guid/:year/:month", h.GetMonth)
	r.POST("/checkin/:guid", h.CheckIn)
	r.GET("/stats/:guid/:year/:month", h.GetStats)
}

type newUserPayload struct {
	Timezone string `json:"timezone"`
}

// CreateDashboard onboards a new anonymous user and returns the created base
// record.
func (h *TrackerHandler) CreateDashboard(c *gin.Context) {
	var payload newUserPayload
	// ContentLength is -1 for chunked bodies, which still carry a payload.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}
	}

	base, err := h.Service.Onboard(c.Request.Context(), payload.Timezone, c.ClientIP())
	switch {
	case errors.Is(err, core.ErrInvalidTimezone):
		c.JSON(http.StatusUnprocessableEntity, common.NewErrorResponse("Invalid timezone"))
	case errors.Is(err, core.ErrGeolocationUnavailable), errors.Is(err, core.ErrUnknownCountry):
		c.JSON(http.StatusBadGateway, common.NewErrorResponse(err.Error()))
	case err != nil:
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusOK, base)
	}
}

// GetDashboard returns a user's base record.
func (h *TrackerHandler) GetDashboard(c *gin.Context) {
	base, err := h.Service.GetBase(c.Request.Context(), c.Param("guid"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, base)
}

// GetMonth returns a user's month record, creating it when missing.
func (h *TrackerHandler) GetMonth(c *gin.Context) {
	year, month, ok := parseYearMonth(c)
	if !ok {
		return
	}

	record, err := h.Service.GetMonth(c.Request.Context(), c.Param("guid"), year, month)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// CheckIn records today's attendance ping. An already recorded day answers
// 202; an unauthorized source IP is indistinguishable from a recorded one.
func (h *TrackerHandler) CheckIn(c *gin.Context) {
	status, err := h.Service.CheckIn(c.Request.Context(), c.Param("guid"), c.ClientIP())
	if err != nil {
		h.renderError(c, err)
		return
	}

	if status == core.CheckInAlreadyRecorded {
		c.JSON(http.StatusAccepted, common.NewStatusResponse("already recorded"))
		return
	}
	c.JSON(http.StatusOK, common.NewStatusResponse("ok"))
}

// GetStats returns the attendance percentage for one month.
func (h *TrackerHandler) GetStats(c *gin.Context) {
	year, month, ok := parseYearMonth(c)
	if !ok {
		return
	}

	stats, err := h.Service.Stats(c.Request.Context(), c.Param("guid"), year, month)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *TrackerHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrUserNotFound), errors.Is(err, core.ErrRecordNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, core.ErrInvalidCalendarInput):
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
	}
}

func parseYearMonth(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid year"))
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid month"))
		return 0, 0, false
	}
	return year, month, true
}
