package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	mw "github.com/padraicbc/archeryapi/middleware"
	"github.com/padraicbc/archeryapi/models"
)

type createEventRequest struct {
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	Location        string  `json:"location"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	DurationHours   int     `json:"durationHours"`
	MaxParticipants *int    `json:"maxParticipants"`
}

// Events returns events by date, optionally only those from today on.
func (h *Handler) Events(c echo.Context) error {
	var events []models.Event
	q := h.db.NewSelect().Model(&events).OrderExpr("e.date ASC, e.start_time ASC")
	if c.QueryParam("upcoming") == "true" {
		q = q.Where("e.date >= ?", time.Now().Format(time.DateOnly))
	}

	if err := q.Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if events == nil {
		events = []models.Event{}
	}

	return c.JSON(http.StatusOK, events)
}

// CreateEvent inserts a new event.
func (h *Handler) CreateEvent(c echo.Context) error {
	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	req.StartTime = strings.TrimSpace(req.StartTime)

	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Location == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "location is required")
	}
	if _, err := time.Parse(time.DateOnly, req.Date); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", req.StartTime); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "startTime must be HH:MM")
	}
	if req.DurationHours == 0 {
		req.DurationHours = 2
	}
	if req.DurationHours < 1 || req.DurationHours > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "durationHours must be between 1 and 12")
	}
	if req.MaxParticipants != nil && *req.MaxParticipants < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "maxParticipants must be positive")
	}

	event := &models.Event{
		Name:            req.Name,
		Description:     req.Description,
		Location:        req.Location,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationHours:   req.DurationHours,
		MaxParticipants: req.MaxParticipants,
		CreatedBy:       mw.MemberID(c),
	}

	if _, err := h.db.NewInsert().Model(event).Exec(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, event)
}
