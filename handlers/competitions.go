package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/archeryapi/competition"
	mw "github.com/padraicbc/archeryapi/middleware"
)

type registerRequest struct {
	GroupID int     `json:"groupID"`
	Notes   *string `json:"notes"`
}

// Competitions lists competitions by event date; ?upcoming=true hides past ones.
func (h *Handler) Competitions(c echo.Context) error {
	list, err := h.svc.ListCompetitions(c.Request().Context(), c.QueryParam("upcoming") == "true")
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// CreateCompetition attaches a competition to an event.
func (h *Handler) CreateCompetition(c echo.Context) error {
	eventID, err := intParam(c, "eventID")
	if err != nil {
		return err
	}
	var in competition.CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.EventID = eventID
	in.CreatedBy = mw.MemberID(c)

	comp, err := h.svc.CreateCompetition(c.Request().Context(), in)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, comp)
}

// GetCompetition returns the competition with groups, teams and inventory status.
func (h *Handler) GetCompetition(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.GetCompetition(c.Request().Context(), id)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// DeleteCompetition removes a competition with all its groups, teams and scores.
func (h *Handler) DeleteCompetition(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCompetition(c.Request().Context(), id); err != nil {
		return h.httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddGroup(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var in competition.GroupInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	g, err := h.svc.AddGroup(c.Request().Context(), id, in)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *Handler) DeleteGroup(c echo.Context) error {
	id, err := intParam(c, "groupID")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteGroup(c.Request().Context(), id); err != nil {
		return h.httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) OpenRegistration(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	comp, err := h.svc.OpenRegistration(c.Request().Context(), id)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, comp)
}

// GenerateTeams redraws all teams. A face shortage is reported, not refused.
func (h *Handler) GenerateTeams(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	res, err := h.svc.GenerateTeams(c.Request().Context(), id)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) StartCompetition(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	comp, err := h.svc.StartCompetition(c.Request().Context(), id)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, comp)
}

// CompleteCompetition closes scoring and auto-fills missing arrows.
func (h *Handler) CompleteCompetition(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	res, err := h.svc.CompleteCompetition(c.Request().Context(), id, mw.MemberID(c))
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// RegisterSelf enters the signed-in member into a group.
func (h *Handler) RegisterSelf(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reg, err := h.svc.Register(c.Request().Context(), competition.RegisterInput{
		CompetitionID: id,
		MemberID:      mw.MemberID(c),
		GroupID:       req.GroupID,
		Notes:         req.Notes,
	})
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, reg)
}

// RegisterMember lets an admin enter any member.
func (h *Handler) RegisterMember(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var in competition.RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.CompetitionID = id
	reg, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, reg)
}

// TargetFaceInventory reports whether there are enough faces for the teams.
func (h *Handler) TargetFaceInventory(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	st, err := h.svc.CheckTargetFaceInventory(c.Request().Context(), id)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
