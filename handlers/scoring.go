package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/skip2/go-qrcode"

	"github.com/padraicbc/archeryapi/competition"
	mw "github.com/padraicbc/archeryapi/middleware"
	"github.com/padraicbc/archeryapi/models"
)

const qrSize = 256

type resultsResponse struct {
	Competition *models.Competition         `json:"competition"`
	Groups      []competition.GroupResult   `json:"groups"`
	Stats       competition.CompletionStats `json:"stats"`
}

// Scoring returns every scorecard of a competition with completion stats.
func (h *Handler) Scoring(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	o, err := h.svc.ScoringOverview(c.Request().Context(), id)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// scorecard loads a card the caller may see: admins see all, members their own.
func (h *Handler) scorecard(c echo.Context) (*competition.Card, error) {
	id, err := intParam(c, "regID")
	if err != nil {
		return nil, err
	}
	card, err := h.svc.Scorecard(c.Request().Context(), id)
	if err != nil {
		return nil, h.httpError(c, err)
	}
	if !mw.IsAdmin(c) && card.MemberID != mw.MemberID(c) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "not your scorecard")
	}
	return card, nil
}

func (h *Handler) Scorecard(c echo.Context) error {
	card, err := h.scorecard(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

// ScorecardQR returns a PNG QR code linking to the scorecard, for target butts.
func (h *Handler) ScorecardQR(c echo.Context) error {
	card, err := h.scorecard(c)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/api/registrations/%d/scorecard", h.PublicURL, card.RegistrationID)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// RecordArrow scores or corrects one arrow.
func (h *Handler) RecordArrow(c echo.Context) error {
	regID, err := intParam(c, "regID")
	if err != nil {
		return err
	}
	var in competition.ArrowInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.RegistrationID = regID
	in.RecordedBy = mw.MemberID(c)

	card, err := h.svc.RecordArrow(c.Request().Context(), in)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, card)
}

// RecordRound scores a full round in one go.
func (h *Handler) RecordRound(c echo.Context) error {
	regID, err := intParam(c, "regID")
	if err != nil {
		return err
	}
	var in competition.RoundInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.RegistrationID = regID
	in.RecordedBy = mw.MemberID(c)

	card, err := h.svc.RecordRound(c.Request().Context(), in)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, card)
}

// Results ranks archers by group. Competitions still in setup have none.
func (h *Handler) Results(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	o, err := h.svc.ScoringOverview(ctx, id)
	if err != nil {
		return h.httpError(c, err)
	}
	if o.Competition.Status == models.StatusSetup {
		return echo.NewHTTPError(http.StatusConflict, "competition has not opened yet")
	}
	groups, err := h.svc.ResultsByGroup(ctx, id)
	if err != nil {
		return h.httpError(c, err)
	}

	return c.JSON(http.StatusOK, resultsResponse{
		Competition: o.Competition,
		Groups:      groups,
		Stats:       o.Stats,
	})
}
