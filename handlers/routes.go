package handlers

import (
	"github.com/labstack/echo/v4"

	mw "github.com/padraicbc/archeryapi/middleware"
)

// Mount registers all API routes under /api.
func (h *Handler) Mount(e *echo.Echo) {
	// Public
	e.POST("/api/signin", h.Signin)

	// Protected – require valid JWT in Authorization header
	api := e.Group("/api", mw.JWT(h.JWTKey))
	api.GET("/events", h.Events)
	api.GET("/inventory", h.Inventory)
	api.GET("/competitions", h.Competitions)
	api.GET("/competitions/:id", h.GetCompetition)
	api.GET("/competitions/:id/results", h.Results)
	api.GET("/competitions/:id/inventory", h.TargetFaceInventory)
	api.POST("/competitions/:id/register", h.RegisterSelf)
	api.GET("/registrations/:regID/scorecard", h.Scorecard)
	api.GET("/registrations/:regID/qr.png", h.ScorecardQR)

	// Admin
	api.GET("/competitions/:id/scoring", h.Scoring, mw.AdminOnly)
	api.POST("/events", h.CreateEvent, mw.AdminOnly)
	api.POST("/inventory", h.CreateInventoryItem, mw.AdminOnly)
	api.PUT("/inventory/:id/quantity", h.UpdateQuantity, mw.AdminOnly)
	api.POST("/events/:eventID/competition", h.CreateCompetition, mw.AdminOnly)
	api.DELETE("/competitions/:id", h.DeleteCompetition, mw.AdminOnly)
	api.POST("/competitions/:id/groups", h.AddGroup, mw.AdminOnly)
	api.DELETE("/groups/:groupID", h.DeleteGroup, mw.AdminOnly)
	api.POST("/competitions/:id/open-registration", h.OpenRegistration, mw.AdminOnly)
	api.POST("/competitions/:id/teams", h.GenerateTeams, mw.AdminOnly)
	api.POST("/competitions/:id/start", h.StartCompetition, mw.AdminOnly)
	api.POST("/competitions/:id/complete", h.CompleteCompetition, mw.AdminOnly)
	api.POST("/competitions/:id/registrations", h.RegisterMember, mw.AdminOnly)
	api.POST("/registrations/:regID/arrows", h.RecordArrow, mw.AdminOnly)
	api.POST("/registrations/:regID/rounds", h.RecordRound, mw.AdminOnly)
}
