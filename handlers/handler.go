package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/archeryapi/apperr"
	"github.com/padraicbc/archeryapi/competition"
	mw "github.com/padraicbc/archeryapi/middleware"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db        *bun.DB
	svc       *competition.Service
	log       *zap.Logger
	JWTKey    []byte
	PublicURL string
}

// New creates a Handler. publicURL is the base used in printed QR links.
func New(db *bun.DB, svc *competition.Service, log *zap.Logger, jwtKey []byte, publicURL string) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{db: db, svc: svc, log: log, JWTKey: jwtKey, PublicURL: publicURL}
}

// httpError maps a service error to an echo error.
func (h *Handler) httpError(c echo.Context, err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal(err, "unexpected error")
	}

	switch ae.Kind {
	case apperr.KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, ae.Error())
	case apperr.KindState, apperr.KindConflict:
		return echo.NewHTTPError(http.StatusConflict, ae.Message)
	case apperr.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, ae.Message)
	default:
		h.log.Error("request failed",
			zap.String("path", c.Path()), zap.String("request_id", mw.RequestIDFrom(c)),
			zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}
