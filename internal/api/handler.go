package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"agro-telemetry-backend/internal/auth"
	"agro-telemetry-backend/internal/engine"
	"agro-telemetry-backend/internal/errs"
	"agro-telemetry-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	engine  *engine.Engine
	auth    *auth.Service
	store   store.Store
	webpush *webpush.Options
	started time.Time
}

// NewHandler creates a new API handler.
func NewHandler(e *engine.Engine, authSvc *auth.Service, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		engine:  e,
		auth:    authSvc,
		store:   s,
		webpush: webpushOptions,
		started: time.Now(),
	}
}

// respondError maps the engine's error taxonomy onto HTTP statuses, keeping
// the {success, error} envelope.
func respondError(c *gin.Context, err error) {
	var validation *errs.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": validation.Msg})
		return
	}
	var authz *errs.AuthorizationError
	if errors.As(err, &authz) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": authz.Msg})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
}
