package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type telemetryRequest struct {
	MachineID int64          `json:"machine_id"`
	Metrics   map[string]any `json:"metrics"`
}

// RecordTelemetry handles POST /api/telemetry, the authenticated alternative
// to the bus. The batch is atomic: any invalid metric rejects the whole body.
func (h *Handler) RecordTelemetry(c *gin.Context) {
	var req telemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Metrics object is required"})
		return
	}

	if err := h.engine.RecordTelemetry(c.Request.Context(), req.MachineID, req.Metrics); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    gin.H{"machine_id": req.MachineID, "recorded": len(req.Metrics)},
	})
}
