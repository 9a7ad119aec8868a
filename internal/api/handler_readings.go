package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agro-telemetry-backend/internal/engine"
)

// GetReadings handles GET /api/readings/:machineId.
func (h *Handler) GetReadings(c *gin.Context) {
	readings, err := h.engine.GetReadings(c.Request.Context(), c.Param("machineId"), engine.ReadingQuery{
		Metric:    c.Query("metric"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Limit:     c.Query("limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    readings,
		"count":   len(readings),
	})
}

// GetAnalytics handles GET /api/analytics/:machineId.
func (h *Handler) GetAnalytics(c *gin.Context) {
	result, err := h.engine.GetAnalytics(c.Request.Context(), c.Param("machineId"), c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Metrics,
		"count":      len(result.Metrics),
		"period":     result.Period,
		"machine_id": result.MachineID,
	})
}
