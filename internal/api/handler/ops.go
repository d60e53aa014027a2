package handler

import (
	"net/http"
	"time"

	"github.com/weatherlamp/weatherlamp/internal/api/models"
	"github.com/weatherlamp/weatherlamp/internal/api/response"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct{}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler() *OpsHandler {
	return &OpsHandler{}
}

// HealthCheck is the liveness check for load balancers and deployment
// automation.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	response.JSON(w, r, http.StatusOK, health)
}
