package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rightsdesk/backend/service"
)

type AlertHandler struct {
	alerts *service.AlertScheduler
}

func NewAlertHandler(alerts *service.AlertScheduler) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

type ScheduleAlertRequest struct {
	Title      string `json:"title" binding:"required"`
	ExpiryDate string `json:"expiry_date" binding:"required"`
}

// Schedule records a manual expiry reminder.
func (h *AlertHandler) Schedule(c *gin.Context) {
	var req ScheduleAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expiry_date, expected YYYY-MM-DD"})
		return
	}

	h.alerts.Schedule(req.Title, expiry)

	c.JSON(http.StatusOK, gin.H{"message": "Alert scheduled"})
}

// List returns every scheduled alert.
func (h *AlertHandler) List(c *gin.Context) {
	entries := h.alerts.ListUpcoming()

	result := make([]gin.H, len(entries))
	for i, entry := range entries {
		result[i] = gin.H{
			"title":       entry.Title,
			"expiry_date": entry.ExpiryDate.Format("2006-01-02"),
		}
	}

	c.JSON(http.StatusOK, gin.H{"alerts": result})
}
