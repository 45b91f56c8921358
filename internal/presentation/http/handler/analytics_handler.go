package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/dukkan-app/dukkan-api/internal/application/service"
	"github.com/dukkan-app/dukkan-api/internal/presentation/http/dto/request"
	"github.com/dukkan-app/dukkan-api/internal/presentation/http/dto/response"
)

// AnalyticsHandler handles analytics report HTTP requests
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Get handles computing the analytics report for a date range
func (h *AnalyticsHandler) Get(c *gin.Context) {
	var filter request.AnalyticsFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "start_date and end_date are required as YYYY-MM-DD")
		return
	}

	startDate, _ := time.Parse("2006-01-02", filter.StartDate)
	endDate, _ := time.Parse("2006-01-02", filter.EndDate)

	granularity, err := service.ParseGranularity(filter.Granularity)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	report, err := h.analyticsService.GetAnalytics(c.Request.Context(), &service.AnalyticsQuery{
		StartDate:   startDate,
		EndDate:     endDate,
		Granularity: granularity,
		ZeroFill:    filter.ZeroFill,
		TopLimit:    filter.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Analytics retrieved successfully", report)
}
