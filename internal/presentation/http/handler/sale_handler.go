package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/application/service"
	"github.com/dukkan-app/dukkan-api/internal/domain/repository"
	"github.com/dukkan-app/dukkan-api/internal/presentation/http/dto/request"
	"github.com/dukkan-app/dukkan-api/internal/presentation/http/dto/response"
	"github.com/dukkan-app/dukkan-api/pkg/pagination"
)

// SaleHandler handles sale transaction HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Submit handles committing a new sale
func (h *SaleHandler) Submit(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.SubmitSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.SubmitSaleInput{UserID: *userID}
	if req.SaleDate != "" {
		input.SaleDate, _ = time.Parse("2006-01-02", req.SaleDate)
	}
	for _, line := range req.Lines {
		serviceLine := service.SaleLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		if line.UnitPrice != nil {
			cents := int64(*line.UnitPrice*100 + 0.5)
			serviceLine.UnitPrice = &cents
		}
		input.Lines = append(input.Lines, serviceLine)
	}

	sale, err := h.saleService.SubmitSale(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale committed successfully", sale)
}

// Get handles retrieving a single sale with its lines
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// List handles listing sale history with date filtering
func (h *SaleHandler) List(c *gin.Context) {
	var filter request.SaleFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
	}

	startDate, err := parseDateParam(filter.StartDate)
	if err != nil {
		response.BadRequest(c, "Invalid start date")
		return
	}
	params.StartDate = startDate

	endDate, err := parseDateParam(filter.EndDate)
	if err != nil {
		response.BadRequest(c, "Invalid end date")
		return
	}
	params.EndDate = endDate

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Sales retrieved successfully", result)
}
