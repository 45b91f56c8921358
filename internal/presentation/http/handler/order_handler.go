package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/application/service"
	"github.com/dukkan-app/dukkan-api/internal/domain/enum"
	"github.com/dukkan-app/dukkan-api/internal/domain/repository"
	"github.com/dukkan-app/dukkan-api/internal/presentation/http/dto/request"
	"github.com/dukkan-app/dukkan-api/internal/presentation/http/dto/response"
	"github.com/dukkan-app/dukkan-api/pkg/pagination"
)

// OrderHandler handles shopping order HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles creating a pending shopping order
func (h *OrderHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &service.CreateOrderInput{
		UserID:        *userID,
		ItemName:      req.ItemName,
		Category:      req.Category,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created successfully", order)
}

// Get handles retrieving a single shopping order
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// List handles listing shopping orders with filtering and pagination
func (h *OrderHandler) List(c *gin.Context) {
	params, err := orderFilterParams(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", result)
}

// Update handles editing a pending shopping order
func (h *OrderHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), id, &service.UpdateOrderInput{
		ItemName:      req.ItemName,
		Category:      req.Category,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order updated successfully", order)
}

// Delete handles removing a pending shopping order
func (h *OrderHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// MarkPurchased handles the Pending -> Purchased transition
func (h *OrderHandler) MarkPurchased(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.MarkPurchasedRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, "Invalid request body")
		return
	}

	var purchasedAt time.Time
	if req.PurchaseDate != "" {
		purchasedAt, _ = time.Parse("2006-01-02", req.PurchaseDate)
	}

	order, product, err := h.orderService.MarkPurchased(c.Request.Context(), id, purchasedAt)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order marked as purchased", gin.H{
		"order":   order,
		"product": product,
	})
}

// ListPurchased handles listing purchased orders with spend totals
func (h *OrderHandler) ListPurchased(c *gin.Context) {
	params, err := orderFilterParams(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, summary, err := h.orderService.ListPurchased(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchases retrieved successfully", gin.H{
		"items":      result.Items,
		"pagination": result.Pagination,
		"summary":    summary,
	})
}

func orderFilterParams(c *gin.Context) (*repository.OrderFilterParams, error) {
	var filter request.OrderFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		return nil, err
	}

	params := &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:   filter.Search,
		Category: filter.Category,
	}

	if filter.Status != "" {
		status, err := enum.ParseOrderStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		params.Status = &status
	}

	startDate, err := parseDateParam(filter.StartDate)
	if err != nil {
		return nil, err
	}
	params.StartDate = startDate

	endDate, err := parseDateParam(filter.EndDate)
	if err != nil {
		return nil, err
	}
	params.EndDate = endDate

	return params, nil
}
