package canteenserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/campus-canteen/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	orderports "github.com/Apurer/campus-canteen/internal/domains/orders/ports"
)

// OrdersAPI implements the order section. Placement goes through the orchestrator so it can
// run as a durable workflow; everything else calls the service directly.
type OrdersAPI struct {
	service   orderports.Service
	placement orderports.PlacementOrchestrator
}

func NewOrdersAPI(service orderports.Service, placement orderports.PlacementOrchestrator) OrdersAPI {
	return OrdersAPI{service: service, placement: placement}
}

type listOrdersQuery struct {
	Status        string `form:"status"`
	OrderType     string `form:"orderType"`
	PaymentStatus string `form:"paymentStatus"`
	Date          string `form:"date"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q listOrdersQuery) input() types.ListOrdersInput {
	return types.ListOrdersInput{
		Status:        q.Status,
		Type:          q.OrderType,
		PaymentStatus: q.PaymentStatus,
		Date:          q.Date,
		Page:          q.Page,
		Limit:         q.Limit,
	}
}

type analyticsQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// Post /api/orders
// Places an order and reserves stock
func (api *OrdersAPI) PlaceOrder(c *gin.Context) {
	var payload orderhttpmapper.PlaceOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	input := orderhttpmapper.ToPlaceOrderInput(payload, c.GetHeader("Idempotency-Key"))
	placer := api.placement
	if placer == nil {
		placer = api.service
	}
	view, err := placer.PlaceOrder(c.Request.Context(), principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, gin.H{"message": "Order placed successfully", "order": orderhttpmapper.FromOrderView(*view)})
}

// Get /api/orders/my-orders
func (api *OrdersAPI) ListMyOrders(c *gin.Context) {
	var query listOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}
	page, err := api.service.ListMyOrders(c.Request.Context(), principal(c), query.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orders": orderhttpmapper.FromOrderViews(page.Items), "pagination": page.Pagination})
}

// Get /api/orders
func (api *OrdersAPI) ListOrders(c *gin.Context) {
	var query listOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}
	page, err := api.service.ListOrders(c.Request.Context(), principal(c), query.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orders": orderhttpmapper.FromOrderViews(page.Items), "pagination": page.Pagination})
}

// Get /api/orders/analytics
func (api *OrdersAPI) Analytics(c *gin.Context) {
	var query analyticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}
	report, err := api.service.Analytics(c.Request.Context(), principal(c), types.AnalyticsInput{
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"analytics": report})
}

// Get /api/orders/:id
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := api.service.GetOrder(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"order": orderhttpmapper.FromOrderView(*view)})
}

// Patch /api/orders/:id/status
func (api *OrdersAPI) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.StatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	view, err := api.service.UpdateStatus(c.Request.Context(), principal(c), types.UpdateStatusInput{
		OrderID: id,
		Status:  payload.Status,
		ReadyAt: payload.ActualReadyTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Order status updated successfully", "order": orderhttpmapper.FromOrderView(*view)})
}

// Patch /api/orders/:id/cancel
func (api *OrdersAPI) CancelOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := api.service.CancelOrder(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": orderhttpmapper.FromOrderView(*view)})
}

// Patch /api/orders/:id/payment
func (api *OrdersAPI) UpdatePaymentStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.PaymentUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	view, err := api.service.UpdatePaymentStatus(c.Request.Context(), principal(c), types.UpdatePaymentStatusInput{
		OrderID:       id,
		PaymentStatus: payload.PaymentStatus,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Payment status updated successfully", "order": orderhttpmapper.FromOrderView(*view)})
}

// Post /api/orders/:id/feedback
func (api *OrdersAPI) AddFeedback(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.Feedback
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	view, err := api.service.AddFeedback(c.Request.Context(), principal(c), types.FeedbackInput{
		OrderID:  id,
		Rating:   payload.Rating,
		Feedback: payload.Feedback,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Feedback added successfully", "order": orderhttpmapper.FromOrderView(*view)})
}
