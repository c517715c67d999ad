package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mechbook/internal/domain"
	"mechbook/internal/middleware"
	"mechbook/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings", h.List)
	rg.GET("/bookings/stats", h.Stats)
	rg.GET("/bookings/admin/stats", middleware.AdminOnly(), h.AdminStats)
	rg.GET("/bookings/:id", h.Get)
	rg.PATCH("/bookings/:id/status", h.UpdateStatus)
	rg.PATCH("/bookings/:id/cancel", h.Cancel)
	rg.POST("/bookings/:id/review", h.Review)
	rg.POST("/bookings/:id/charges", h.AddCharge)
	rg.POST("/bookings/:id/refund", h.RequestRefund)
	rg.PATCH("/bookings/:id/refund", middleware.AdminOnly(), h.ResolveRefund)
	rg.POST("/bookings/:id/reschedule", h.RequestReschedule)
	rg.PATCH("/bookings/:id/reschedule", h.RespondReschedule)
	rg.POST("/bookings/:id/dispute", h.OpenDispute)
	rg.PATCH("/bookings/:id/dispute", middleware.AdminOnly(), h.ResolveDispute)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.GetByID(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	var status *domain.BookingStatus
	if s := c.Query("status"); s != "" {
		st := domain.BookingStatus(s)
		if !domain.IsValidStatus(st) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status filter")
			return
		}
		status = &st
	}

	items, total, err := h.service.List(c.Request.Context(), actorFrom(c), status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, items, response.NewPagination(page, limit, total))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Transition(c.Request.Context(), actorFrom(c), id, domain.BookingStatus(req.Status), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), actorFrom(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Booking cancelled", gin.H{"booking": b})
}

func (h *Handler) Review(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.AttachReview(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) AddCharge(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.AddCharge(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) RequestRefund(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.RequestRefund(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ResolveRefund(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req RefundResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.ResolveRefund(c.Request.Context(), actorFrom(c), id, req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) RequestReschedule(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.RequestReschedule(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) RespondReschedule(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req RescheduleRespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.RespondReschedule(c.Request.Context(), actorFrom(c), id, *req.Accept, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) OpenDispute(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req DisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.OpenDispute(c.Request.Context(), actorFrom(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ResolveDispute(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req DisputeResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.ResolveDispute(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.service.AdminStats(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

func actorFrom(c *gin.Context) Actor {
	return Actor{
		ID:   c.GetInt64("user_id"),
		Role: domain.UserRole(c.GetString("role")),
	}
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Service not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
	case errors.Is(err, ErrScheduleConflict):
		response.Error(c, http.StatusConflict, "SCHEDULE_CONFLICT", err.Error())
	case errors.Is(err, ErrConcurrentUpdate):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusBadRequest, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotCancellable),
		errors.Is(err, ErrAlreadyReviewed),
		errors.Is(err, ErrReviewNotAllowed),
		errors.Is(err, ErrNoPendingReschedule),
		errors.Is(err, ErrRefundResolved),
		errors.Is(err, ErrDisputeNotAllowed),
		errors.Is(err, ErrNumberExhausted):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
