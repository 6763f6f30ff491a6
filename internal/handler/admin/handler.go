package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/healthbook/booking-api/internal/handler"
	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/service/account"
)

type Handler struct {
	svc *account.Service
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	{
		admin.GET("/pending-doctors", h.ListPendingDoctors)
		admin.PUT("/verify-doctor/:id", h.VerifyDoctor)
		admin.GET("/doctors", h.ListDoctors)
		admin.GET("/users", h.ListUsers)
		admin.GET("/appointments", h.ListAppointments)
		admin.PUT("/accounts/:id/block", h.BlockAccount)
		admin.PUT("/accounts/:id/unblock", h.UnblockAccount)
		admin.DELETE("/accounts/:id", h.DeleteAccount)
	}
}

func (h *Handler) ListPendingDoctors(c *gin.Context) {
	doctors, err := h.svc.ListPendingDoctors(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) VerifyDoctor(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor id"))
		return
	}

	var req model.VerifyDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	adminID, ok := handler.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	doctor, err := h.svc.DecideDoctor(c.Request.Context(), doctorID, adminID, req.Status)
	if err != nil {
		handler.Error(c, err)
		return
	}

	if doctor == nil {
		c.JSON(http.StatusOK, handler.NewSuccessResponse("doctor application rejected"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.svc.ListDoctors(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.svc.ListAllAppointments(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) BlockAccount(c *gin.Context) {
	h.setBlocked(c, true)
}

func (h *Handler) UnblockAccount(c *gin.Context) {
	h.setBlocked(c, false)
}

func (h *Handler) setBlocked(c *gin.Context, blocked bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid account id"))
		return
	}

	if err := h.svc.SetBlocked(c.Request.Context(), id, blocked); err != nil {
		handler.Error(c, err)
		return
	}

	msg := "account unblocked"
	if blocked {
		msg = "account blocked"
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(msg))
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid account id"))
		return
	}

	if err := h.svc.DeleteAccount(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse("account deleted"))
}
