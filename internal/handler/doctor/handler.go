package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/healthbook/booking-api/internal/handler"
	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/service/doctor"
)

type Handler struct {
	svc *doctor.Service
}

func NewHandler(svc *doctor.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes exposes the verified-doctor directory.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.GET("/specialty/:specialty", h.ListBySpecialty)
		doctors.GET("/search/:query", h.Search)
	}
}

// RegisterDoctorRoutes mounts the doctor portal; the caller gates it on the
// doctor role.
func (h *Handler) RegisterDoctorRoutes(r *gin.RouterGroup) {
	portal := r.Group("/doctor")
	{
		portal.GET("/profile", h.GetProfile)
		portal.PUT("/profile", h.UpdateProfile)
		portal.GET("/clinic", h.GetClinic)
		portal.PUT("/clinic", h.UpdateClinic)
		portal.GET("/patients", h.ListPatients)
		portal.GET("/appointments", h.ListAppointments)
		portal.GET("/stats", h.GetStats)
	}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.svc.ListVerified(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor id"))
		return
	}

	doc, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doc))
}

func (h *Handler) ListBySpecialty(c *gin.Context) {
	doctors, err := h.svc.BySpecialty(c.Request.Context(), c.Param("specialty"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) Search(c *gin.Context) {
	doctors, err := h.svc.Search(c.Request.Context(), c.Param("query"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) GetProfile(c *gin.Context) {
	doctorID, ok := handler.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	profile, err := h.svc.Profile(c.Request.Context(), doctorID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	doctorID, ok := handler.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.UpdateDoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), doctorID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) GetClinic(c *gin.Context) {
	doctorID, ok := handler.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	clinic, err := h.svc.Clinic(c.Request.Context(), doctorID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) UpdateClinic(c *gin.Context) {
	doctorID, ok := handler.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	clinic, err := h.svc.UpdateClinic(c.Request.Context(), doctorID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) ListPatients(c *gin.Context) {
	doctorID, ok := handler.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	patients, err := h.svc.Patients(c.Request.Context(), doctorID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	doctorID, ok := handler.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	appointments, err := h.svc.Appointments(c.Request.Context(), doctorID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) GetStats(c *gin.Context) {
	doctorID, ok := handler.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), doctorID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}
