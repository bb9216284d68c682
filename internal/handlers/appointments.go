package handlers

import (
	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	appointments *services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointments *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

// CreateAppointment handles creating a new appointment.
// Patients book for themselves; admins name the patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req services.CreateAppointmentInput
	if !utils.BindJSON(c, &req) {
		return
	}

	appointment, err := h.appointments.Create(c.Request.Context(), session, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointmentsForUser handles fetching appointments for the logged-in user.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	appointments, err := h.appointments.List(c.Request.Context(), session)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment the caller takes part in.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	appointment, err := h.appointments.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatus handles updating the status of an appointment.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req services.UpdateStatusInput
	if !utils.BindJSON(c, &req) {
		return
	}

	appointment, err := h.appointments.UpdateStatus(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment status updated successfully", appointment)
}

// DeleteAppointment handles deleting an appointment (owning patient or admin).
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	if err := h.appointments.Delete(c.Request.Context(), session, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment deleted successfully", nil)
}
