package handlers

import (
	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/utils"
)

// UserHandler handles user related requests.
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetUsers handles fetching all users (admin).
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Users fetched successfully", users)
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "User fetched successfully", user)
}

// SetActiveRequest represents the request body for enabling or disabling an account.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// SetActive soft-disables or re-enables an account (admin). Accounts are never hard-deleted.
func (h *UserHandler) SetActive(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req SetActiveRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if req.Active == nil {
		utils.BadRequest(c, "active is required")
		return
	}

	user, err := h.users.SetActive(c.Request.Context(), session, c.Param("id"), *req.Active)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "User updated successfully", user)
}

// GetDoctors handles fetching active doctors.
// This endpoint is accessible to patients for booking appointments.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	doctors, err := h.users.ListDoctors(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetDoctorPatients lists the caller's patients for doctors and every patient for admins.
func (h *UserHandler) GetDoctorPatients(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	patients, err := h.users.ListPatients(c.Request.Context(), session)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}
