package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/handlers"
	"healthcare-booking-server/internal/middleware"
	"healthcare-booking-server/internal/models"
)

// Dependencies are the handlers and guards the router is built from.
type Dependencies struct {
	Tokens       middleware.AccessVerifier
	Limiter      *middleware.RateLimiter
	Auth         *handlers.AuthHandler
	Users        *handlers.UserHandler
	Appointments *handlers.AppointmentHandler
	Chat         *handlers.ChatHandler
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	limited := []gin.HandlerFunc{}
	if deps.Limiter != nil {
		limited = append(limited, deps.Limiter.Middleware())
	}
	withLimit := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, limited...), h)
	}

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/signup", withLimit(deps.Auth.Signup)...)
			authRoutes.POST("/login", withLimit(deps.Auth.Login)...)
			authRoutes.POST("/refresh", withLimit(deps.Auth.RefreshToken)...)
			authRoutes.POST("/logout", deps.Auth.Logout)
			authRoutes.GET("/verify-email", deps.Auth.VerifyEmail)
		}
		public.POST("/chat", deps.Chat.Chat)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.GET("/profile", deps.Auth.GetProfile)
			authRoutesPrivate.GET("/me", deps.Auth.GetProfile)
			authRoutesPrivate.PUT("/profile", deps.Auth.UpdateProfile)
			authRoutesPrivate.PATCH("/password", deps.Auth.ChangePassword)
		}

		private.GET("/doctors", deps.Users.GetDoctors)

		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/doctors", deps.Users.GetDoctors)
			userRoutes.GET("/doctor-patients", middleware.RequireRoles(models.RoleDoctor, models.RoleAdmin), deps.Users.GetDoctorPatients)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RequireRoles(models.RoleAdmin))
			{
				adminRoutes.GET("", deps.Users.GetUsers)
				adminRoutes.GET("/:id", deps.Users.GetUserByID)
				adminRoutes.PATCH("/:id/active", deps.Users.SetActive)
			}
		}

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RequireRoles(models.RolePatient, models.RoleAdmin), deps.Appointments.CreateAppointment)
			appointmentRoutes.GET("", deps.Appointments.GetAppointmentsForUser)
			// ownership is checked by the service for the routes below
			appointmentRoutes.GET("/:id", deps.Appointments.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", deps.Appointments.UpdateAppointmentStatus)
			appointmentRoutes.DELETE("/:id", deps.Appointments.DeleteAppointment)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
