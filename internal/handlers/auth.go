package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/middleware"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/utils"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	auth         *services.AuthService
	refreshTTL   time.Duration
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *services.AuthService, refreshTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, refreshTTL: refreshTTL, secureCookie: secureCookie}
}

// LoginResponse represents the response body for signup and login.
// The refresh token travels only in the httpOnly cookie.
type LoginResponse struct {
	AccessToken string               `json:"accessToken"`
	ExpiresAt   time.Time            `json:"expiresAt"`
	User        models.UserSanitized `json:"user"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Signup handles user registration.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupInput
	if !utils.BindJSON(c, &req) {
		return
	}

	res, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if res.PendingVerification {
		utils.Created(c, "Registration successful. Please check your email to verify your account.", gin.H{"user": res.User})
		return
	}

	h.setRefreshCookie(c, res.Tokens.RefreshToken)
	utils.Created(c, "User registered successfully", LoginResponse{
		AccessToken: res.Tokens.AccessToken,
		ExpiresAt:   res.Tokens.AccessExpiresAt,
		User:        res.User,
	})
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginInput
	if !utils.BindJSON(c, &req) {
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setRefreshCookie(c, res.Tokens.RefreshToken)
	utils.Success(c, "Login successful", LoginResponse{
		AccessToken: res.Tokens.AccessToken,
		ExpiresAt:   res.Tokens.AccessExpiresAt,
		User:        res.User,
	})
}

// RefreshToken handles token refresh using the refresh token cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	raw, err := c.Cookie(refreshCookieName)
	if err != nil || raw == "" {
		utils.Unauthorized(c, "Refresh token not found")
		return
	}

	res, err := h.auth.Refresh(c.Request.Context(), raw)
	if err != nil {
		h.clearRefreshCookie(c)
		utils.RespondError(c, err)
		return
	}

	h.setRefreshCookie(c, res.Tokens.RefreshToken)
	utils.Success(c, "Token refreshed successfully", RefreshTokenResponse{
		AccessToken: res.Tokens.AccessToken,
		ExpiresAt:   res.Tokens.AccessExpiresAt,
	})
}

// Logout revokes the refresh token cookie if present and clears it.
func (h *AuthHandler) Logout(c *gin.Context) {
	if raw, err := c.Cookie(refreshCookieName); err == nil {
		h.auth.Logout(c.Request.Context(), raw)
	}
	h.clearRefreshCookie(c)
	utils.Success(c, "Logged out successfully", nil)
}

// VerifyEmail consumes the one-time token sent by email.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	user, err := h.auth.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Email verified successfully. You can now log in.", gin.H{"user": user})
}

// GetProfile returns the authenticated user's account.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	user, err := h.auth.GetProfile(c.Request.Context(), session.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Profile fetched successfully", gin.H{"user": user})
}

// UpdateProfile changes names and role profile fields of the authenticated user.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req services.UpdateProfileInput
	if !utils.BindJSON(c, &req) {
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), session.UserID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Profile updated successfully", gin.H{"user": user})
}

// ChangePassword replaces the password; the refresh cookie is cleared since it was revoked.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req services.ChangePasswordInput
	if !utils.BindJSON(c, &req) {
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), session.UserID, req); err != nil {
		utils.RespondError(c, err)
		return
	}
	h.clearRefreshCookie(c)
	utils.Success(c, "Password changed successfully. Please log in again.", nil)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, int(h.refreshTTL.Seconds()), refreshCookiePath, "", h.secureCookie, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.secureCookie, true)
}

// requireSession reads the identity set by the auth middleware and answers 401 when it is missing.
func requireSession(c *gin.Context) (models.Session, bool) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return models.Session{}, false
	}
	return session, true
}
