package utils

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/apperror"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, ResponseData{Status: StatusSuccess, Message: message, Data: data})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, ResponseData{Status: StatusSuccess, Message: message, Data: data})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ResponseData{Status: StatusError, Message: message})
}

// Abort sends an error response and stops the handler chain.
func Abort(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ResponseData{Status: StatusError, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// RespondError maps a service error onto the envelope. Unclassified and internal errors
// become a generic 500; the cause is only echoed back when gin runs in debug mode.
func RespondError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
		Error(c, appErr.Kind.HTTPStatus(), appErr.Message)
		return
	}

	log.Printf("internal error on %s %s: %v", c.Request.Method, c.FullPath(), err)
	resp := ResponseData{Status: StatusError, Message: "Internal server error"}
	if gin.IsDebugging() {
		resp.Detail = err.Error()
	}
	c.JSON(http.StatusInternalServerError, resp)
}
