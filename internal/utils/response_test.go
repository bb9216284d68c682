package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func runRespondError(t *testing.T, err error) (*httptest.ResponseRecorder, ResponseData) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	RespondError(c, err)

	var body ResponseData
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return w, body
}

func TestRespondErrorClassified(t *testing.T) {
	w, body := runRespondError(t, apperror.New(apperror.KindSlotUnavailable, "slot taken"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("code = %d", w.Code)
	}
	if body.Status != StatusError || body.Message != "slot taken" {
		t.Errorf("body = %+v", body)
	}
}

func TestRespondErrorHidesDriverMessage(t *testing.T) {
	w, body := runRespondError(t, apperror.Internal("failed to load", errors.New("dial tcp 10.0.0.1:3306: refused")))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("code = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "10.0.0.1") || body.Detail != "" {
		t.Errorf("internal detail leaked: %s", w.Body.String())
	}
}

func TestFormatValidationError(t *testing.T) {
	type input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"min=8"`
	}
	err := Validate(input{Email: "nope", Password: "short"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := FormatValidationError(err)
	for _, want := range []string{"email must be a valid email address", "password must be at least 8 characters"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
