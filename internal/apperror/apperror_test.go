package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindInvalidCredentials, http.StatusUnauthorized},
		{KindNotVerified, http.StatusUnauthorized},
		{KindAccountDisabled, http.StatusUnauthorized},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindInvalidToken, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindSlotUnavailable, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.kind.HTTPStatus(); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("create appointment: %w", New(KindSlotUnavailable, "slot taken"))
	if got := KindOf(err); got != KindSlotUnavailable {
		t.Errorf("KindOf = %s", got)
	}
	if !Is(err, KindSlotUnavailable) {
		t.Error("Is should see through wrapping")
	}
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Errorf("unclassified error kind = %s", got)
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to load user", cause)
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
	if err.Message != "failed to load user" {
		t.Errorf("message = %q", err.Message)
	}
}
