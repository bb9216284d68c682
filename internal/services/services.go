// Package services holds the authentication, account and appointment use-cases.
// Every error returned from this package is an *apperror.Error.
package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"healthcare-booking-server/internal/apperror"
	"healthcare-booking-server/internal/mq"
	"healthcare-booking-server/internal/store"
	"healthcare-booking-server/internal/utils"
)

const dateLayout = "2006-01-02"

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

func validateInput(in any) error {
	if err := utils.Validate(in); err != nil {
		return apperror.Validation(utils.FormatValidationError(err))
	}
	return nil
}

func checkPasswordLength(field, password string) error {
	if len(password) > maxPasswordBytes {
		return apperror.Validation(field + " must be at most 72 bytes")
	}
	return nil
}

// storeError classifies an error coming out of the store package.
func storeError(err error, notFound string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, store.ErrSlotUnavailable):
		return apperror.New(apperror.KindSlotUnavailable, "Doctor is not available at this time")
	case errors.Is(err, store.ErrStale):
		return apperror.Conflict("Appointment was modified by another request, reload and retry")
	default:
		return apperror.Internal("database error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// publish sends an event after the write it describes has committed.
// Failures are logged and never reach the caller.
func publish(ctx context.Context, p mq.Publisher, channel string, payload any) {
	if p == nil {
		return
	}
	if _, err := mq.PublishJSON(ctx, p, channel, payload); err != nil {
		log.Printf("publish %s failed: %v", channel, err)
	}
}
