package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"healthcare-booking-server/internal/models"
)

// AppointmentStore handles persistence for appointments.
type AppointmentStore struct {
	db *gorm.DB
}

func NewAppointmentStore(db *gorm.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

// Create checks the doctor's booked slots and inserts in one transaction.
// The doctor row is locked first so concurrent bookings for the same doctor serialize.
func (s *AppointmentStore) Create(ctx context.Context, a *models.Appointment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockDoctor(tx, a.DoctorID); err != nil {
			return err
		}
		taken, err := hasOverlap(tx, a.DoctorID, a.StartTime, a.EndTime, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotUnavailable
		}
		return tx.Create(a).Error
	})
}

// HasOverlap reports whether the doctor has a PENDING or CONFIRMED appointment
// intersecting [start, end), ignoring excludeID.
func (s *AppointmentStore) HasOverlap(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (bool, error) {
	return hasOverlap(s.db.WithContext(ctx), doctorID, start, end, excludeID)
}

func lockDoctor(tx *gorm.DB, doctorID string) error {
	var doctor models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ? AND role = ?", doctorID, models.RoleDoctor).
		First(&doctor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func hasOverlap(tx *gorm.DB, doctorID string, start, end time.Time, excludeID string) (bool, error) {
	q := tx.Model(&models.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Where("status IN ?", models.BookedStatuses).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *AppointmentStore) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AppointmentStore) ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return s.list(ctx, "patient_id = ?", patientID)
}

func (s *AppointmentStore) ListForDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return s.list(ctx, "doctor_id = ?", doctorID)
}

func (s *AppointmentStore) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return s.list(ctx, "")
}

func (s *AppointmentStore) list(ctx context.Context, query string, args ...any) ([]models.Appointment, error) {
	q := s.db.WithContext(ctx).Order("start_time asc")
	if query != "" {
		q = q.Where(query, args...)
	}
	var out []models.Appointment
	err := q.Find(&out).Error
	return out, err
}

// UpdateStatus moves a from its current status to next. Moving into a booked status
// re-runs the overlap check under the doctor lock. ErrStale means the status changed
// since a was read.
func (s *AppointmentStore) UpdateStatus(ctx context.Context, a *models.Appointment, next models.AppointmentStatus, notes *string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if next.IsBooked() && !a.Status.IsBooked() {
			if err := lockDoctor(tx, a.DoctorID); err != nil {
				return err
			}
			taken, err := hasOverlap(tx, a.DoctorID, a.StartTime, a.EndTime, a.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlotUnavailable
			}
		}

		fields := map[string]any{"status": next}
		if notes != nil {
			fields["notes"] = *notes
		}
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", a.ID, a.Status).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStale
		}
		return nil
	})
}

func (s *AppointmentStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
