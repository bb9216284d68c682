package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"healthcare-booking-server/internal/apperror"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/mq"
	"healthcare-booking-server/internal/store"
)

// AppointmentService applies booking, ownership and status rules on top of the stores.
type AppointmentService struct {
	appointments *store.AppointmentStore
	users        *store.UserStore
	events       mq.Publisher
	now          func() time.Time
}

func NewAppointmentService(appointments *store.AppointmentStore, users *store.UserStore, events mq.Publisher) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		users:        users,
		events:       events,
		now:          time.Now,
	}
}

// CreateAppointmentInput is the booking payload. PatientID is only read for admins;
// patients always book for themselves.
type CreateAppointmentInput struct {
	PatientID string    `json:"patientId" validate:"omitempty,uuid"`
	DoctorID  string    `json:"doctorId" validate:"required,uuid"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
	Reason    string    `json:"reason" validate:"required,max=255"`
	Notes     string    `json:"notes" validate:"max=2000"`
}

func (s *AppointmentService) Create(ctx context.Context, actor models.Session, in CreateAppointmentInput) (*models.Appointment, error) {
	in.PatientID = strings.TrimSpace(in.PatientID)
	in.DoctorID = strings.TrimSpace(in.DoctorID)
	in.Reason = strings.TrimSpace(in.Reason)

	switch actor.Role {
	case models.RolePatient:
		if in.PatientID != "" && in.PatientID != actor.UserID {
			return nil, apperror.Forbidden("Patients can only book appointments for themselves")
		}
		in.PatientID = actor.UserID
	case models.RoleAdmin:
		if in.PatientID == "" {
			return nil, apperror.Validation("patientId is required")
		}
	default:
		return nil, apperror.Forbidden("Only patients and administrators can book appointments")
	}

	if err := validateInput(in); err != nil {
		return nil, err
	}

	start := in.StartTime.UTC().Truncate(time.Second)
	end := in.EndTime.UTC().Truncate(time.Second)
	if !end.After(start) {
		return nil, apperror.Validation("endTime must be after startTime")
	}
	if !start.After(s.now()) {
		return nil, apperror.Validation("startTime must be in the future")
	}

	doctor, err := s.users.GetByID(ctx, in.DoctorID)
	if err != nil {
		return nil, storeError(err, "Doctor not found")
	}
	if doctor.Role != models.RoleDoctor || !doctor.Active {
		return nil, apperror.NotFound("Doctor not found")
	}
	patient, err := s.users.GetByID(ctx, in.PatientID)
	if err != nil {
		return nil, storeError(err, "Patient not found")
	}
	if patient.Role != models.RolePatient {
		return nil, apperror.NotFound("Patient not found")
	}

	a := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		StartTime: start,
		EndTime:   end,
		Status:    models.StatusPending,
		Reason:    in.Reason,
		Notes:     in.Notes,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, storeError(err, "Doctor not found")
	}

	publish(ctx, s.events, mq.ChannelAppointmentCreated, appointmentEvent(a, "", actor.UserID))
	return a, nil
}

// List returns the appointments visible to actor: their own, or all for admins.
func (s *AppointmentService) List(ctx context.Context, actor models.Session) ([]models.Appointment, error) {
	var (
		out []models.Appointment
		err error
	)
	switch actor.Role {
	case models.RolePatient:
		out, err = s.appointments.ListForPatient(ctx, actor.UserID)
	case models.RoleDoctor:
		out, err = s.appointments.ListForDoctor(ctx, actor.UserID)
	case models.RoleAdmin:
		out, err = s.appointments.ListAll(ctx)
	default:
		return nil, apperror.Forbidden("Access denied")
	}
	if err != nil {
		return nil, apperror.Internal("database error", err)
	}
	if out == nil {
		out = []models.Appointment{}
	}
	return out, nil
}

func (s *AppointmentService) Get(ctx context.Context, actor models.Session, id string) (*models.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Appointment not found")
	}
	if !actor.IsAdmin() && !a.InvolvesUser(actor.UserID) {
		return nil, apperror.Forbidden("You do not have access to this appointment")
	}
	return a, nil
}

type UpdateStatusInput struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateStatus moves an appointment along its status machine. The patient, the doctor
// and admins may do so; moving back into a booked status re-checks the doctor's calendar.
func (s *AppointmentService) UpdateStatus(ctx context.Context, actor models.Session, id string, in UpdateStatusInput) (*models.Appointment, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	next, ok := models.ParseAppointmentStatus(in.Status)
	if !ok {
		return nil, apperror.Validation("status must be one of: PENDING, CONFIRMED, COMPLETED, CANCELLED, RESCHEDULED, NO_SHOW")
	}

	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Appointment not found")
	}
	if !actor.IsAdmin() && !a.InvolvesUser(actor.UserID) {
		return nil, apperror.Forbidden("You are not allowed to update this appointment")
	}
	if !a.Status.CanTransitionTo(next) {
		return nil, apperror.Validation(fmt.Sprintf("Cannot change status from %s to %s", a.Status, next))
	}

	if err := s.appointments.UpdateStatus(ctx, a, next, in.Notes); err != nil {
		return nil, storeError(err, "Appointment not found")
	}

	prev := a.Status
	a.Status = next
	if in.Notes != nil {
		a.Notes = *in.Notes
	}
	publish(ctx, s.events, mq.ChannelAppointmentStatusChanged, appointmentEvent(a, prev, actor.UserID))
	return a, nil
}

// Delete removes an appointment. Only the owning patient or an admin may delete;
// doctors cancel through a status change instead.
func (s *AppointmentService) Delete(ctx context.Context, actor models.Session, id string) error {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "Appointment not found")
	}
	owner := actor.Role == models.RolePatient && a.PatientID == actor.UserID
	if !owner && !actor.IsAdmin() {
		return apperror.Forbidden("You are not allowed to delete this appointment")
	}

	if err := s.appointments.Delete(ctx, a.ID); err != nil {
		return storeError(err, "Appointment not found")
	}
	publish(ctx, s.events, mq.ChannelAppointmentDeleted, appointmentEvent(a, "", actor.UserID))
	return nil
}

func appointmentEvent(a *models.Appointment, prev models.AppointmentStatus, actorID string) AppointmentEvent {
	return AppointmentEvent{
		AppointmentID:  a.ID,
		PatientID:      a.PatientID,
		DoctorID:       a.DoctorID,
		StartTime:      a.StartTime,
		EndTime:        a.EndTime,
		Status:         string(a.Status),
		PreviousStatus: string(prev),
		ActorID:        actorID,
	}
}
