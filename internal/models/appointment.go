package models

import (
	"strings"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "PENDING"
	StatusConfirmed   AppointmentStatus = "CONFIRMED"
	StatusCompleted   AppointmentStatus = "COMPLETED"
	StatusCancelled   AppointmentStatus = "CANCELLED"
	StatusRescheduled AppointmentStatus = "RESCHEDULED"
	StatusNoShow      AppointmentStatus = "NO_SHOW"
)

// BookedStatuses hold a doctor's time slot.
var BookedStatuses = []AppointmentStatus{StatusPending, StatusConfirmed}

var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:     {StatusConfirmed, StatusCancelled, StatusRescheduled},
	StatusConfirmed:   {StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled},
	StatusRescheduled: {StatusPending, StatusConfirmed, StatusCancelled},
}

func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	st := AppointmentStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRescheduled, StatusNoShow:
		return st, true
	}
	return st, false
}

func (s AppointmentStatus) IsBooked() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether no further transition is allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment represents a scheduled medical appointment
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"type:varchar(36);not null;index" json:"patientId"`
	DoctorID  string            `gorm:"type:varchar(36);not null;index:idx_appointments_doctor_start" json:"doctorId"`
	StartTime time.Time         `gorm:"not null;index:idx_appointments_doctor_start" json:"startTime"`
	EndTime   time.Time         `gorm:"not null" json:"endTime"`
	Status    AppointmentStatus `gorm:"size:20;not null" json:"status"`
	Reason    string            `gorm:"size:255;not null" json:"reason"`
	Notes     string            `gorm:"type:text" json:"notes,omitempty"`

	// Relations
	Patient *User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"-"`
}

// Overlaps applies the half-open interval test against [start, end).
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}

// InvolvesUser reports whether userID is the patient or the doctor of the appointment.
func (a *Appointment) InvolvesUser(userID string) bool {
	return a.PatientID == userID || a.DoctorID == userID
}
