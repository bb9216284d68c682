package services

import "time"

// VerificationRequestedEvent carries the raw one-time token to the mail sender.
type VerificationRequestedEvent struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	Token     string `json:"token"`
}

// AppointmentEvent is published for create, status change and delete.
type AppointmentEvent struct {
	AppointmentID  string    `json:"appointmentId"`
	PatientID      string    `json:"patientId"`
	DoctorID       string    `json:"doctorId"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	ActorID        string    `json:"actorId"`
}
