package models

import (
	"strings"
	"time"
)

// Role enum
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalizes a role name from the wire; matching is case-insensitive.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// User represents an account in the system. Role is fixed at creation.
type User struct {
	BaseModel
	Email                 string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash          string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName             string     `gorm:"size:100;not null" json:"firstName"`
	LastName              string     `gorm:"size:100;not null" json:"lastName"`
	Role                  Role       `gorm:"size:20;not null;index" json:"role"`
	Active                bool       `gorm:"not null" json:"active"`
	IsVerified            bool       `gorm:"not null" json:"isVerified"`
	VerificationTokenHash *string    `gorm:"size:64;uniqueIndex" json:"-"`
	RefreshTokenHash      string     `gorm:"size:64;not null" json:"-"`
	PasswordChangedAt     *time.Time `json:"-"`

	// Relations (not always preloaded)
	DoctorProfile  *DoctorProfile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PatientProfile *PatientProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// DoctorProfile holds the doctor-specific side of an account.
type DoctorProfile struct {
	UserID        string    `gorm:"primaryKey;type:varchar(36)" json:"-"`
	Specialty     string    `gorm:"size:100;not null" json:"specialty"`
	LicenseNumber string    `gorm:"size:64;not null;uniqueIndex" json:"licenseNumber"`
	Bio           string    `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// PatientProfile holds the medical side of a patient account.
type PatientProfile struct {
	UserID           string     `gorm:"primaryKey;type:varchar(36)" json:"-"`
	DateOfBirth      *time.Time `gorm:"type:date" json:"dateOfBirth,omitempty"`
	PhoneNumber      string     `gorm:"size:32" json:"phoneNumber,omitempty"`
	BloodType        string     `gorm:"size:8" json:"bloodType,omitempty"`
	Allergies        string     `gorm:"type:text" json:"allergies,omitempty"`
	EmergencyContact string     `gorm:"size:255" json:"emergencyContact,omitempty"`
	CreatedAt        time.Time  `json:"-"`
	UpdatedAt        time.Time  `json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Role           Role            `json:"role"`
	Active         bool            `json:"active"`
	IsVerified     bool            `json:"isVerified"`
	DoctorProfile  *DoctorProfile  `json:"doctorProfile,omitempty"`
	PatientProfile *PatientProfile `json:"patientProfile,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		Active:         u.Active,
		IsVerified:     u.IsVerified,
		DoctorProfile:  u.DoctorProfile,
		PatientProfile: u.PatientProfile,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
