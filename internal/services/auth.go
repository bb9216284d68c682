package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"healthcare-booking-server/internal/apperror"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/mq"
	"healthcare-booking-server/internal/store"
	"healthcare-booking-server/internal/utils"
)

const msgNotVerified = "Please verify your email address before logging in. Check your inbox for the verification link."

// AuthService handles signup, login and the refresh token lifecycle.
type AuthService struct {
	users               *store.UserStore
	tokens              *utils.TokenManager
	events              mq.Publisher
	requireVerification bool
	now                 func() time.Time
}

func NewAuthService(users *store.UserStore, tokens *utils.TokenManager, events mq.Publisher, requireVerification bool) *AuthService {
	return &AuthService{
		users:               users,
		tokens:              tokens,
		events:              events,
		requireVerification: requireVerification,
		now:                 time.Now,
	}
}

// SignupInput is the signup payload. Role is matched case-insensitively.
type SignupInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Role      string `json:"role" validate:"required,oneof=PATIENT DOCTOR"`

	Specialty     string `json:"specialty" validate:"required_if=Role DOCTOR,max=100"`
	LicenseNumber string `json:"licenseNumber" validate:"required_if=Role DOCTOR,max=64"`
	Bio           string `json:"bio" validate:"max=2000"`

	DateOfBirth      string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	PhoneNumber      string `json:"phoneNumber" validate:"max=32"`
	BloodType        string `json:"bloodType" validate:"max=8"`
	Allergies        string `json:"allergies" validate:"max=2000"`
	EmergencyContact string `json:"emergencyContact" validate:"max=255"`
}

func (in *SignupInput) normalize() {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	in.Specialty = strings.TrimSpace(in.Specialty)
	in.LicenseNumber = strings.TrimSpace(in.LicenseNumber)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=PATIENT DOCTOR ADMIN"`
}

// AuthResult is returned by signup, login and refresh. Tokens is nil while
// the account waits for email verification.
type AuthResult struct {
	User                models.UserSanitized
	Tokens              *utils.TokenPair
	PendingVerification bool
}

// Signup creates a PATIENT or DOCTOR account with its role profile.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := checkPasswordLength("password", in.Password); err != nil {
		return nil, err
	}
	role, _ := models.ParseRole(in.Role)

	var dob *time.Time
	if in.DateOfBirth != "" {
		d, err := time.Parse(dateLayout, in.DateOfBirth)
		if err != nil {
			return nil, apperror.Validation("dateOfBirth must use the format 2006-01-02")
		}
		if !d.Before(s.now()) {
			return nil, apperror.Validation("dateOfBirth must be in the past")
		}
		dob = &d
	}

	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, apperror.Internal("database error", err)
	}
	if exists {
		return nil, apperror.Conflict("User with this email already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	user := &models.User{
		BaseModel:    models.BaseModel{ID: uuid.NewString()},
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         role,
		Active:       true,
		IsVerified:   !s.requireVerification,
	}
	switch role {
	case models.RoleDoctor:
		user.DoctorProfile = &models.DoctorProfile{
			Specialty:     in.Specialty,
			LicenseNumber: in.LicenseNumber,
			Bio:           in.Bio,
		}
	case models.RolePatient:
		user.PatientProfile = &models.PatientProfile{
			DateOfBirth:      dob,
			PhoneNumber:      in.PhoneNumber,
			BloodType:        in.BloodType,
			Allergies:        in.Allergies,
			EmergencyContact: in.EmergencyContact,
		}
	}

	if s.requireVerification {
		raw, tokenHash, err := utils.NewOpaqueToken()
		if err != nil {
			return nil, apperror.Internal("failed to generate verification token", err)
		}
		user.VerificationTokenHash = &tokenHash
		if err := s.createUser(ctx, user); err != nil {
			return nil, err
		}
		publish(ctx, s.events, mq.ChannelVerificationRequested, VerificationRequestedEvent{
			UserID:    user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			Token:     raw,
		})
		return &AuthResult{User: user.Sanitize(), PendingVerification: true}, nil
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, apperror.Internal("failed to issue tokens", err)
	}
	user.RefreshTokenHash = utils.HashToken(pair.RefreshToken)
	if err := s.createUser(ctx, user); err != nil {
		return nil, err
	}
	return &AuthResult{User: user.Sanitize(), Tokens: pair}, nil
}

func (s *AuthService) createUser(ctx context.Context, user *models.User) error {
	err := s.users.Create(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		return apperror.Conflict("User with this email or license number already exists")
	}
	if err != nil {
		return apperror.Internal("failed to create user", err)
	}
	return nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends one bcrypt comparison so an unknown email costs
// the same as a wrong password.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = utils.HashPassword("not-a-real-password")
	})
	utils.CheckPassword(dummyHash, password)
}

// Login authenticates by email and password. Unknown email and wrong password
// fail with the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		burnPasswordCheck(in.Password)
		return nil, apperror.InvalidCredentials()
	}
	if err != nil {
		return nil, apperror.Internal("database error", err)
	}

	passwordOK := utils.CheckPassword(user.PasswordHash, in.Password)
	if in.Role != "" && models.Role(in.Role) != user.Role {
		return nil, apperror.InvalidCredentials()
	}
	if s.requireVerification && !user.IsVerified {
		return nil, apperror.New(apperror.KindNotVerified, msgNotVerified)
	}
	if !passwordOK {
		return nil, apperror.InvalidCredentials()
	}
	if !user.Active {
		return nil, apperror.New(apperror.KindAccountDisabled, "Account is disabled")
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, apperror.Internal("failed to issue tokens", err)
	}
	if err := s.users.SetRefreshTokenHash(ctx, user.ID, utils.HashToken(pair.RefreshToken)); err != nil {
		return nil, apperror.Internal("failed to store refresh token", err)
	}
	return &AuthResult{User: user.Sanitize(), Tokens: pair}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented token
// must be the one currently stored for the account; using it rotates it.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*AuthResult, error) {
	claims, err := s.tokens.VerifyRefresh(raw)
	if err != nil {
		return nil, apperror.InvalidToken()
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.InvalidToken()
	}
	if err != nil {
		return nil, apperror.Internal("database error", err)
	}

	presented := utils.HashToken(raw)
	if !utils.TokenHashEqual(user.RefreshTokenHash, presented) {
		return nil, apperror.InvalidToken()
	}
	if !user.Active {
		return nil, apperror.New(apperror.KindAccountDisabled, "Account is disabled")
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, apperror.Internal("failed to issue tokens", err)
	}
	rotated, err := s.users.RotateRefreshTokenHash(ctx, user.ID, presented, utils.HashToken(pair.RefreshToken))
	if err != nil {
		return nil, apperror.Internal("failed to store refresh token", err)
	}
	if !rotated {
		return nil, apperror.InvalidToken()
	}
	return &AuthResult{User: user.Sanitize(), Tokens: pair}, nil
}

// Logout revokes the presented refresh token if it is the current one.
// It never fails: an unknown or expired token is already unusable.
func (s *AuthService) Logout(ctx context.Context, raw string) {
	if raw == "" {
		return
	}
	claims, err := s.tokens.VerifyRefresh(raw)
	if err != nil {
		return
	}
	if _, err := s.users.RotateRefreshTokenHash(ctx, claims.UserID, utils.HashToken(raw), ""); err != nil {
		log.Printf("logout: clear refresh token for %s: %v", claims.UserID, err)
	}
}

// VerifyEmail consumes a one-time verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, raw string) (models.UserSanitized, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.UserSanitized{}, apperror.InvalidToken()
	}
	user, err := s.users.GetByVerificationTokenHash(ctx, utils.HashToken(raw))
	if errors.Is(err, store.ErrNotFound) {
		return models.UserSanitized{}, apperror.InvalidToken()
	}
	if err != nil {
		return models.UserSanitized{}, apperror.Internal("database error", err)
	}

	if err := s.users.Update(ctx, user.ID, map[string]any{
		"is_verified":             true,
		"verification_token_hash": nil,
	}); err != nil {
		return models.UserSanitized{}, apperror.Internal("failed to verify email", err)
	}
	user.IsVerified = true
	user.VerificationTokenHash = nil
	return user.Sanitize(), nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (models.UserSanitized, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.UserSanitized{}, storeError(err, "User not found")
	}
	return user.Sanitize(), nil
}

// UpdateProfileInput changes names and role profile fields. Nil fields are left alone;
// fields of the other role's profile are ignored. An empty dateOfBirth clears it.
type UpdateProfileInput struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`

	Specialty     *string `json:"specialty" validate:"omitempty,min=1,max=100"`
	LicenseNumber *string `json:"licenseNumber" validate:"omitempty,min=1,max=64"`
	Bio           *string `json:"bio" validate:"omitempty,max=2000"`

	DateOfBirth      *string `json:"dateOfBirth"`
	PhoneNumber      *string `json:"phoneNumber" validate:"omitempty,max=32"`
	BloodType        *string `json:"bloodType" validate:"omitempty,max=8"`
	Allergies        *string `json:"allergies" validate:"omitempty,max=2000"`
	EmergencyContact *string `json:"emergencyContact" validate:"omitempty,max=255"`
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (models.UserSanitized, error) {
	for _, f := range []*string{in.FirstName, in.LastName, in.Specialty, in.LicenseNumber} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if err := validateInput(in); err != nil {
		return models.UserSanitized{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.UserSanitized{}, storeError(err, "User not found")
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}

	switch user.Role {
	case models.RoleDoctor:
		p := user.DoctorProfile
		if p == nil {
			p = &models.DoctorProfile{}
			user.DoctorProfile = p
		}
		setString(&p.Specialty, in.Specialty)
		setString(&p.LicenseNumber, in.LicenseNumber)
		setString(&p.Bio, in.Bio)
		if p.Specialty == "" || p.LicenseNumber == "" {
			return models.UserSanitized{}, apperror.Validation("specialty and licenseNumber are required for doctors")
		}
	case models.RolePatient:
		p := user.PatientProfile
		if p == nil {
			p = &models.PatientProfile{}
			user.PatientProfile = p
		}
		if in.DateOfBirth != nil {
			if *in.DateOfBirth == "" {
				p.DateOfBirth = nil
			} else {
				d, err := time.Parse(dateLayout, *in.DateOfBirth)
				if err != nil || !d.Before(s.now()) {
					return models.UserSanitized{}, apperror.Validation("dateOfBirth must be a past date in the format 2006-01-02")
				}
				p.DateOfBirth = &d
			}
		}
		setString(&p.PhoneNumber, in.PhoneNumber)
		setString(&p.BloodType, in.BloodType)
		setString(&p.Allergies, in.Allergies)
		setString(&p.EmergencyContact, in.EmergencyContact)
	}

	if err := s.users.SaveProfile(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.UserSanitized{}, apperror.Conflict("License number is already registered")
		}
		return models.UserSanitized{}, apperror.Internal("failed to update profile", err)
	}
	return user.Sanitize(), nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// ChangePassword replaces the password and revokes the stored refresh token.
// Access tokens already issued stay valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if err := checkPasswordLength("newPassword", in.NewPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storeError(err, "User not found")
	}
	if !utils.CheckPassword(user.PasswordHash, in.CurrentPassword) {
		return apperror.InvalidCredentials()
	}

	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return apperror.Internal("failed to hash password", err)
	}
	now := s.now().UTC()
	if err := s.users.Update(ctx, user.ID, map[string]any{
		"password_hash":       hash,
		"password_changed_at": &now,
		"refresh_token_hash":  "",
	}); err != nil {
		return apperror.Internal("failed to change password", err)
	}
	return nil
}
