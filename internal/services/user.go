package services

import (
	"context"
	"errors"
	"strings"

	"healthcare-booking-server/internal/apperror"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
	"healthcare-booking-server/internal/utils"
)

// UserService covers the account operations that are not part of authentication.
type UserService struct {
	users *store.UserStore
}

func NewUserService(users *store.UserStore) *UserService {
	return &UserService{users: users}
}

// ListDoctors returns active doctors with their profiles.
func (s *UserService) ListDoctors(ctx context.Context) ([]models.UserSanitized, error) {
	users, err := s.users.ListByRole(ctx, models.RoleDoctor, true)
	if err != nil {
		return nil, apperror.Internal("database error", err)
	}
	return sanitizeAll(users), nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.UserSanitized, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperror.Internal("database error", err)
	}
	return sanitizeAll(users), nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (models.UserSanitized, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.UserSanitized{}, storeError(err, "User not found")
	}
	return user.Sanitize(), nil
}

// ListPatients returns the patients a doctor has appointments with, or every patient for admins.
func (s *UserService) ListPatients(ctx context.Context, actor models.Session) ([]models.UserSanitized, error) {
	var (
		users []models.User
		err   error
	)
	switch actor.Role {
	case models.RoleDoctor:
		users, err = s.users.ListPatientsOfDoctor(ctx, actor.UserID)
	case models.RoleAdmin:
		users, err = s.users.ListByRole(ctx, models.RolePatient, false)
	default:
		return nil, apperror.Forbidden("Only doctors and admins can view patient lists")
	}
	if err != nil {
		return nil, apperror.Internal("database error", err)
	}
	return sanitizeAll(users), nil
}

func sanitizeAll(users []models.User) []models.UserSanitized {
	out := make([]models.UserSanitized, 0, len(users))
	for i := range users {
		out = append(out, users[i].Sanitize())
	}
	return out
}

// SetActive enables or disables an account. Disabling revokes its refresh token,
// so the account is locked out once its current access token expires.
func (s *UserService) SetActive(ctx context.Context, actor models.Session, userID string, active bool) (models.UserSanitized, error) {
	if !actor.IsAdmin() {
		return models.UserSanitized{}, apperror.Forbidden("Only administrators can change account status")
	}
	if userID == actor.UserID && !active {
		return models.UserSanitized{}, apperror.Validation("You cannot deactivate your own account")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.UserSanitized{}, storeError(err, "User not found")
	}

	fields := map[string]any{"active": active}
	if !active {
		fields["refresh_token_hash"] = ""
	}
	if err := s.users.Update(ctx, user.ID, fields); err != nil {
		return models.UserSanitized{}, apperror.Internal("failed to update user", err)
	}
	user.Active = active
	return user.Sanitize(), nil
}

type CreateAdminInput struct {
	Email     string `validate:"required,email,max=255"`
	Password  string `validate:"required,min=8"`
	FirstName string `validate:"required,max=100"`
	LastName  string `validate:"required,max=100"`
}

// CreateAdmin provisions an administrator. Admin accounts cannot sign up over HTTP.
func (s *UserService) CreateAdmin(ctx context.Context, in CreateAdminInput) (models.UserSanitized, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validateInput(in); err != nil {
		return models.UserSanitized{}, err
	}
	if err := checkPasswordLength("Password", in.Password); err != nil {
		return models.UserSanitized{}, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return models.UserSanitized{}, apperror.Internal("failed to hash password", err)
	}
	user := &models.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         models.RoleAdmin,
		Active:       true,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.UserSanitized{}, apperror.Conflict("User with this email already exists")
		}
		return models.UserSanitized{}, apperror.Internal("failed to create admin", err)
	}
	return user.Sanitize(), nil
}
