package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"healthcare-booking-server/internal/models"
)

// UserStore handles persistence for accounts and their role profiles.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts the account together with whichever role profile is set.
// Profiles are inserted explicitly so a duplicate license number fails the whole write.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(u).Error; err != nil {
			return err
		}
		if u.DoctorProfile != nil {
			u.DoctorProfile.UserID = u.ID
			if err := tx.Create(u.DoctorProfile).Error; err != nil {
				return err
			}
		}
		if u.PatientProfile != nil {
			u.PatientProfile.UserID = u.ID
			if err := tx.Create(u.PatientProfile).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *UserStore) GetByVerificationTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return s.first(ctx, "verification_token_hash = ?", hash)
}

func (s *UserStore) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Preload("DoctorProfile").
		Preload("PatientProfile").
		Where(query, args...).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

// Update writes the given columns of one account.
func (s *UserStore) Update(ctx context.Context, id string, fields map[string]any) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

// SaveProfile updates names and upserts the role profile in one transaction.
func (s *UserStore) SaveProfile(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]any{
			"first_name": u.FirstName,
			"last_name":  u.LastName,
		}).Error; err != nil {
			return err
		}
		if u.DoctorProfile != nil {
			u.DoctorProfile.UserID = u.ID
			if err := tx.Save(u.DoctorProfile).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrDuplicate
				}
				return err
			}
		}
		if u.PatientProfile != nil {
			u.PatientProfile.UserID = u.ID
			if err := tx.Save(u.PatientProfile).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *UserStore) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	return s.Update(ctx, id, map[string]any{"refresh_token_hash": hash})
}

// RotateRefreshTokenHash swaps the stored hash only if it still equals oldHash.
// It reports false when another refresh or a logout got there first.
func (s *UserStore) RotateRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND refresh_token_hash = ?", id, oldHash).
		Update("refresh_token_hash", newHash)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListByRole returns accounts of one role ordered by name.
func (s *UserStore) ListByRole(ctx context.Context, role models.Role, activeOnly bool) ([]models.User, error) {
	q := s.db.WithContext(ctx).Preload("DoctorProfile").Preload("PatientProfile").Where("role = ?", role)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var users []models.User
	err := q.Order("last_name asc, first_name asc").Find(&users).Error
	return users, err
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Preload("DoctorProfile").
		Preload("PatientProfile").
		Order("created_at asc").
		Find(&users).Error
	return users, err
}

// ListPatientsOfDoctor returns the patients that have at least one appointment with doctorID.
func (s *UserStore) ListPatientsOfDoctor(ctx context.Context, doctorID string) ([]models.User, error) {
	db := s.db.WithContext(ctx)
	booked := db.Model(&models.Appointment{}).Select("patient_id").Where("doctor_id = ?", doctorID)
	var users []models.User
	err := db.Preload("PatientProfile").
		Where("role = ? AND id IN (?)", models.RolePatient, booked).
		Order("last_name asc, first_name asc").
		Find(&users).Error
	return users, err
}
