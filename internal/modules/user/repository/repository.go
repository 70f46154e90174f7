package repository

import (
	"context"

	"anoa.com/akademia/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User, profile *entity.Profile) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindProfileByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	FindProfileByEmail(ctx context.Context, email string) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]any) error
	RolesForUser(ctx context.Context, userID uuid.UUID) ([]entity.RoleAssignment, error)
	AssignRole(ctx context.Context, assignment *entity.RoleAssignment) error
	RevokeRole(ctx context.Context, id uuid.UUID) error
	FindProfilesByRole(ctx context.Context, role string, search string) ([]entity.Profile, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		profile.Email = user.Email
		return tx.Create(profile).Error
	})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Preload("Profile").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindProfileByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) FindProfileByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&entity.Profile{}).Where("id = ?", id).Updates(fields).Error
}

func (r *userRepository) RolesForUser(ctx context.Context, userID uuid.UUID) ([]entity.RoleAssignment, error) {
	var assignments []entity.RoleAssignment
	err := r.db.WithContext(ctx).
		Preload("Organization").
		Where("user_id = ?", userID).
		Find(&assignments).Error
	return assignments, err
}

func (r *userRepository) AssignRole(ctx context.Context, assignment *entity.RoleAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *userRepository) RevokeRole(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.RoleAssignment{}, "id = ?", id).Error
}

// FindProfilesByRole lists the profiles of every user holding role, with an
// optional name filter. This is the "all students" half of the
// available-students lookup.
func (r *userRepository) FindProfilesByRole(ctx context.Context, role string, search string) ([]entity.Profile, error) {
	var profiles []entity.Profile
	query := r.db.WithContext(ctx).
		Joins("JOIN role_assignments ON role_assignments.user_id = profiles.user_id").
		Where("role_assignments.role = ?", role)

	if search != "" {
		query = query.Where("profiles.full_name ILIKE ?", "%"+search+"%")
	}

	if err := query.Order("profiles.full_name asc").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
