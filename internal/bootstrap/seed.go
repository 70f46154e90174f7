package bootstrap

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"anoa.com/akademia/internal/entity"
	"anoa.com/akademia/pkg/authz"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Profile{},
		&entity.Organization{},
		&entity.RoleAssignment{},
		&entity.Class{},
		&entity.ClassEnrollment{},
		&entity.Assignment{},
		&entity.Grade{},
		&entity.Attendance{},
		&entity.ParentStudentLink{},
		&entity.Notification{},
	)
}

// SeedOwner provisions the initial system owner so a fresh database has at
// least one account able to create organizations and grant roles.
func SeedOwner(db *gorm.DB) error {
	const ownerEmail = "owner@akademia.local"

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", ownerEmail).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Owner account already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("owner123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		owner := entity.User{
			Email:        ownerEmail,
			PasswordHash: string(hashed),
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		profile := entity.Profile{
			UserID:   owner.ID,
			FullName: "System Owner",
			Email:    ownerEmail,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		assignment := entity.RoleAssignment{
			UserID: owner.ID,
			Role:   string(authz.RoleSystemOwner),
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}

		log.Println("✅ System owner seeded successfully")
		log.Printf("   Email: %s", ownerEmail)
		log.Println("   Password: owner123")
		return nil
	})
}
