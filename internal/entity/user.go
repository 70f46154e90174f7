package entity

import (
	"time"

	"anoa.com/akademia/pkg/authz"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the credential record. Everything domain-facing hangs off the
// Profile instead: classes, enrollments and grades all reference profile ids.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	Profile      *Profile  `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	FullName  string    `gorm:"size:100;not null" json:"full_name"`
	Email     string    `gorm:"size:100;not null" json:"email"`
	AvatarURL *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	Phone     *string   `gorm:"size:30" json:"phone,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// RoleAssignment grants one role to a user, optionally scoped to an
// organization. A user's effective role set is the collection of all their
// assignments; authorization checks always run against the whole set.
type RoleAssignment struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID     `gorm:"type:uuid;index:idx_user_role,unique;not null" json:"user_id"`
	Role           string        `gorm:"size:30;index:idx_user_role,unique;not null" json:"role"`
	OrganizationID *uuid.UUID    `gorm:"type:uuid" json:"organization_id,omitempty"`
	Organization   *Organization `gorm:"constraint:OnDelete:SET NULL" json:"organization,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (a *RoleAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if _, err := authz.ParseRole(a.Role); err != nil {
		return err
	}
	return nil
}

// RoleSetOf collapses role assignments into the typed set used by the
// authorization predicate. Rows carrying an unknown role string (e.g. after
// a bad manual migration) are skipped rather than trusted.
func RoleSetOf(assignments []RoleAssignment) authz.RoleSet {
	set := authz.RoleSet{}
	for _, a := range assignments {
		if r, err := authz.ParseRole(a.Role); err == nil {
			set[r] = struct{}{}
		}
	}
	return set
}
