package dto

import (
	"anoa.com/akademia/internal/entity"
	"anoa.com/akademia/pkg/authz"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	Profile     *entity.Profile `json:"profile"`
	Roles       []authz.Role    `json:"roles"`
}

type MeResponse struct {
	Profile      *entity.Profile         `json:"profile"`
	Roles        []authz.Role            `json:"roles"`
	Organization *entity.Organization    `json:"organization,omitempty"`
	Assignments  []entity.RoleAssignment `json:"role_assignments"`
}

type AssignRoleRequest struct {
	UserID         string `json:"user_id" binding:"required,uuid"`
	Role           string `json:"role" binding:"required"`
	OrganizationID string `json:"organization_id" binding:"omitempty,uuid"`
}

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,min=2"`
	Role     string `json:"role" binding:"required"`
	Phone    string `json:"phone" binding:"omitempty"`
}
