package dto

type CreateOrganizationRequest struct {
	Name     string  `json:"name" binding:"required,min=2"`
	Category string  `json:"category" binding:"required,oneof=college school coaching institute training"`
	LogoURL  *string `json:"logo_url"`
}

type UpdateOrganizationRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2"`
	Category *string `json:"category" binding:"omitempty,oneof=college school coaching institute training"`
	LogoURL  *string `json:"logo_url"`
}
