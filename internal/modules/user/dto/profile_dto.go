package dto

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=2"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
}
