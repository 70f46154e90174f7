package dto

import (
	"time"

	"github.com/google/uuid"
)

// ProfileSummary is the minimal profile projection embedded into joined
// responses (enrollment rosters, grade lists). Join results are always
// mapped into this explicit type at the data-access boundary, never passed
// along as loose maps.
type ProfileSummary struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

type PageQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}

func (p PageQuery) Offset() int {
	return (p.Page - 1) * p.Limit
}

type IDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type DateRangeQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}
