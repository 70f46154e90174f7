package dto

type CreateClassRequest struct {
	Name         string  `json:"name" binding:"required,min=2"`
	Subject      string  `json:"subject" binding:"required,min=2"`
	GradeLevel   *string `json:"grade_level"`
	RoomNumber   *string `json:"room_number"`
	Description  *string `json:"description"`
	Schedule     *string `json:"schedule"`
	AcademicYear string  `json:"academic_year"`
	// TeacherID is deliberately absent: ownership is always taken from the
	// authenticated actor, never from the payload.
}

type UpdateClassRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=2"`
	Subject      *string `json:"subject" binding:"omitempty,min=2"`
	GradeLevel   *string `json:"grade_level"`
	RoomNumber   *string `json:"room_number"`
	Description  *string `json:"description"`
	Schedule     *string `json:"schedule"`
	AcademicYear *string `json:"academic_year"`
}
