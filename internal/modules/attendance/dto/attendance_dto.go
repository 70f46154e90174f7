package dto

type AttendanceEntry struct {
	StudentID string  `json:"student_id" binding:"required,uuid"`
	Status    string  `json:"status" binding:"required,oneof=present absent late excused"`
	Notes     *string `json:"notes"`
}

type RecordAttendanceRequest struct {
	Date    string            `json:"date" binding:"required,datetime=2006-01-02"`
	Entries []AttendanceEntry `json:"entries" binding:"required,min=1,dive"`
}

type RecordAttendanceResult struct {
	Recorded int `json:"recorded"`
	Updated  int `json:"updated"`
}
