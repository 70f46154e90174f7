package handler

import (
	"net/http"

	"anoa.com/akademia/internal/modules/enrollment/dto"
	service "anoa.com/akademia/internal/modules/enrollment/service"
	"anoa.com/akademia/pkg/response"
	"anoa.com/akademia/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EnrollmentHandler struct {
	service service.EnrollmentService
}

func NewEnrollmentHandler(service service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	actorID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	enrollments, err := h.service.ListEnrollments(c.Request.Context(), actorID, classID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollments})
}

func (h *EnrollmentHandler) EnrollStudent(c *gin.Context) {
	actorID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	enrollment, err := h.service.EnrollStudent(c.Request.Context(), actorID, classID, studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

func (h *EnrollmentHandler) UnenrollStudent(c *gin.Context) {
	actorID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	enrollmentID, err := uuid.Parse(c.Param("enrollment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	if err := h.service.UnenrollStudent(c.Request.Context(), actorID, enrollmentID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "student removed from class"})
}

func (h *EnrollmentHandler) AvailableStudents(c *gin.Context) {
	actorID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	students, err := h.service.AvailableStudents(c.Request.Context(), actorID, classID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": students})
}

func (h *EnrollmentHandler) ImportRoster(c *gin.Context) {
	actorID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roster file is required"})
		return
	}
	defer file.Close()

	result, err := h.service.ImportRoster(c.Request.Context(), actorID, classID, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *EnrollmentHandler) MyEnrollments(c *gin.Context) {
	studentID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	enrollments, err := h.service.MyEnrollments(c.Request.Context(), studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollments})
}
