package handler

import (
	"net/http"

	"anoa.com/akademia/internal/modules/grade/dto"
	service "anoa.com/akademia/internal/modules/grade/service"
	"anoa.com/akademia/pkg/response"
	"anoa.com/akademia/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GradeHandler struct {
	service service.GradeService
}

func NewGradeHandler(service service.GradeService) *GradeHandler {
	return &GradeHandler{service: service}
}

func (h *GradeHandler) UpsertGrade(c *gin.Context) {
	actorID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	var req dto.UpsertGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	grade, err := h.service.UpsertGrade(c.Request.Context(), actorID, assignmentID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, grade)
}

func (h *GradeHandler) ListByAssignment(c *gin.Context) {
	actorID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	grades, err := h.service.ListByAssignment(c.Request.Context(), actorID, assignmentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": grades})
}

func (h *GradeHandler) MyGrades(c *gin.Context) {
	studentID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	grades, err := h.service.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": grades})
}
