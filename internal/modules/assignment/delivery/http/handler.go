package handler

import (
	"net/http"

	"anoa.com/akademia/internal/modules/assignment/dto"
	service "anoa.com/akademia/internal/modules/assignment/service"
	"anoa.com/akademia/pkg/response"
	"anoa.com/akademia/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AssignmentHandler struct {
	service service.AssignmentService
}

func NewAssignmentHandler(service service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
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

	assignments, err := h.service.ListAssignments(c.Request.Context(), actorID, classID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
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

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	assignment, err := h.service.CreateAssignment(c.Request.Context(), actorID, classID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
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

	if err := h.service.DeleteAssignment(c.Request.Context(), actorID, assignmentID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "assignment deleted"})
}
