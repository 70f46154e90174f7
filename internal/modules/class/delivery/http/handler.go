package handler

import (
	"net/http"

	"anoa.com/akademia/internal/modules/class/dto"
	service "anoa.com/akademia/internal/modules/class/service"
	"anoa.com/akademia/pkg/response"
	"anoa.com/akademia/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClassHandler struct {
	service service.ClassService
}

func NewClassHandler(service service.ClassService) *ClassHandler {
	return &ClassHandler{service: service}
}

func (h *ClassHandler) ListClasses(c *gin.Context) {
	teacherID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	classes, err := h.service.ListClasses(c.Request.Context(), teacherID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": classes})
}

func (h *ClassHandler) GetClass(c *gin.Context) {
	teacherID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	class, err := h.service.GetClass(c.Request.Context(), teacherID, classID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

func (h *ClassHandler) CreateClass(c *gin.Context) {
	teacherID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	class, err := h.service.CreateClass(c.Request.Context(), teacherID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, class)
}

func (h *ClassHandler) UpdateClass(c *gin.Context) {
	teacherID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.UpdateClass(c.Request.Context(), teacherID, classID, req); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "class updated successfully"})
}

func (h *ClassHandler) DeleteClass(c *gin.Context) {
	teacherID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	if err := h.service.DeleteClass(c.Request.Context(), teacherID, classID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "class deleted successfully"})
}
