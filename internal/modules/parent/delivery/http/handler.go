package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"anoa.com/akademia/internal/modules/parent/dto"
	service "anoa.com/akademia/internal/modules/parent/service"
	commonDto "anoa.com/akademia/pkg/dto"
	"anoa.com/akademia/pkg/response"
	"anoa.com/akademia/pkg/validator"
)

type ParentHandler struct {
	service service.ParentService
}

func NewParentHandler(service service.ParentService) *ParentHandler {
	return &ParentHandler{service: service}
}

func (h *ParentHandler) CreateLink(c *gin.Context) {
	var req dto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	link, err := h.service.CreateLink(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

func (h *ParentHandler) DeleteLink(c *gin.Context) {
	linkID, err := uuid.Parse(c.Param("link_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	if err := h.service.DeleteLink(c.Request.Context(), linkID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "link removed successfully"})
}

func (h *ParentHandler) MyChildren(c *gin.Context) {
	parentID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	links, err := h.service.MyChildren(c.Request.Context(), parentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": links})
}

func (h *ParentHandler) ChildEnrollments(c *gin.Context) {
	parentID, studentID, ok := h.bindChild(c)
	if !ok {
		return
	}

	enrollments, err := h.service.ChildEnrollments(c.Request.Context(), parentID, studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollments})
}

func (h *ParentHandler) ChildGrades(c *gin.Context) {
	parentID, studentID, ok := h.bindChild(c)
	if !ok {
		return
	}

	grades, err := h.service.ChildGrades(c.Request.Context(), parentID, studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": grades})
}

func (h *ParentHandler) ChildAttendance(c *gin.Context) {
	parentID, studentID, ok := h.bindChild(c)
	if !ok {
		return
	}

	var rng commonDto.DateRangeQuery
	if err := c.ShouldBindQuery(&rng); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range, expected YYYY-MM-DD"})
		return
	}

	records, err := h.service.ChildAttendance(c.Request.Context(), parentID, studentID, rng.From, rng.To)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *ParentHandler) bindChild(c *gin.Context) (parentID, studentID uuid.UUID, ok bool) {
	parentID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}

	studentID, err = uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return uuid.Nil, uuid.Nil, false
	}

	return parentID, studentID, true
}
