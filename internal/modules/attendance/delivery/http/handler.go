package handler

import (
	"fmt"
	"net/http"

	"anoa.com/akademia/internal/modules/attendance/dto"
	service "anoa.com/akademia/internal/modules/attendance/service"
	commonDto "anoa.com/akademia/pkg/dto"
	"anoa.com/akademia/pkg/response"
	"anoa.com/akademia/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AttendanceHandler struct {
	service service.AttendanceService
}

func NewAttendanceHandler(service service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

func (h *AttendanceHandler) RecordAttendance(c *gin.Context) {
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

	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	result, err := h.service.RecordAttendance(c.Request.Context(), actorID, classID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AttendanceHandler) ListByClass(c *gin.Context) {
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

	var rng commonDto.DateRangeQuery
	if err := c.ShouldBindQuery(&rng); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.service.ListByClass(c.Request.Context(), actorID, classID, rng.From, rng.To)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *AttendanceHandler) MyAttendance(c *gin.Context) {
	studentID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var rng commonDto.DateRangeQuery
	if err := c.ShouldBindQuery(&rng); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.service.MyAttendance(c.Request.Context(), studentID, rng.From, rng.To)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *AttendanceHandler) ExportSheet(c *gin.Context) {
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

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-%s.xlsx", classID))

	if err := h.service.ExportSheet(c.Request.Context(), actorID, classID, c.Writer); err != nil {
		response.ResponseError(c, err)
		return
	}
}
