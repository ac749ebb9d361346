package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"time"

	"equipcert/internal/checklist"
	"equipcert/internal/models"
	"equipcert/internal/monitoring"
	"equipcert/internal/submission"

	"github.com/gin-gonic/gin"
)

// AnalyzeRequest mirrors the mobile client's capture payload: the
// photo travels as a base64 string because form uploads are not
// reliable on every deployment target
type AnalyzeRequest struct {
	Image    string `json:"image" binding:"required"`
	MimeType string `json:"mimeType" binding:"required"`
}

// AnalyzePhoto identifies the equipment in a captured photo
func (s *Server) AnalyzePhoto(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image or mimeType provided"})
		return
	}

	imageBytes, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is not valid base64"})
		return
	}

	start := time.Now()
	identification, err := s.identifier.Identify(c.Request.Context(), imageBytes, req.MimeType)
	elapsed := time.Since(start)
	monitoring.ObserveIdentification(elapsed, err)
	s.monitor.RecordIdentification(err == nil, elapsed)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze image"})
		return
	}

	c.JSON(http.StatusOK, identification)
}

// GetChecklist returns the inspection checklist for an equipment name
func (s *Server) GetChecklist(c *gin.Context) {
	equipment := c.Query("equipment")
	if equipment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "equipment query parameter is required"})
		return
	}

	items, err := s.checklists.FetchChecklist(c.Request.Context(), equipment)
	if err != nil {
		monitoring.ObserveChecklistFetchFailure()
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"equipmentName": equipment, "items": items})
}

// SubmitRequest carries a finished inspection session
type SubmitRequest struct {
	EquipmentName string                 `json:"equipment_name" binding:"required"`
	InspectorName string                 `json:"inspector_name" binding:"required"`
	Mode          string                 `json:"mode"`
	Checklist     []models.ChecklistItem `json:"checklist" binding:"required"`
	Photo         string                 `json:"photo"`
	PhotoMimeType string                 `json:"photo_mime_type"`
}

// SubmitInspection persists a completed inspection
func (s *Server) SubmitInspection(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := models.InspectionMode(req.Mode)
	if mode != models.ModeAIAssisted {
		mode = models.ModeManual
	}

	session := checklist.NewSession(req.InspectorName, mode)
	session.EquipmentName = req.EquipmentName
	session.LoadItems(req.Checklist)

	if req.Photo != "" {
		photoBytes, err := base64.StdEncoding.DecodeString(req.Photo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Photo is not valid base64"})
			return
		}
		session.AttachPhoto(photoBytes, req.PhotoMimeType)
	}

	inspection, err := s.submissions.Submit(c.Request.Context(), session)
	if err != nil {
		s.submitError(c, err)
		return
	}

	s.monitor.RecordSubmission(inspection.Status)
	monitoring.ObserveSubmission(inspection.Status)
	s.hub.Broadcast(InspectionEvent{
		ID:            inspection.ID,
		EquipmentName: inspection.EquipmentName,
		InspectorName: inspection.InspectorName,
		Status:        inspection.Status,
		PhotoURL:      inspection.PhotoURL,
		CreatedAt:     inspection.CreatedAt,
	})

	c.JSON(http.StatusCreated, gin.H{
		"id":        inspection.ID,
		"status":    inspection.Status,
		"photo_url": inspection.PhotoURL,
	})
}

// submitError maps submission failures onto HTTP statuses
func (s *Server) submitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, submission.ErrIncomplete):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, submission.ErrInFlight):
		monitoring.ObserveSubmissionFailure("in_flight")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, submission.ErrUpload):
		monitoring.ObserveSubmissionFailure("upload")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		monitoring.ObserveSubmissionFailure("persistence")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ListInspections returns recent inspection records for the dashboard
// table, newest first
func (s *Server) ListInspections(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	inspector := c.Query("inspector")

	inspections, err := s.store.ListInspections(c.Request.Context(), limit, inspector)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, inspections)
}

// GetStats returns the dashboard stat card counts
func (s *Server) GetStats(c *gin.Context) {
	stats, err := s.store.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetMetrics returns the operational metrics snapshot
func (s *Server) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.GetMetrics())
}
