package api

import (
	"context"
	"net/http"

	"equipcert/internal/checklist"
	"equipcert/internal/database"
	"equipcert/internal/identify"
	"equipcert/internal/models"
	"equipcert/internal/monitoring"

	"github.com/gin-gonic/gin"
)

// Identifier resolves an equipment name from a captured photo
type Identifier interface {
	Identify(ctx context.Context, imageBytes []byte, mimeType string) (*identify.Identification, error)
}

// ChecklistFetcher retrieves the checklist for an equipment name
type ChecklistFetcher interface {
	FetchChecklist(ctx context.Context, equipmentName string) ([]models.ChecklistItem, error)
}

// Submitter persists a finished inspection session
type Submitter interface {
	Submit(ctx context.Context, session *checklist.Session) (*models.Inspection, error)
}

// InspectionStore reads back persisted inspection records
type InspectionStore interface {
	ListInspections(ctx context.Context, limit int, inspector string) ([]models.Inspection, error)
	GetStats(ctx context.Context) (*database.Stats, error)
}

// Server represents the main API handler for the inspection service
type Server struct {
	Router *gin.Engine

	identifier  Identifier
	checklists  ChecklistFetcher
	submissions Submitter
	store       InspectionStore
	monitor     *monitoring.Monitor
	hub         *Hub

	authEnabled bool
	jwtSecret   string
}

// NewServer creates a new inspection API instance
func NewServer(identifier Identifier, checklists ChecklistFetcher, submissions Submitter, store InspectionStore, monitor *monitoring.Monitor) *Server {
	server := &Server{
		Router:      gin.Default(),
		identifier:  identifier,
		checklists:  checklists,
		submissions: submissions,
		store:       store,
		monitor:     monitor,
		hub:         NewHub(),
	}

	server.setupRoutes()
	return server
}

// EnableAuth turns on JWT verification for manager endpoints
func (s *Server) EnableAuth(secret string) {
	s.authEnabled = true
	s.jwtSecret = secret
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "EquipCert API is running"})
	})

	// Live inspection feed for the manager dashboard
	s.Router.GET("/ws", s.handleWebSocket)

	v1 := s.Router.Group("/api/v1")
	{
		// Technician workflow
		v1.POST("/analyze", s.AnalyzePhoto)
		v1.GET("/checklists", s.GetChecklist)
		v1.POST("/inspections", s.SubmitInspection)

		// Manager dashboard
		manager := v1.Group("/")
		manager.Use(s.requireManagerAuth())
		manager.GET("/inspections", s.ListInspections)
		manager.GET("/inspections/stats", s.GetStats)

		// Operational metrics snapshot
		v1.GET("/metrics", s.GetMetrics)
	}
}
