package database

import (
	"context"
	"time"

	"equipcert/internal/models"

	"github.com/jinzhu/gorm"
)

// InspectionRepo provides append-only access to inspection records
type InspectionRepo struct {
	db *gorm.DB
}

// NewInspectionRepo creates a repository bound to the given connection
func NewInspectionRepo(db *gorm.DB) *InspectionRepo {
	return &InspectionRepo{db: db}
}

// SaveInspection inserts a new inspection record
func (r *InspectionRepo) SaveInspection(ctx context.Context, inspection *models.Inspection) error {
	return r.db.Create(inspection).Error
}

// ListInspections returns the most recent inspections, newest first.
// An empty inspector returns records for everyone.
func (r *InspectionRepo) ListInspections(ctx context.Context, limit int, inspector string) ([]models.Inspection, error) {
	if limit <= 0 {
		limit = 50
	}

	query := r.db.Order("created_at desc").Limit(limit)
	if inspector != "" {
		query = query.Where("inspector_name = ?", inspector)
	}

	var inspections []models.Inspection
	if err := query.Find(&inspections).Error; err != nil {
		return nil, err
	}

	// Rehydrate checklist snapshots for API consumers
	for i := range inspections {
		if _, err := inspections[i].GetChecklist(); err != nil {
			return nil, err
		}
	}

	return inspections, nil
}

// Stats summarizes inspection counts for the dashboard stat cards
type Stats struct {
	Total          int64 `json:"total"`
	Safe           int64 `json:"safe"`
	ActionRequired int64 `json:"action_required"`
	Today          int64 `json:"today"`
}

// GetStats computes the dashboard summary counts
func (r *InspectionRepo) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats

	if err := r.db.Model(&models.Inspection{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Inspection{}).
		Where("status = ?", string(models.InspectionStatusSafe)).
		Count(&stats.Safe).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Inspection{}).
		Where("status = ?", string(models.InspectionStatusActionRequired)).
		Count(&stats.ActionRequired).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := r.db.Model(&models.Inspection{}).
		Where("created_at >= ?", startOfDay).
		Count(&stats.Today).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
