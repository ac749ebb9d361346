package models

import (
	"encoding/json"

	"github.com/jinzhu/gorm"
)

// Inspection represents a persisted, immutable inspection record.
// Records are append-only: the application inserts them and reads them
// back for the dashboard, never updates or deletes.
type Inspection struct {
	gorm.Model
	EquipmentName string
	InspectorName string
	ChecklistJSON string `gorm:"type:text"`
	Status        string
	PhotoURL      string
	// Transient fields (ignored by GORM)
	Checklist []ChecklistItem `gorm:"-"`
}

// TableName sets the table name for Inspection
func (Inspection) TableName() string {
	return "inspections"
}

// GetChecklist returns the deserialized checklist snapshot
func (i *Inspection) GetChecklist() ([]ChecklistItem, error) {
	if len(i.Checklist) > 0 {
		return i.Checklist, nil
	}
	var items []ChecklistItem
	if i.ChecklistJSON == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(i.ChecklistJSON), &items); err != nil {
		return nil, err
	}
	i.Checklist = items
	return items, nil
}

// SetChecklist serializes the checklist snapshot for storage
func (i *Inspection) SetChecklist(items []ChecklistItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	i.ChecklistJSON = string(data)
	i.Checklist = items
	return nil
}

// InspectionStatus represents the overall outcome of an inspection
type InspectionStatus string

const (
	// Overall inspection statuses
	InspectionStatusSafe           InspectionStatus = "Safe"
	InspectionStatusActionRequired InspectionStatus = "Action Required"
)

// InspectionMode represents the workflow variant for a session
type InspectionMode string

const (
	// Workflow modes
	ModeManual     InspectionMode = "manual"
	ModeAIAssisted InspectionMode = "ai_assisted"
)
