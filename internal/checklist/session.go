package checklist

import (
	"fmt"

	"equipcert/internal/models"
)

// Session holds the in-memory state of one inspection: the equipment
// being inspected, the loaded checklist, and the optional photo. A
// session lives for the duration of one inspection and is discarded
// after submission or abandonment. Sessions are driven by a single
// flow of control and are not safe for concurrent mutation.
type Session struct {
	EquipmentName string
	InspectorName string
	Mode          models.InspectionMode

	items     []models.ChecklistItem
	photo     []byte
	photoMime string
}

// NewSession creates a session for the given inspector and workflow mode
func NewSession(inspector string, mode models.InspectionMode) *Session {
	return &Session{
		InspectorName: inspector,
		Mode:          mode,
	}
}

// LoadItems replaces the session checklist with the given items
func (s *Session) LoadItems(items []models.ChecklistItem) {
	s.items = make([]models.ChecklistItem, len(items))
	copy(s.items, items)
}

// ClearItems empties the checklist, returning the session to the
// "no checklist" state
func (s *Session) ClearItems() {
	s.items = nil
}

// Items returns a copy of the current checklist
func (s *Session) Items() []models.ChecklistItem {
	items := make([]models.ChecklistItem, len(s.items))
	copy(items, s.items)
	return items
}

// Mark records a pass or fail outcome for an item. Re-marking an
// already answered item overwrites the previous outcome; it is a
// correction, not a new transition.
func (s *Session) Mark(id string, status models.ItemStatus) error {
	if !status.Terminal() {
		return fmt.Errorf("invalid item status %q", status)
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("unknown checklist item %q", id)
}

// AllCompleted reports whether every item has been answered. An empty
// checklist is never complete: submission requires at least one item.
func (s *Session) AllCompleted() bool {
	if len(s.items) == 0 {
		return false
	}
	for _, item := range s.items {
		if !item.Status.Terminal() {
			return false
		}
	}
	return true
}

// HasFailures reports whether any item was marked fail
func (s *Session) HasFailures() bool {
	for _, item := range s.items {
		if item.Status == models.ItemStatusFail {
			return true
		}
	}
	return false
}

// OverallStatus derives the record status: Action Required if and only
// if at least one item failed, otherwise Safe
func (s *Session) OverallStatus() models.InspectionStatus {
	if s.HasFailures() {
		return models.InspectionStatusActionRequired
	}
	return models.InspectionStatusSafe
}

// AttachPhoto stores the captured photo on the session
func (s *Session) AttachPhoto(data []byte, mimeType string) {
	s.photo = data
	s.photoMime = mimeType
}

// DetachPhoto removes the captured photo from the session
func (s *Session) DetachPhoto() {
	s.photo = nil
	s.photoMime = ""
}

// Photo returns the captured photo, if any
func (s *Session) Photo() (data []byte, mimeType string, ok bool) {
	if len(s.photo) == 0 {
		return nil, "", false
	}
	return s.photo, s.photoMime, true
}
