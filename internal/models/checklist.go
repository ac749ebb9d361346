package models

// ChecklistItem represents a single yes/no inspection question
type ChecklistItem struct {
	ID       string     `json:"id"`
	Question string     `json:"question"`
	Status   ItemStatus `json:"status"`
}

// ItemStatus represents the state of a checklist item
type ItemStatus string

const (
	// Checklist item statuses
	ItemStatusPending ItemStatus = "pending"
	ItemStatusPass    ItemStatus = "pass"
	ItemStatusFail    ItemStatus = "fail"
)

// Terminal reports whether the item has been answered
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusPass || s == ItemStatusFail
}

// DefaultQuestion is used when the content repository has no
// structured checklist for an equipment type.
const DefaultQuestion = "Check General Condition"

// DefaultChecklist returns the single-item fallback checklist
func DefaultChecklist() []ChecklistItem {
	return []ChecklistItem{
		{ID: "1", Question: DefaultQuestion, Status: ItemStatusPending},
	}
}
