package capture

import (
	"context"
	"errors"
	"log"
	"sync"

	"equipcert/internal/checklist"
	"equipcert/internal/identify"
	"equipcert/internal/models"
)

// State represents the photo capture state of a session
type State string

const (
	StateNoPhoto       State = "no_photo"
	StatePhotoCaptured State = "photo_captured"
)

// ErrIdentificationInFlight rejects a second capture while an
// identification cycle is still running
var ErrIdentificationInFlight = errors.New("identification already in flight")

// Identifier resolves an equipment name from a captured photo
type Identifier interface {
	Identify(ctx context.Context, imageBytes []byte, mimeType string) (*identify.Identification, error)
}

// Fetcher retrieves the checklist for an equipment name
type Fetcher interface {
	FetchChecklist(ctx context.Context, equipmentName string) ([]models.ChecklistItem, error)
}

// Controller owns the NoPhoto -> PhotoCaptured transition for one
// session. In AI-assisted mode a capture with an empty checklist runs
// exactly one identification, then loads the resolved checklist. A
// retake resets to NoPhoto and permits a fresh cycle; results that
// arrive after the session was abandoned are discarded.
type Controller struct {
	mu         sync.Mutex
	state      State
	inFlight   bool
	generation int

	session    *checklist.Session
	identifier Identifier
	checklists Fetcher
}

// NewController creates a capture controller for the given session
func NewController(session *checklist.Session, identifier Identifier, checklists Fetcher) *Controller {
	return &Controller{
		state:      StateNoPhoto,
		session:    session,
		identifier: identifier,
		checklists: checklists,
	}
}

// State returns the current capture state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identifying reports whether an identification cycle is running
func (c *Controller) Identifying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Capture records a photo on the session and, in AI-assisted mode with
// no checklist loaded yet, runs the identify-then-fetch cycle. The call
// blocks until the cycle completes; a concurrent capture is rejected
// rather than queued.
func (c *Controller) Capture(ctx context.Context, imageBytes []byte, mimeType string) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrIdentificationInFlight
	}

	c.state = StatePhotoCaptured
	c.session.AttachPhoto(imageBytes, mimeType)

	needsIdentification := c.session.Mode == models.ModeAIAssisted && len(c.session.Items()) == 0
	if !needsIdentification {
		c.mu.Unlock()
		return nil
	}

	c.inFlight = true
	generation := c.generation
	c.mu.Unlock()

	items, equipmentName, err := c.runIdentification(ctx, imageBytes, mimeType)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if c.generation != generation {
		// Session was retaken or abandoned while the cycle ran; a late
		// result must not resurrect its state.
		log.Printf("Discarding stale identification result for %q", equipmentName)
		return nil
	}
	if equipmentName != "" {
		c.session.EquipmentName = equipmentName
	}
	if err != nil {
		return err
	}

	c.session.LoadItems(items)
	return nil
}

func (c *Controller) runIdentification(ctx context.Context, imageBytes []byte, mimeType string) ([]models.ChecklistItem, string, error) {
	identification, err := c.identifier.Identify(ctx, imageBytes, mimeType)
	if err != nil {
		return nil, "", err
	}

	items, err := c.checklists.FetchChecklist(ctx, identification.EquipmentName)
	if err != nil {
		// Degraded mode: the equipment is identified but the checklist
		// stays empty; the caller shows the "no checklist" state.
		return nil, identification.EquipmentName, err
	}

	return items, identification.EquipmentName, nil
}

// Retake resets to NoPhoto, clears the photo and any loaded checklist,
// and permits a fresh identification cycle
func (c *Controller) Retake() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateNoPhoto
	c.generation++
	c.session.DetachPhoto()
	if c.session.Mode == models.ModeAIAssisted {
		c.session.ClearItems()
		c.session.EquipmentName = ""
	}
}

// Abandon marks the session discarded so in-flight results are ignored
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
}
