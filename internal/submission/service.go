package submission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"equipcert/internal/checklist"
	"equipcert/internal/models"
)

var (
	// ErrIncomplete rejects submission of a session whose checklist is
	// empty or still has pending items
	ErrIncomplete = errors.New("checklist is not complete")

	// ErrInFlight rejects a second submit request while one is pending
	// for the same session
	ErrInFlight = errors.New("submission already in flight")

	// ErrUpload indicates the photo could not be stored; the whole
	// submission aborts and no record is written
	ErrUpload = errors.New("photo upload failed")

	// ErrPersistence indicates the record insert failed; an already
	// uploaded photo is left in storage
	ErrPersistence = errors.New("failed to persist inspection")
)

// Uploader stores a photo and returns its public address
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// Recorder appends inspection records to the external store
type Recorder interface {
	SaveInspection(ctx context.Context, inspection *models.Inspection) error
}

// Service assembles a finished session into an inspection record and
// persists it, uploading the photo first when one was captured
type Service struct {
	photos  Uploader
	records Recorder

	mu       sync.Mutex
	inFlight map[*checklist.Session]struct{}
}

// NewService creates a submission service
func NewService(photos Uploader, records Recorder) *Service {
	return &Service{
		photos:   photos,
		records:  records,
		inFlight: make(map[*checklist.Session]struct{}),
	}
}

// Submit persists the session as an inspection record and returns the
// persisted record. On any failure the session is left untouched so
// the technician can retry without re-entering answers.
func (s *Service) Submit(ctx context.Context, session *checklist.Session) (*models.Inspection, error) {
	if !session.AllCompleted() {
		return nil, ErrIncomplete
	}

	s.mu.Lock()
	if _, pending := s.inFlight[session]; pending {
		s.mu.Unlock()
		return nil, ErrInFlight
	}
	s.inFlight[session] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, session)
		s.mu.Unlock()
	}()

	var photoURL string
	if data, mimeType, ok := session.Photo(); ok {
		url, err := s.photos.Upload(ctx, data, mimeType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpload, err)
		}
		photoURL = url
	}

	inspection := &models.Inspection{
		EquipmentName: session.EquipmentName,
		InspectorName: session.InspectorName,
		Status:        string(session.OverallStatus()),
		PhotoURL:      photoURL,
	}
	if err := inspection.SetChecklist(session.Items()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := s.records.SaveInspection(ctx, inspection); err != nil {
		if photoURL != "" {
			// Accepted tradeoff: the uploaded photo stays in storage
			// rather than being rolled back.
			log.Printf("Inspection insert failed, photo left orphaned at %s", photoURL)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return inspection, nil
}
