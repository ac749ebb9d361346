package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipcert/internal/checklist"
	"equipcert/internal/identify"
	"equipcert/internal/models"
)

type fakeIdentifier struct {
	identification *identify.Identification
	err            error
	calls          int

	// When set, Identify blocks until the channel is closed
	block chan struct{}
	// Closed once Identify has been entered
	entered chan struct{}
}

func (f *fakeIdentifier) Identify(ctx context.Context, imageBytes []byte, mimeType string) (*identify.Identification, error) {
	f.calls++
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.identification, nil
}

type fakeFetcher struct {
	items []models.ChecklistItem
	err   error
	calls int
}

func (f *fakeFetcher) FetchChecklist(ctx context.Context, equipmentName string) ([]models.ChecklistItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func forkliftIdentification() *identify.Identification {
	return &identify.Identification{EquipmentName: "Forklift", SerialNumber: "FL-2041", SafetyStatus: "Safe"}
}

func forkliftItems() []models.ChecklistItem {
	return []models.ChecklistItem{
		{ID: "1", Question: "Check Hydraulic Fluid Levels", Status: models.ItemStatusPending},
	}
}

func TestController_CaptureRunsIdentificationOnce(t *testing.T) {
	session := checklist.NewSession("Alex", models.ModeAIAssisted)
	identifier := &fakeIdentifier{identification: forkliftIdentification()}
	fetcher := &fakeFetcher{items: forkliftItems()}
	controller := NewController(session, identifier, fetcher)

	require.NoError(t, controller.Capture(context.Background(), []byte{0xFF}, "image/jpeg"))

	assert.Equal(t, StatePhotoCaptured, controller.State())
	assert.Equal(t, "Forklift", session.EquipmentName)
	require.Len(t, session.Items(), 1)
	assert.Equal(t, 1, identifier.calls)
	assert.Equal(t, 1, fetcher.calls)

	_, _, ok := session.Photo()
	assert.True(t, ok)
}

func TestController_CaptureSkipsIdentificationWhenChecklistLoaded(t *testing.T) {
	session := checklist.NewSession("Alex", models.ModeAIAssisted)
	session.LoadItems(forkliftItems())
	identifier := &fakeIdentifier{identification: forkliftIdentification()}
	fetcher := &fakeFetcher{items: forkliftItems()}
	controller := NewController(session, identifier, fetcher)

	require.NoError(t, controller.Capture(context.Background(), []byte{0xFF}, "image/jpeg"))

	assert.Equal(t, 0, identifier.calls)
	assert.Equal(t, 0, fetcher.calls)
}

func TestController_ManualModeNeverIdentifies(t *testing.T) {
	session := checklist.NewSession("Alex", models.ModeManual)
	session.EquipmentName = "Forklift"
	identifier := &fakeIdentifier{identification: forkliftIdentification()}
	fetcher := &fakeFetcher{items: forkliftItems()}
	controller := NewController(session, identifier, fetcher)

	require.NoError(t, controller.Capture(context.Background(), []byte{0xFF}, "image/jpeg"))

	assert.Equal(t, StatePhotoCaptured, controller.State())
	assert.Equal(t, 0, identifier.calls)
}

func TestController_RecognitionFailureLeavesChecklistEmpty(t *testing.T) {
	session := checklist.NewSession("Alex", models.ModeAIAssisted)
	identifier := &fakeIdentifier{err: identify.ErrRecognition}
	fetcher := &fakeFetcher{items: forkliftItems()}
	controller := NewController(session, identifier, fetcher)

	err := controller.Capture(context.Background(), []byte{0xFF}, "image/jpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, identify.ErrRecognition)

	assert.Equal(t, StatePhotoCaptured, controller.State(), "photo stays captured so the user can retake")
	assert.Empty(t, session.EquipmentName)
	assert.Empty(t, session.Items())
	assert.Equal(t, 0, fetcher.calls, "checklist fetch should not run without an identification")
}

func TestController_FetchFailureKeepsIdentifiedName(t *testing.T) {
	session := checklist.NewSession("Alex", models.ModeAIAssisted)
	identifier := &fakeIdentifier{identification: forkliftIdentification()}
	fetcher := &fakeFetcher{err: checklist.ErrFetch}
	controller := NewController(session, identifier, fetcher)

	err := controller.Capture(context.Background(), []byte{0xFF}, "image/jpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, checklist.ErrFetch)

	assert.Equal(t, "Forklift", session.EquipmentName, "identified name survives a checklist failure")
	assert.Empty(t, session.Items())
}

func TestController_RetakeResetsForFreshCycle(t *testing.T) {
	session := checklist.NewSession("Alex", models.ModeAIAssisted)
	identifier := &fakeIdentifier{identification: forkliftIdentification()}
	fetcher := &fakeFetcher{items: forkliftItems()}
	controller := NewController(session, identifier, fetcher)

	require.NoError(t, controller.Capture(context.Background(), []byte{0xFF}, "image/jpeg"))
	controller.Retake()

	assert.Equal(t, StateNoPhoto, controller.State())
	assert.Empty(t, session.EquipmentName)
	assert.Empty(t, session.Items())
	_, _, ok := session.Photo()
	assert.False(t, ok)

	// A fresh capture runs a new identification cycle
	require.NoError(t, controller.Capture(context.Background(), []byte{0xFE}, "image/jpeg"))
	assert.Equal(t, 2, identifier.calls)
	assert.Equal(t, "Forklift", session.EquipmentName)
}

func TestController_RetakeInManualModeKeepsChecklist(t *testing.T) {
	session := checklist.NewSession("Alex", models.ModeManual)
	session.EquipmentName = "Forklift"
	session.LoadItems(forkliftItems())
	controller := NewController(session, &fakeIdentifier{}, &fakeFetcher{})

	require.NoError(t, controller.Capture(context.Background(), []byte{0xFF}, "image/jpeg"))
	controller.Retake()

	assert.Equal(t, "Forklift", session.EquipmentName)
	assert.Len(t, session.Items(), 1, "manual checklists are not derived from the photo")
}

func TestController_ConcurrentCaptureRejected(t *testing.T) {
	session := checklist.NewSession("Alex", models.ModeAIAssisted)
	identifier := &fakeIdentifier{
		identification: forkliftIdentification(),
		block:          make(chan struct{}),
		entered:        make(chan struct{}),
	}
	fetcher := &fakeFetcher{items: forkliftItems()}
	controller := NewController(session, identifier, fetcher)

	entered := identifier.entered
	done := make(chan error, 1)
	go func() {
		done <- controller.Capture(context.Background(), []byte{0xFF}, "image/jpeg")
	}()

	<-entered
	assert.True(t, controller.Identifying())
	err := controller.Capture(context.Background(), []byte{0xFE}, "image/jpeg")
	assert.ErrorIs(t, err, ErrIdentificationInFlight)

	close(identifier.block)
	require.NoError(t, <-done)
	assert.False(t, controller.Identifying())
}

func TestController_AbandonDiscardsLateResult(t *testing.T) {
	session := checklist.NewSession("Alex", models.ModeAIAssisted)
	identifier := &fakeIdentifier{
		identification: forkliftIdentification(),
		block:          make(chan struct{}),
		entered:        make(chan struct{}),
	}
	fetcher := &fakeFetcher{items: forkliftItems()}
	controller := NewController(session, identifier, fetcher)

	entered := identifier.entered
	done := make(chan error, 1)
	go func() {
		done <- controller.Capture(context.Background(), []byte{0xFF}, "image/jpeg")
	}()

	<-entered
	controller.Abandon()
	close(identifier.block)

	require.NoError(t, <-done)
	assert.Empty(t, session.EquipmentName, "a result arriving after abandonment must be discarded")
	assert.Empty(t, session.Items())
}

func TestController_RetakeDuringIdentificationDiscardsResult(t *testing.T) {
	session := checklist.NewSession("Alex", models.ModeAIAssisted)
	identifier := &fakeIdentifier{
		identification: forkliftIdentification(),
		block:          make(chan struct{}),
		entered:        make(chan struct{}),
	}
	fetcher := &fakeFetcher{items: forkliftItems()}
	controller := NewController(session, identifier, fetcher)

	entered := identifier.entered
	done := make(chan error, 1)
	go func() {
		done <- controller.Capture(context.Background(), []byte{0xFF}, "image/jpeg")
	}()

	<-entered
	controller.Retake()
	close(identifier.block)

	require.NoError(t, <-done)
	waitFor(t, func() bool { return !controller.Identifying() })
	assert.Empty(t, session.Items())
	assert.Equal(t, StateNoPhoto, controller.State())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
