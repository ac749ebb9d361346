package checklist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipcert/internal/models"
)

const entriesPayload = `{
	"items": [
		{
			"id": "entry-1",
			"equipmentType": {"name": "Forklift"},
			"questions": ["Check Hydraulic Fluid Levels", "Inspect Forks for Cracks"]
		},
		{
			"id": "entry-2",
			"equipmentType": {"name": "Scissor Lift"},
			"questions": ["Test Emergency Stop", "Inspect Guardrails"]
		}
	]
}`

func newCMSServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Provider) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewProvider(server.URL, "test-token", 5*time.Second)
}

func TestProvider_FetchChecklist_ExactMatch(t *testing.T) {
	_, provider := newCMSServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entries", r.URL.Path)
		assert.Equal(t, "checklist", r.URL.Query().Get("content_type"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(entriesPayload))
	})

	items, err := provider.FetchChecklist(context.Background(), "Forklift")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "Check Hydraulic Fluid Levels", items[0].Question)
	assert.Equal(t, models.ItemStatusPending, items[0].Status)
	assert.Equal(t, "2", items[1].ID)
	assert.Equal(t, models.ItemStatusPending, items[1].Status)
}

func TestProvider_FetchChecklist_SubstringMatchEitherDirection(t *testing.T) {
	_, provider := newCMSServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(entriesPayload))
	})

	// Identified name contains the linked type name
	items, err := provider.FetchChecklist(context.Background(), "Toyota Forklift 8FGU25")
	require.NoError(t, err)
	assert.Equal(t, "Check Hydraulic Fluid Levels", items[0].Question)

	// Linked type name contains the identified name
	items, err = provider.FetchChecklist(context.Background(), "scissor")
	require.NoError(t, err)
	assert.Equal(t, "Test Emergency Stop", items[0].Question)
}

func TestProvider_FetchChecklist_FallsBackToFirstEntry(t *testing.T) {
	_, provider := newCMSServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(entriesPayload))
	})

	items, err := provider.FetchChecklist(context.Background(), "Cherry Picker")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Check Hydraulic Fluid Levels", items[0].Question)
}

func TestProvider_FetchChecklist_NoEntriesUsesDefault(t *testing.T) {
	_, provider := newCMSServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	})

	items, err := provider.FetchChecklist(context.Background(), "Forklift")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.DefaultQuestion, items[0].Question)
	assert.Equal(t, models.ItemStatusPending, items[0].Status)
}

func TestProvider_FetchChecklist_EmptyQuestionsUsesDefault(t *testing.T) {
	_, provider := newCMSServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"id": "entry-1", "equipmentType": {"name": "Forklift"}, "questions": []}]}`))
	})

	items, err := provider.FetchChecklist(context.Background(), "Forklift")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.DefaultQuestion, items[0].Question)
}

func TestProvider_FetchChecklist_ServerError(t *testing.T) {
	_, provider := newCMSServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := provider.FetchChecklist(context.Background(), "Forklift")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestProvider_FetchChecklist_MalformedResponse(t *testing.T) {
	_, provider := newCMSServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := provider.FetchChecklist(context.Background(), "Forklift")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestProvider_FetchChecklist_Unreachable(t *testing.T) {
	provider := NewProvider("http://127.0.0.1:1", "", 500*time.Millisecond)

	_, err := provider.FetchChecklist(context.Background(), "Forklift")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
}
