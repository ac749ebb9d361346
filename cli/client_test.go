package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipcert/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ApiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &ApiClient{
		httpClient: server.Client(),
		BaseURL:    server.URL,
	}
}

func TestApiClient_FetchChecklist_MultiWordName(t *testing.T) {
	var gotEquipment string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/checklists", r.URL.Path)
		gotEquipment = r.URL.Query().Get("equipment")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"equipmentName": gotEquipment,
			"items":         models.DefaultChecklist(),
		})
	})

	items, err := client.FetchChecklist("Toyota Forklift 8FGU25")
	require.NoError(t, err)
	assert.Equal(t, "Toyota Forklift 8FGU25", gotEquipment)
	require.Len(t, items, 1)
	assert.Equal(t, models.DefaultQuestion, items[0].Question)
}

func TestApiClient_ListInspections_EscapesInspector(t *testing.T) {
	var gotInspector, gotLimit string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/inspections", r.URL.Path)
		gotInspector = r.URL.Query().Get("inspector")
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`[]`))
	})

	_, err := client.ListInspections(25, "Alex Smith")
	require.NoError(t, err)
	assert.Equal(t, "Alex Smith", gotInspector)
	assert.Equal(t, "25", gotLimit)
}
