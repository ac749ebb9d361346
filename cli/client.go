package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"equipcert/internal/identify"
	"equipcert/internal/models"
)

// ApiClient handles API requests to the EquipCert service
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	Token      string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("EQUIPCERT_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 60,
		},
		BaseURL: baseURL,
		Token:   os.Getenv("EQUIPCERT_API_TOKEN"),
	}
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("API health check failed with status code: %d", resp.StatusCode)
	}

	return true, nil
}

// Analyze sends a captured photo for equipment identification
func (c *ApiClient) Analyze(imageBytes []byte, mimeType string) (*identify.Identification, error) {
	payload := map[string]string{
		"image":    base64.StdEncoding.EncodeToString(imageBytes),
		"mimeType": mimeType,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.post("/api/v1/analyze", data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %s", identify.ErrRecognition, string(body))
	}

	var identification identify.Identification
	if err := json.NewDecoder(resp.Body).Decode(&identification); err != nil {
		return nil, fmt.Errorf("%w: %v", identify.ErrRecognition, err)
	}

	return &identification, nil
}

// FetchChecklist retrieves the checklist for an equipment name
func (c *ApiClient) FetchChecklist(equipment string) ([]models.ChecklistItem, error) {
	reqURL := c.BaseURL + "/api/v1/checklists?equipment=" + url.QueryEscape(equipment)
	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to fetch checklist: %s", string(body))
	}

	var response struct {
		EquipmentName string                 `json:"equipmentName"`
		Items         []models.ChecklistItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	return response.Items, nil
}

// SubmitPayload carries a finished inspection to the API
type SubmitPayload struct {
	EquipmentName string                 `json:"equipment_name"`
	InspectorName string                 `json:"inspector_name"`
	Mode          string                 `json:"mode"`
	Checklist     []models.ChecklistItem `json:"checklist"`
	Photo         string                 `json:"photo,omitempty"`
	PhotoMimeType string                 `json:"photo_mime_type,omitempty"`
}

// SubmitResult is the API's response to a successful submission
type SubmitResult struct {
	ID       uint   `json:"id"`
	Status   string `json:"status"`
	PhotoURL string `json:"photo_url"`
}

// SubmitInspection persists a completed inspection
func (c *ApiClient) SubmitInspection(payload SubmitPayload) (*SubmitResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.post("/api/v1/inspections", data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to submit inspection: %s", string(body))
	}

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// InspectionRow is one record in the dashboard table
type InspectionRow struct {
	ID            uint      `json:"ID"`
	CreatedAt     time.Time `json:"CreatedAt"`
	EquipmentName string    `json:"EquipmentName"`
	InspectorName string    `json:"InspectorName"`
	Status        string    `json:"Status"`
	PhotoURL      string    `json:"PhotoURL"`
}

// ListInspections retrieves recent inspections, newest first
func (c *ApiClient) ListInspections(limit int, inspector string) ([]InspectionRow, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	if inspector != "" {
		query.Set("inspector", inspector)
	}

	req, err := http.NewRequest("GET", c.BaseURL+"/api/v1/inspections?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list inspections with status code: %d", resp.StatusCode)
	}

	var rows []InspectionRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// Stats mirrors the dashboard stat card counts
type Stats struct {
	Total          int64 `json:"total"`
	Safe           int64 `json:"safe"`
	ActionRequired int64 `json:"action_required"`
	Today          int64 `json:"today"`
}

// GetStats retrieves the dashboard summary counts
func (c *ApiClient) GetStats() (*Stats, error) {
	req, err := http.NewRequest("GET", c.BaseURL+"/api/v1/inspections/stats", nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get stats with status code: %d", resp.StatusCode)
	}

	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (c *ApiClient) post(path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest("POST", c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

func (c *ApiClient) authorize(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

// apiIdentifier adapts the API client to the capture controller's
// identifier seam
type apiIdentifier struct {
	client *ApiClient
}

func (a apiIdentifier) Identify(ctx context.Context, imageBytes []byte, mimeType string) (*identify.Identification, error) {
	return a.client.Analyze(imageBytes, mimeType)
}

// apiChecklists adapts the API client to the capture controller's
// checklist seam
type apiChecklists struct {
	client *ApiClient
}

func (a apiChecklists) FetchChecklist(ctx context.Context, equipmentName string) ([]models.ChecklistItem, error) {
	return a.client.FetchChecklist(equipmentName)
}
