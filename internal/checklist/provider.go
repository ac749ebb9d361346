package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"equipcert/internal/models"
)

// ErrFetch indicates the content repository could not be queried or its
// response could not be parsed. Callers degrade to an empty checklist
// rather than failing the session.
var ErrFetch = errors.New("checklist fetch failed")

// Provider retrieves inspection checklists from the headless content
// repository. Access is read-only: one query by content kind with
// nested equipment-type links.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewProvider creates a checklist provider for the given repository
func NewProvider(baseURL, token string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
	}
}

// checklistEntry is the wire shape of a checklist entry with its linked
// equipment type
type checklistEntry struct {
	ID            string `json:"id"`
	EquipmentType struct {
		Name string `json:"name"`
	} `json:"equipmentType"`
	Questions []string `json:"questions"`
}

type entriesResponse struct {
	Items []checklistEntry `json:"items"`
}

// FetchChecklist returns the ordered checklist for the given equipment
// name, every item initialized to pending. Matching is a case-insensitive
// substring check in either direction against the linked equipment-type
// name; when nothing matches, the first entry returned by the repository
// is used. An entry without questions degrades to the single default item.
func (p *Provider) FetchChecklist(ctx context.Context, equipmentName string) ([]models.ChecklistItem, error) {
	url := fmt.Sprintf("%s/entries?content_type=checklist", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	var entries entriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	entry := selectEntry(entries.Items, equipmentName)
	if entry == nil || len(entry.Questions) == 0 {
		return models.DefaultChecklist(), nil
	}

	items := make([]models.ChecklistItem, len(entry.Questions))
	for i, question := range entry.Questions {
		items[i] = models.ChecklistItem{
			ID:       fmt.Sprintf("%d", i+1),
			Question: question,
			Status:   models.ItemStatusPending,
		}
	}
	return items, nil
}

// selectEntry picks the checklist entry for an equipment name. The
// first-entry fallback can return a checklist unrelated to the
// equipment; it is logged so operators can spot it.
func selectEntry(entries []checklistEntry, equipmentName string) *checklistEntry {
	if len(entries) == 0 {
		return nil
	}

	name := strings.ToLower(equipmentName)
	for i := range entries {
		linked := strings.ToLower(entries[i].EquipmentType.Name)
		if linked == "" {
			continue
		}
		if strings.Contains(linked, name) || strings.Contains(name, linked) {
			return &entries[i]
		}
	}

	log.Printf("No checklist entry matched equipment %q, falling back to first entry (%s)",
		equipmentName, entries[0].EquipmentType.Name)
	return &entries[0]
}
