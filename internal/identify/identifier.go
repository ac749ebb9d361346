package identify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// ErrRecognition indicates the equipment in a photo could not be
// identified: the upstream call failed, the response was not valid
// JSON, or the JSON carried no equipment name. The session stays in
// the "unidentified" state and the caller offers a retry.
var ErrRecognition = errors.New("equipment recognition failed")

// Identification is the structured result of analyzing an equipment
// photo. Only EquipmentName drives the workflow; the remaining fields
// are advisory. Pass/fail certification stays with the technician.
type Identification struct {
	EquipmentName string   `json:"equipmentName"`
	SerialNumber  string   `json:"serialNumber"`
	SafetyStatus  string   `json:"safetyStatus"`
	Issues        []string `json:"issues"`
}

const identificationPrompt = `Analyze this equipment photo for a safety inspection app.
Identify the equipment type.
Provide a response in strictly VALID JSON format like this:
{
  "equipmentName": "Name of equipment",
  "serialNumber": "Detected serial number or 'Unknown'",
  "safetyStatus": "Safe" or "Action Required",
  "issues": ["List of visible issues if any"]
}
Do not add markdown formatting. Just return raw JSON.`

// Identifier sends equipment photos to a multimodal model and parses
// the structured identification it returns
type Identifier struct {
	model   llms.Model
	timeout time.Duration
}

// NewIdentifier creates an identifier backed by the given model
func NewIdentifier(model llms.Model, timeout time.Duration) *Identifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Identifier{model: model, timeout: timeout}
}

// Identify analyzes a captured photo and returns the best-guess
// equipment identification
func (i *Identifier) Identify(ctx context.Context, imageBytes []byte, mimeType string) (*Identification, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(identificationPrompt),
				llms.BinaryPart(mimeType, imageBytes),
			},
		},
	}

	response, err := i.model.GenerateContent(ctx, content, llms.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognition, err)
	}
	if response == nil || len(response.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty model response", ErrRecognition)
	}

	return parseIdentification(response.Choices[0].Content)
}

// parseIdentification cleans and decodes the model output. Models
// sometimes wrap JSON in markdown code fences despite instructions.
func parseIdentification(text string) (*Identification, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var result Identification
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in model response: %v", ErrRecognition, err)
	}
	if result.EquipmentName == "" {
		return nil, fmt.Errorf("%w: model response has no equipmentName", ErrRecognition)
	}
	return &result, nil
}
