package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"net/http"
	"strings"

	mathsnap "github.com/alnah/go-mathsnap"
)

// Mistral OCR API defaults.
const (
	DefaultMistralEndpoint = "https://api.mistral.ai"
	DefaultMistralModel    = "mistral-ocr-latest"
	APIKeyEnv              = "MISTRAL_API_KEY"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

// APIError is a non-2xx answer from the OCR service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mistral OCR: HTTP %d", e.Status)
	}
	return fmt.Sprintf("mistral OCR: HTTP %d: %s", e.Status, e.Message)
}

// Mistral recognizes text with the Mistral OCR API.
type Mistral struct {
	APIKey     string
	Endpoint   string      // defaults to DefaultMistralEndpoint
	Model      string      // defaults to DefaultMistralModel
	Background color.Color // flatten colour; nil means white
	Client     *http.Client
}

// Compile-time interface check.
var _ mathsnap.Recognizer = (*Mistral)(nil)

// ocrRequest is the JSON body sent to /v1/ocr.
type ocrRequest struct {
	Model    string      `json:"model"`
	Document ocrDocument `json:"document"`
}

type ocrDocument struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url"`
}

// ocrResponse is the subset of the /v1/ocr answer we read.
type ocrResponse struct {
	Pages []struct {
		Index    int    `json:"index"`
		Markdown string `json:"markdown"`
	} `json:"pages"`
	Model string `json:"model"`
}

// Recognize uploads the image and returns the joined page texts.
func (m *Mistral) Recognize(ctx context.Context, imagePath string) (string, error) {
	if strings.TrimSpace(m.APIKey) == "" {
		return "", fmt.Errorf("%w: %w (set %s)", mathsnap.ErrOCRFailed, ErrMissingAPIKey, APIKeyEnv)
	}

	bg := m.Background
	if bg == nil {
		bg = color.White
	}
	dataURL, err := DataURL(imagePath, bg)
	if err != nil {
		return "", fmt.Errorf("%w: %w", mathsnap.ErrOCRFailed, err)
	}

	pages, err := m.call(ctx, dataURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", mathsnap.ErrOCRFailed, err)
	}
	return JoinSegments(pages), nil
}

func (m *Mistral) call(ctx context.Context, dataURL string) ([]string, error) {
	model := m.Model
	if model == "" {
		model = DefaultMistralModel
	}
	body, err := json.Marshal(ocrRequest{
		Model:    model,
		Document: ocrDocument{Type: "image_url", ImageURL: dataURL},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := m.Endpoint
	if endpoint == "" {
		endpoint = DefaultMistralEndpoint
	}
	url := strings.TrimRight(endpoint, "/") + "/v1/ocr"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	var result ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	pages := make([]string, len(result.Pages))
	for i, p := range result.Pages {
		pages[i] = p.Markdown
	}
	return pages, nil
}

// errorMessage extracts a readable message from an error body. The API uses
// both {"message": ...} and {"detail": ...} shapes.
func errorMessage(raw []byte) string {
	var shaped struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(raw, &shaped) == nil {
		if shaped.Message != "" {
			return shaped.Message
		}
		var detail string
		if json.Unmarshal(shaped.Detail, &detail) == nil && detail != "" {
			return detail
		}
		if len(shaped.Detail) > 0 {
			return string(shaped.Detail)
		}
	}
	return strings.TrimSpace(string(raw))
}
