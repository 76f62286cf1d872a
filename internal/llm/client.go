package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single generation request.
const DefaultTimeout = 60 * time.Second

const systemPrompt = `Provide plant disease diagnosis with:
1) Symptom analysis
2) Disease identification
3) Treatment recommendations
4) Prevention measures`

// Client calls an Ollama-compatible generate endpoint. Generation is
// used for final diagnosis narratives only; the engine never consults
// it for question selection.
type Client struct {
	BaseURL string
	Model   string

	HTTPClient *http.Client
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Generate produces a diagnosis narrative from the confirmed symptoms
// and the diagnosis context. Transport and decode failures come back as
// errors; the caller is expected to degrade them to turn text.
func (c *Client) Generate(ctx context.Context, symptoms []string, diagCtx string) (string, error) {
	if c.BaseURL == "" || c.Model == "" {
		return "", fmt.Errorf("llm: base URL and model required")
	}

	prompt := fmt.Sprintf("%s\n\nCONTEXT: %s\nSYMPTOMS: %s", systemPrompt, diagCtx, strings.Join(symptoms, ", "))
	reqBody, err := json.Marshal(generateRequest{
		Model:   c.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]interface{}{"temperature": 0.6, "num_predict": 500},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: generate returned status %d", resp.StatusCode)
	}

	var payload generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Error != "" {
		return "", fmt.Errorf("llm error: %s", payload.Error)
	}
	return strings.TrimSpace(payload.Response), nil
}

// HealthCheck reports whether the configured model is available, with a
// human-readable status message. It never returns an error; failures
// show up as (false, reason).
func (c *Client) HealthCheck(ctx context.Context) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return false, fmt.Sprintf("connection failed: %v", err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return false, fmt.Sprintf("connection failed: %v", err)
	}
	defer resp.Body.Close()

	var payload tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Sprintf("connection failed: %v", err)
	}

	available := make([]string, 0, len(payload.Models))
	for _, m := range payload.Models {
		if m.Name == c.Model {
			return true, fmt.Sprintf("%s available", c.Model)
		}
		available = append(available, m.Name)
	}
	return false, fmt.Sprintf("%s not found, available: %s", c.Model, strings.Join(available, ", "))
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}
