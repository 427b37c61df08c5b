package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"posterforge/internal/domain"
)

const dalleDefaultTimeout = 120 * time.Second

// DalleOptions configures the OpenAI image generation renderer.
type DalleOptions struct {
	APIKey      string
	Model       string
	BaseURL     string
	AspectRatio string
	HTTPClient  *http.Client
}

// DalleRenderer calls the OpenAI images API synchronously. Aspect ratio is
// mapped to the fixed set of sizes the API accepts.
type DalleRenderer struct {
	apiKey      string
	model       string
	baseURL     string
	aspectRatio string
	client      *http.Client
}

type dalleRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
	Style   string `json:"style,omitempty"`
}

type dalleResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

type dalleErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewDalleRenderer constructs the renderer with sane defaults.
func NewDalleRenderer(opts DalleOptions) (*DalleRenderer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("render: openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "dall-e-3"
	}
	aspect := strings.TrimSpace(opts.AspectRatio)
	if aspect == "" {
		aspect = "square"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: dalleDefaultTimeout}
	}
	return &DalleRenderer{
		apiKey:      strings.TrimSpace(opts.APIKey),
		model:       model,
		baseURL:     baseURL,
		aspectRatio: aspect,
		client:      client,
	}, nil
}

// RenderPoster fulfils the Renderer interface.
func (d *DalleRenderer) RenderPoster(ctx context.Context, prompt string, event domain.ExtractedEvent) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", renderErr("dalle", "prompt is required", nil)
	}
	payload := dalleRequest{
		Model:   d.model,
		Prompt:  enrichPrompt(prompt, event),
		N:       1,
		Size:    dalleSizeForAspect(d.aspectRatio),
		Quality: "hd",
		Style:   "vivid",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", renderErr("dalle", "encode request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return "", renderErr("dalle", "build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return "", renderErr("dalle", "generation request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", renderErr("dalle", "read response", err)
	}
	if resp.StatusCode >= 300 {
		var detail dalleErrorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error.Message != "" {
			return "", renderErr("dalle", fmt.Sprintf("status %d: %s", resp.StatusCode, detail.Error.Message), nil)
		}
		return "", renderErr("dalle", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	var decoded dalleResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", renderErr("dalle", "decode response", err)
	}
	if len(decoded.Data) == 0 || strings.TrimSpace(decoded.Data[0].URL) == "" {
		return "", renderErr("dalle", "no image url in response", nil)
	}
	return decoded.Data[0].URL, nil
}

// dalleSizeForAspect maps a named aspect ratio to the provider's size
// parameter. Unknown values fall back to square.
func dalleSizeForAspect(aspect string) string {
	switch strings.ToLower(strings.TrimSpace(aspect)) {
	case "landscape":
		return "1792x1024"
	case "portrait":
		return "1024x1792"
	default:
		return "1024x1024"
	}
}

// enrichPrompt appends supplementary event metadata a text-to-image backend
// can use even though the design prompt already covers most of it.
func enrichPrompt(prompt string, event domain.ExtractedEvent) string {
	sb := &strings.Builder{}
	sb.WriteString(prompt)
	if len(event.Keywords) > 0 {
		fmt.Fprintf(sb, "\nThemes: %s.", strings.Join(event.Keywords, ", "))
	}
	if len(event.Colors) > 0 {
		fmt.Fprintf(sb, "\nPalette: %s.", strings.Join(event.Colors, ", "))
	}
	return sb.String()
}

var _ Renderer = (*DalleRenderer)(nil)
