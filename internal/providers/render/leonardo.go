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

const (
	leonardoDefaultTimeout      = 45 * time.Second
	leonardoDefaultPollInterval = 2 * time.Second
	leonardoDefaultMaxAttempts  = 30
	leonardoCreativeModelID     = "6bef9f1b-29cb-40c7-b9df-32b51c1f67d3"
)

// LeonardoOptions configures the Leonardo renderer. PollInterval and
// MaxAttempts bound the completion wait; they are a configuration pair, not
// inlined constants, so deployments can tune them.
type LeonardoOptions struct {
	APIKey       string
	BaseURL      string
	AspectRatio  string
	PollInterval time.Duration
	MaxAttempts  int
	HTTPClient   *http.Client
}

// LeonardoRenderer submits a generation job and polls for completion on a
// fixed interval up to a maximum attempt count.
type LeonardoRenderer struct {
	apiKey       string
	baseURL      string
	aspectRatio  string
	pollInterval time.Duration
	maxAttempts  int
	client       *http.Client
}

type leonardoGenerationRequest struct {
	Prompt        string `json:"prompt"`
	ModelID       string `json:"modelId"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	NumImages     int    `json:"num_images"`
	GuidanceScale int    `json:"guidance_scale"`
}

type leonardoGenerationResponse struct {
	Job struct {
		GenerationID string `json:"generationId"`
	} `json:"sdGenerationJob"`
	Error string `json:"error"`
}

type leonardoStatusResponse struct {
	Generation struct {
		Status string `json:"status"`
		Images []struct {
			URL string `json:"url"`
		} `json:"generated_images"`
	} `json:"generations_by_pk"`
}

// NewLeonardoRenderer constructs the renderer with sane defaults.
func NewLeonardoRenderer(opts LeonardoOptions) (*LeonardoRenderer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("render: leonardo api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://cloud.leonardo.ai/api/rest/v1"
	}
	aspect := strings.TrimSpace(opts.AspectRatio)
	if aspect == "" {
		aspect = "square"
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = leonardoDefaultPollInterval
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = leonardoDefaultMaxAttempts
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: leonardoDefaultTimeout}
	}
	return &LeonardoRenderer{
		apiKey:       strings.TrimSpace(opts.APIKey),
		baseURL:      baseURL,
		aspectRatio:  aspect,
		pollInterval: interval,
		maxAttempts:  attempts,
		client:       client,
	}, nil
}

// RenderPoster fulfils the Renderer interface. The wait for asynchronous
// completion is bounded by maxAttempts polls at pollInterval spacing; an
// exhausted budget yields a RenderError wrapping ErrTimeout.
func (l *LeonardoRenderer) RenderPoster(ctx context.Context, prompt string, event domain.ExtractedEvent) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", renderErr("leonardo", "prompt is required", nil)
	}
	generationID, err := l.submit(ctx, enrichPrompt(prompt, event))
	if err != nil {
		return "", err
	}
	for attempt := 0; attempt < l.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", renderErr("leonardo", "poll cancelled", ctx.Err())
		case <-time.After(l.pollInterval):
		}
		url, done, err := l.poll(ctx, generationID)
		if err != nil {
			return "", err
		}
		if done {
			return url, nil
		}
	}
	return "", renderErr("leonardo", fmt.Sprintf("no completion after %d attempts", l.maxAttempts), ErrTimeout)
}

func (l *LeonardoRenderer) submit(ctx context.Context, prompt string) (string, error) {
	width, height := leonardoDimensionsForAspect(l.aspectRatio)
	payload := leonardoGenerationRequest{
		Prompt:        prompt,
		ModelID:       leonardoCreativeModelID,
		Width:         width,
		Height:        height,
		NumImages:     1,
		GuidanceScale: 7,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", renderErr("leonardo", "encode request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/generations", bytes.NewReader(body))
	if err != nil {
		return "", renderErr("leonardo", "build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return "", renderErr("leonardo", "submit generation", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", renderErr("leonardo", "read response", err)
	}
	var decoded leonardoGenerationResponse
	if resp.StatusCode >= 300 {
		if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error != "" {
			return "", renderErr("leonardo", fmt.Sprintf("status %d: %s", resp.StatusCode, decoded.Error), nil)
		}
		return "", renderErr("leonardo", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", renderErr("leonardo", "decode response", err)
	}
	if decoded.Job.GenerationID == "" {
		return "", renderErr("leonardo", "no generation id in response", nil)
	}
	return decoded.Job.GenerationID, nil
}

func (l *LeonardoRenderer) poll(ctx context.Context, generationID string) (string, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/generations/"+generationID, nil)
	if err != nil {
		return "", false, renderErr("leonardo", "build poll request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return "", false, renderErr("leonardo", "poll generation", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", false, renderErr("leonardo", fmt.Sprintf("poll status %d", resp.StatusCode), nil)
	}
	var decoded leonardoStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", false, renderErr("leonardo", "decode poll response", err)
	}
	switch decoded.Generation.Status {
	case "COMPLETE":
		if len(decoded.Generation.Images) == 0 || decoded.Generation.Images[0].URL == "" {
			return "", false, renderErr("leonardo", "completed generation has no images", nil)
		}
		return decoded.Generation.Images[0].URL, true, nil
	case "FAILED":
		return "", false, renderErr("leonardo", "provider reported generation failure", nil)
	default:
		return "", false, nil
	}
}

// leonardoDimensionsForAspect maps a named aspect ratio to pixel dimensions.
func leonardoDimensionsForAspect(aspect string) (int, int) {
	switch strings.ToLower(strings.TrimSpace(aspect)) {
	case "landscape":
		return 1344, 768
	case "portrait":
		return 768, 1344
	case "story":
		return 512, 912
	default:
		return 1024, 1024
	}
}

var _ Renderer = (*LeonardoRenderer)(nil)
