package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"posterforge/internal/domain"
)

const geminiDefaultTimeout = 30 * time.Second

// GeminiOptions configures the Gemini prompt synthesizer.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiSynthesizer asks a Gemini text model for a single poster-design
// prompt built from every descriptive field of the event.
type GeminiSynthesizer struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewGeminiSynthesizer constructs the synthesizer with sane defaults.
func NewGeminiSynthesizer(opts GeminiOptions) (*GeminiSynthesizer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("prompt: gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiSynthesizer{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

// SynthesizePrompt fulfils the Synthesizer interface. The returned string is
// trimmed and guaranteed non-empty on success.
func (g *GeminiSynthesizer) SynthesizePrompt(ctx context.Context, event domain.ExtractedEvent, organizationType string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: buildDesignInstruction(event, organizationType)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     0.7,
			TopK:            32,
			TopP:            1,
			MaxOutputTokens: 800,
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", synthesisErr("encode request", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", synthesisErr("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", synthesisErr("prompt generation request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", synthesisErr("read response", err)
	}
	if resp.StatusCode >= 300 {
		var detail geminiErrorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error.Message != "" {
			return "", synthesisErr(fmt.Sprintf("gemini status %d: %s", resp.StatusCode, detail.Error.Message), nil)
		}
		return "", synthesisErr(fmt.Sprintf("gemini status %d", resp.StatusCode), nil)
	}
	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", synthesisErr("decode response", err)
	}
	text := ""
	for _, cand := range decoded.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				text = part.Text
				break
			}
		}
		if text != "" {
			break
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", synthesisErr("no prompt content in model reply", nil)
	}
	return text, nil
}

func buildDesignInstruction(event domain.ExtractedEvent, organizationType string) string {
	if organizationType == "" {
		organizationType = "educational"
	}
	colors := strings.Join(event.Colors, ", ")
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Create a detailed, professional poster design prompt for this event:\n\n")
	fmt.Fprintf(sb, "Event: %s\nDate: %s\nDay: %s\nType: %s\nCategory: %s\nDescription: %s\n",
		event.Name, event.Date, event.Day, event.Type, event.Category, event.Description)
	fmt.Fprintf(sb, "Suggested Colors: %s\nKeywords: %s\nOrganization: %s\n\n",
		colors, strings.Join(event.Keywords, ", "), organizationType)
	fmt.Fprintf(sb, "Create a comprehensive design prompt that includes:\n")
	fmt.Fprintf(sb, "1. Visual composition and layout\n")
	fmt.Fprintf(sb, "2. Color scheme (use suggested colors: %s)\n", colors)
	fmt.Fprintf(sb, "3. Typography style and hierarchy\n")
	fmt.Fprintf(sb, "4. Cultural elements (if applicable for Indian festivals)\n")
	fmt.Fprintf(sb, "5. Background design and patterns\n")
	fmt.Fprintf(sb, "6. Space for logo placement\n")
	fmt.Fprintf(sb, "7. Social media optimization\n")
	fmt.Fprintf(sb, "8. Professional aesthetic suitable for %s institutions\n\n", organizationType)
	fmt.Fprintf(sb, "The prompt should result in a stunning, shareable poster that captures the essence of %s and is perfect for social media platforms.\n\n", event.Name)
	fmt.Fprintf(sb, "Return only the detailed design prompt, nothing else.")
	return sb.String()
}

var _ Synthesizer = (*GeminiSynthesizer)(nil)
