package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"posterforge/internal/domain"
)

const geminiDefaultTimeout = 60 * time.Second

// GeminiOptions configures the Gemini vision extractor.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
	Now        func() time.Time
}

// GeminiExtractor asks a multimodal Gemini model to enumerate every event
// visible in a calendar or document image and parses the structured reply.
type GeminiExtractor struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
	now     func() time.Time
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
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

// NewGeminiExtractor constructs the extractor with sane defaults.
func NewGeminiExtractor(opts GeminiOptions) (*GeminiExtractor, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("vision: gemini api key is required")
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
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &GeminiExtractor{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
		logger:  logger,
		now:     now,
	}, nil
}

// ExtractEvents fulfils the Extractor interface. Every failure mode is
// normalized to *ExtractionError; the method never panics past its boundary.
func (g *GeminiExtractor) ExtractEvents(ctx context.Context, imageData []byte, mime string) ([]domain.ExtractedEvent, error) {
	if len(imageData) == 0 {
		return nil, extractionErr("image data is empty", nil)
	}
	if mime == "" {
		mime = "image/png"
	}
	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: extractionInstruction},
				{InlineData: &geminiInlineData{
					MimeType: mime,
					Data:     base64.StdEncoding.EncodeToString(imageData),
				}},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     0.1,
			TopK:            32,
			TopP:            1,
			MaxOutputTokens: 4096,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, extractionErr("encode request", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, extractionErr("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, extractionErr("image analysis request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, extractionErr("read response", err)
	}
	if resp.StatusCode >= 300 {
		var detail geminiErrorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error.Message != "" {
			return nil, extractionErr(fmt.Sprintf("gemini status %d: %s", resp.StatusCode, detail.Error.Message), nil)
		}
		return nil, extractionErr(fmt.Sprintf("gemini status %d", resp.StatusCode), nil)
	}
	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, extractionErr("decode response", err)
	}
	text := firstText(decoded)
	if text == "" {
		return nil, extractionErr("no content received from gemini", nil)
	}

	events, err := parseEvents(text)
	if err != nil {
		return nil, err
	}
	stamp := g.now().UnixMilli()
	for i := range events {
		events[i].ID = fmt.Sprintf("event_%d_%d", stamp, i)
	}
	g.logger.Debug().
		Str("model", g.model).
		Int("events", len(events)).
		Msg("vision: extracted events from image")
	return events, nil
}

func firstText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

const extractionInstruction = `Analyze this calendar/document image and extract ALL events, holidays, and important dates. For each event, provide comprehensive details.

IMPORTANT: Return ONLY valid JSON in this exact format:
{
  "events": [
    {
      "name": "Event Name",
      "date": "Month DD, YYYY",
      "day": "Day of Week",
      "type": "holiday|festival|vacation|celebration|academic|cultural",
      "description": "Detailed description for poster creation",
      "category": "Religious|National|Academic|Cultural|Seasonal",
      "importance": "high|medium|low",
      "colors": ["#color1", "#color2", "#color3"],
      "keywords": ["keyword1", "keyword2", "keyword3"]
    }
  ]
}

Guidelines:
- Extract ALL visible events/dates
- Provide rich descriptions suitable for poster design
- Suggest appropriate color schemes for each event
- Include relevant keywords for design themes
- Categorize events properly
- Consider cultural significance for Indian festivals
- Make descriptions engaging and poster-worthy`

var _ Extractor = (*GeminiExtractor)(nil)
