package prompt

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

const openAIDefaultTimeout = 30 * time.Second

// OpenAIOptions configures the OpenAI chat-completions client.
type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
}

// OpenAIClient backs both prompt synthesis and social caption generation with
// the chat completions API.
type OpenAIClient struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewOpenAIClient constructs the client with sane defaults.
func NewOpenAIClient(opts OpenAIOptions) (*OpenAIClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("prompt: openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-4o"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIClient{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        model,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
	}, nil
}

// SynthesizePrompt fulfils the Synthesizer interface using a system/user
// message pair instead of Gemini's single instruction block.
func (o *OpenAIClient) SynthesizePrompt(ctx context.Context, event domain.ExtractedEvent, organizationType string) (string, error) {
	if organizationType == "" {
		organizationType = "educational"
	}
	system := fmt.Sprintf("You are an expert poster design prompt generator for %s organizations. Create detailed, professional prompts for AI image generation that will result in stunning event posters.", organizationType)
	content, err := o.complete(ctx, openAIChatRequest{
		Model: o.model,
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: buildDesignInstruction(event, organizationType)},
		},
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// Caption fulfils the Captioner interface.
func (o *OpenAIClient) Caption(ctx context.Context, req CaptionRequest) (string, error) {
	platform := strings.TrimSpace(req.Platform)
	if platform == "" {
		platform = "instagram"
	}
	system := fmt.Sprintf("You are a social media expert specializing in %s content for educational and organizational events.", platform)
	user := fmt.Sprintf(`Create an engaging %s caption for this event: %q.

Include:
- Compelling hook
- Event details
- Call to action
- Relevant hashtags
- Appropriate emojis

Keep it optimized for %s best practices.`, platform, req.EventDescription, platform)
	if req.Locale != "" && req.Locale != "en" {
		user += fmt.Sprintf("\nWrite the caption in the language for locale %q.", req.Locale)
	}
	return o.complete(ctx, openAIChatRequest{
		Model: o.model,
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   200,
		Temperature: 0.8,
	})
}

func (o *OpenAIClient) complete(ctx context.Context, payload openAIChatRequest) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", synthesisErr("encode request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", &buf)
	if err != nil {
		return "", synthesisErr("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", o.organization)
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", synthesisErr("chat completion request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", synthesisErr("read response", err)
	}
	if resp.StatusCode >= 300 {
		var detail openAIErrorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error.Message != "" {
			return "", synthesisErr(fmt.Sprintf("openai status %d: %s", resp.StatusCode, detail.Error.Message), nil)
		}
		return "", synthesisErr(fmt.Sprintf("openai status %d", resp.StatusCode), nil)
	}
	var decoded openAIChatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", synthesisErr("decode response", err)
	}
	if len(decoded.Choices) == 0 {
		return "", synthesisErr("no choices in model reply", nil)
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", synthesisErr("empty content in model reply", nil)
	}
	return content, nil
}

var (
	_ Synthesizer = (*OpenAIClient)(nil)
	_ Captioner   = (*OpenAIClient)(nil)
)
