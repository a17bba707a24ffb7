package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/leadrelay/leadrelay/internal/domain"
	"github.com/leadrelay/leadrelay/internal/prompts"
)

// LLMExtractorConfig holds configuration for the inference-backed extractor.
type LLMExtractorConfig struct {
	Enabled bool
	Model   string
	APIKey  string
	BaseURL string
}

// LLMExtractor is the primary extraction strategy. It sends the message to an
// OpenAI-compatible chat-completions endpoint with a schema-guided prompt and
// parses the structured response. Any failure is returned to the composite
// extractor, which falls back to pattern matching.
type LLMExtractor struct {
	client   *resty.Client
	model    string
	endpoint string
}

// NewLLMExtractor creates a new LLMExtractor.
// Parameters:
//   - cfg: inference configuration including model and API key.
//
// Returns:
//   - *LLMExtractor: initialized client wrapper.
func NewLLMExtractor(cfg *LLMExtractorConfig) *LLMExtractor {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Set timeout to prevent hanging requests
	client.SetTimeout(30 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &LLMExtractor{
		client:   client,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
	}
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Extract sends the text to the inference API and parses the JSON response.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - text: raw inbound message.
//
// Returns:
//   - *domain.LeadInfo: extracted fields with sentinels filled in.
//   - error: non-nil if the call fails or the response cannot be parsed.
func (e *LLMExtractor) Extract(ctx context.Context, text string) (*domain.LeadInfo, error) {
	req := chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompts.ExtractionSystemPrompt},
			{Role: "user", Content: "Text: " + text},
		},
		MaxTokens:   200,
		Temperature: 0.1,
	}

	var resp chatResponse
	httpResp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(e.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call inference API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return nil, fmt.Errorf("inference API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("inference API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("no response from inference API (status: %d)", httpResp.StatusCode())
	}

	return parseExtractionResponse(resp.Choices[0].Message.Content)
}

// parseExtractionResponse decodes the model output into a LeadInfo. Models
// occasionally wrap the JSON in a markdown fence or prepend prose despite the
// prompt, so the object is located by its braces before unmarshaling.
func parseExtractionResponse(content string) (*domain.LeadInfo, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var info domain.LeadInfo
	if err := json.Unmarshal([]byte(content[start:end+1]), &info); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}

	// The contract is three populated fields, whatever the model returned.
	if strings.TrimSpace(info.Name) == "" {
		info.Name = domain.UnknownName
	}
	if strings.TrimSpace(info.Email) == "" {
		info.Email = domain.UnknownEmail
	}
	if strings.TrimSpace(info.Company) == "" {
		info.Company = domain.UnknownCompany
	}

	return &info, nil
}
