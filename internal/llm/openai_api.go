package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dhabedank/workflow-lens/internal/core"
)

const (
	defaultOpenAIModel   = "gpt-4.1-mini"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
)

type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	MaxTokens      int                   `json:"max_tokens,omitempty"`
	Temperature    float64               `json:"temperature"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAIAPIAdapter calls the chat completions endpoint in JSON object mode.
type OpenAIAPIAdapter struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewOpenAIAPIAdapter creates an OpenAI API adapter.
func NewOpenAIAPIAdapter(config Config) (*OpenAIAPIAdapter, error) {
	apiKey := config.OpenAIAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, missingCredentials(ProviderOpenAIAPI, "OPENAI_API_KEY")
	}

	baseURL := strings.TrimRight(config.OpenAIBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}

	return &OpenAIAPIAdapter{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		temperature: config.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

func (a *OpenAIAPIAdapter) Name() string {
	return ProviderOpenAIAPI
}

func (a *OpenAIAPIAdapter) IsAvailable() bool {
	return a.apiKey != ""
}

func (a *OpenAIAPIAdapter) Generate(ctx context.Context, req core.GenerationRequest) (string, error) {
	body, err := json.Marshal(openAIRequest{
		Model: a.model,
		Messages: []openAIMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens:      req.MaxTokens,
		Temperature:    a.temperature,
		ResponseFormat: &openAIResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", transportFailure(a.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportFailure(a.Name(), fmt.Errorf("failed to read response: %w", err))
	}

	var parsed openAIResponse
	decodeErr := json.Unmarshal(respBody, &parsed)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		if decodeErr == nil && parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", statusFailure(a.Name(), resp.StatusCode, fmt.Errorf("openai API status %d: %s", resp.StatusCode, msg))
	}
	if decodeErr != nil {
		return "", &core.GenerationFailure{Kind: core.FailureService, Provider: a.Name(), Err: fmt.Errorf("failed to decode response: %w", decodeErr)}
	}
	if parsed.Error != nil {
		return "", &core.GenerationFailure{Kind: core.FailureService, Provider: a.Name(), Err: fmt.Errorf("openai API error: %s", parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 {
		return "", &core.GenerationFailure{Kind: core.FailureService, Provider: a.Name(), Err: fmt.Errorf("no completion returned")}
	}

	fields := log.Fields{
		"model":         a.model,
		"finish_reason": parsed.Choices[0].FinishReason,
		"response_size": len(parsed.Choices[0].Message.Content),
	}
	if parsed.Usage != nil {
		fields["tokens_in"] = parsed.Usage.PromptTokens
		fields["tokens_out"] = parsed.Usage.CompletionTokens
	}
	log.WithFields(fields).Debug("openai response")

	return parsed.Choices[0].Message.Content, nil
}
