package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/dhabedank/workflow-lens/internal/core"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiAPIAdapter calls the Gemini API with a response schema derived from
// the request's output contract.
type GeminiAPIAdapter struct {
	client      *genai.Client
	apiKey      string
	model       string
	temperature float64
}

// NewGeminiAPIAdapter creates a Gemini API adapter.
func NewGeminiAPIAdapter(config Config) (*GeminiAPIAdapter, error) {
	apiKey := config.GeminiAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, missingCredentials(ProviderGeminiAPI, "GEMINI_API_KEY")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiAPIAdapter{
		client:      client,
		apiKey:      apiKey,
		model:       model,
		temperature: config.Temperature,
	}, nil
}

func (a *GeminiAPIAdapter) Name() string {
	return ProviderGeminiAPI
}

func (a *GeminiAPIAdapter) IsAvailable() bool {
	return a.apiKey != ""
}

func (a *GeminiAPIAdapter) Generate(ctx context.Context, req core.GenerationRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		MaxOutputTokens:   int32(req.MaxTokens),
		Temperature:       genai.Ptr(float32(a.temperature)),
		ResponseMIMEType:  "application/json",
	}
	if req.Contract != nil {
		cfg.ResponseSchema = contractSchema(*req.Contract)
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(req.User), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", statusFailure(a.Name(), apiErr.Code, fmt.Errorf("gemini API error: %w", err))
		}
		return "", transportFailure(a.Name(), err)
	}
	return resp.Text(), nil
}

// contractSchema mirrors a contract as a Gemini response schema. Upper
// bounds are left to normalization so an overlong list is trimmed rather
// than refused by the API.
func contractSchema(c core.Contract) *genai.Schema {
	root := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(c.Fields)),
	}
	for _, f := range c.Fields {
		s := &genai.Schema{Description: f.Description}
		switch f.Kind {
		case core.KindString:
			s.Type = genai.TypeString
		case core.KindStringList:
			s.Type = genai.TypeArray
			s.Items = &genai.Schema{Type: genai.TypeString}
		case core.KindStepList, core.KindRecordList:
			s.Type = genai.TypeArray
			s.Items = recordSchema(f)
		}
		if f.Kind.IsList() && f.Min > 0 {
			s.MinItems = genai.Ptr(int64(f.Min))
		}
		root.Properties[f.Name] = s
		if f.Required {
			root.Required = append(root.Required, f.Name)
		}
	}
	return root
}

func recordSchema(f core.FieldSpec) *genai.Schema {
	item := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(f.Keys)),
	}
	for _, k := range f.Keys {
		switch k {
		case "maps_to", "examples":
			item.Properties[k] = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
		default:
			item.Properties[k] = &genai.Schema{Type: genai.TypeString}
		}
	}
	if f.Kind == core.KindStepList {
		item.Required = []string{"label", "actor"}
	}
	return item
}
