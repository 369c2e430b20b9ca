package perception

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"google.golang.org/genai"

	"mtgcollections/internal/ratelimit"
	"mtgcollections/internal/types"
)

// DefaultVisionModel is used when no model is configured.
const DefaultVisionModel = "gemini-2.5-pro"

const systemInstruction = `You're a MTG specialist that can detect card names and their language from photos.
Always respond with valid JSON following this schema:
{
  "cards": [
    {
      "name": "card name",
      "language": "en" or "pt"
    }
  ]
}`

const extractionPrompt = `Given this photo of MTG cards, return a JSON object containing an array of cards with their names and languages (en for English, pt for Portuguese).
Include all occurrences of duplicate cards.
Make sure the response is valid JSON that can be parsed.`

// contentGenerator is the slice of the genai SDK the vision client uses.
// *genai.Models satisfies it; tests substitute a fake.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// VisionConfig holds configuration for the vision client.
type VisionConfig struct {
	APIKey  string
	Model   string
	Limiter ratelimit.Limiter // nil disables pacing
}

// VisionClient extracts card observations from photos using Gemini.
// It keeps no state between calls apart from the limiter.
type VisionClient struct {
	models  contentGenerator
	model   string
	limiter ratelimit.Limiter
}

// NewVisionClient creates a Gemini-backed vision client.
func NewVisionClient(ctx context.Context, cfg VisionConfig) (*VisionClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vision API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newVisionClientWithGenerator(client.Models, cfg), nil
}

func newVisionClientWithGenerator(models contentGenerator, cfg VisionConfig) *VisionClient {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultVisionModel
	}
	return &VisionClient{
		models:  models,
		model:   model,
		limiter: ratelimit.OrUnlimited(cfg.Limiter),
	}
}

// Model returns the model name requests are sent to.
func (c *VisionClient) Model() string {
	return c.model
}

// ExtractCards sends one photo to the model and returns every card it saw.
// Request failures are *types.UpstreamError; replies that do not parse or
// do not match the card shape are *types.MalformedResponseError.
func (c *VisionClient) ExtractCards(ctx context.Context, image []byte, mimeType string) (types.Collection, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return types.Collection{}, err
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(extractionPrompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    cardsSchema(),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return types.Collection{}, err
		}
		return types.Collection{}, &types.UpstreamError{Service: types.ServiceVision, StatusCode: apiStatus(err), Err: err}
	}
	if resp == nil {
		return types.Collection{}, malformed("no response returned", nil)
	}

	return DecodeCards(resp.Text())
}

// cardsSchema builds the response schema; the language enum comes from the
// shared language set.
func cardsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"cards": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":     {Type: genai.TypeString},
						"language": {Type: genai.TypeString, Enum: types.LanguageStrings()},
					},
					Required: []string{"name", "language"},
				},
			},
		},
		Required: []string{"cards"},
	}
}

// apiStatus pulls the HTTP status out of a genai API error, if there is one.
func apiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}

// MIMETypeFor maps an image path to the MIME type sent with its bytes.
func MIMETypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
