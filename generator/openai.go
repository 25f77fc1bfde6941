package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/yaguaretech/builder/log"
	"github.com/yaguaretech/builder/models"
)

// OpenAIConfig holds the connection settings of an OpenAI-compatible endpoint
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIClient generates code through a chat completion in JSON mode
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client for any OpenAI-compatible endpoint
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" && cfg.BaseURL != "https://api.openai.com/v1" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	log.Info().Str("model", cfg.Model).Str("baseURL", cfg.BaseURL).Msg("OpenAI generator initialized")

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func (o *OpenAIClient) Name() string { return StrategyOpenAI }

// completionPayload is the JSON object the model is asked to return
type completionPayload struct {
	Code              string              `json:"code"`
	Explanation       string              `json:"explanation"`
	Files             []models.FileChange `json:"files"`
	FollowUpQuestions []string            `json:"followUpQuestions"`
}

// Generate sends the prompt and decodes the model's JSON answer
func (o *OpenAIClient) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	req = req.WithDefaults()

	chatReq := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generationSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Context + "\n\n" + req.Prompt},
		},
		Temperature: *req.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	log.Debug().
		Str("model", o.model).
		Str("prompt", req.Prompt).
		Float32("temperature", *req.Temperature).
		Msg("openai request")

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		log.Error().Err(err).Msg("completion failed")
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	if len(resp.Choices) == 0 {
		log.Error().Interface("response", resp).Msg("openai response has no choices")
		return nil, fmt.Errorf("%w: empty completion", ErrGeneration)
	}

	content := resp.Choices[0].Message.Content
	log.Debug().
		Str("finishReason", string(resp.Choices[0].FinishReason)).
		Int("promptTokens", resp.Usage.PromptTokens).
		Int("completionTokens", resp.Usage.CompletionTokens).
		Msg("openai response")

	result, err := parseCompletion(content)
	if err != nil {
		return nil, err
	}
	result.GenerationID = resp.ID
	if result.GenerationID == "" {
		result.GenerationID = "gen_" + uuid.NewString()
	}
	return result, nil
}

// parseCompletion decodes the model output, tolerating a fenced code block
// around the JSON object
func parseCompletion(content string) (*models.GenerationResult, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	var payload completionPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("%w: decode completion: %w", ErrGeneration, err)
	}

	files := sanitizeFiles(payload.Files)
	if payload.Code == "" && len(files) == 0 {
		return nil, fmt.Errorf("%w: completion carried no code", ErrGeneration)
	}

	return &models.GenerationResult{
		Code:              payload.Code,
		Explanation:       payload.Explanation,
		Files:             files,
		FollowUpQuestions: payload.FollowUpQuestions,
	}, nil
}

const generationSystemPrompt = `You are a senior full-stack engineer generating code for a web app builder.

Answer with a single JSON object and nothing else:

{
  "code": "<main source of the generated component>",
  "explanation": "<short explanation in Spanish of what you generated>",
  "files": [
    {"path": "src/App.tsx", "content": "<file content>", "action": "create" | "update" | "delete"}
  ],
  "followUpQuestions": ["<question in Spanish>", "..."]
}

Rules:
- Paths are relative to the project root and use forward slashes.
- The entry component lives at src/App.tsx.
- Use React with TypeScript and Tailwind CSS classes for the frontend.
- Ask follow-up questions when the request is ambiguous.`
