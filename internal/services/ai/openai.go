package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/zenithflow/zenithflow/internal/models"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements the Provider interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// GenerateRitualPlan produces the morning plan from goals, routine, and open work.
func (p *OpenAIProvider) GenerateRitualPlan(ctx context.Context, input RitualInput) (models.RitualPlan, error) {
	system := "You are a calm, pragmatic productivity coach building a realistic morning plan. Respond with valid JSON only."
	content, err := p.complete(ctx, "ritual_plan", system, buildRitualPrompt(input))
	if err != nil {
		return models.RitualPlan{}, fmt.Errorf("failed to generate ritual plan: %w", err)
	}

	var plan models.RitualPlan
	if err := ExtractJSON(content, &plan); err != nil {
		return models.RitualPlan{}, fmt.Errorf("failed to parse ritual plan: %w", err)
	}
	if plan.Advice == "" && len(plan.Tasks) == 0 {
		return models.RitualPlan{}, errors.New("empty ritual plan")
	}
	return plan, nil
}

// AnalyzeReflection structures a daily review into an insight, book reference,
// and action item.
func (p *OpenAIProvider) AnalyzeReflection(ctx context.Context, input ReflectionInput) (models.ReflectionAnalysis, error) {
	system := "You are a reflective coach grounding observations in well-known books. Respond with valid JSON only."
	content, err := p.complete(ctx, "reflection", system, buildReflectionPrompt(input))
	if err != nil {
		return models.ReflectionAnalysis{}, fmt.Errorf("failed to analyze reflection: %w", err)
	}

	var analysis models.ReflectionAnalysis
	if err := ExtractJSON(content, &analysis); err != nil {
		return models.ReflectionAnalysis{}, fmt.Errorf("failed to parse reflection analysis: %w", err)
	}
	if analysis.Insight == "" {
		return models.ReflectionAnalysis{}, errors.New("empty reflection analysis")
	}
	return analysis, nil
}

// SynthesizePeriod condenses a run of daily insights.
func (p *OpenAIProvider) SynthesizePeriod(ctx context.Context, input PeriodInput) (models.WeeklyAnalysis, error) {
	system := "You are a coach who finds recurring patterns across many days of notes. Respond with valid JSON only."
	content, err := p.complete(ctx, "period_synthesis", system, buildPeriodPrompt(input))
	if err != nil {
		return models.WeeklyAnalysis{}, fmt.Errorf("failed to synthesize period: %w", err)
	}

	var analysis models.WeeklyAnalysis
	if err := ExtractJSON(content, &analysis); err != nil {
		return models.WeeklyAnalysis{}, fmt.Errorf("failed to parse period synthesis: %w", err)
	}
	if analysis.Summary == "" {
		return models.WeeklyAnalysis{}, errors.New("empty period synthesis")
	}
	return analysis, nil
}

// AnalyzeFinances reviews ledger entries against the budget.
func (p *OpenAIProvider) AnalyzeFinances(ctx context.Context, input FinanceInput) (models.FinanceAnalysis, error) {
	system := "You are a grounded personal finance advisor. Respond with valid JSON only."
	content, err := p.complete(ctx, "finance_review", system, buildFinancePrompt(input))
	if err != nil {
		return models.FinanceAnalysis{}, fmt.Errorf("failed to analyze finances: %w", err)
	}

	var analysis models.FinanceAnalysis
	if err := ExtractJSON(content, &analysis); err != nil {
		return models.FinanceAnalysis{}, fmt.Errorf("failed to parse finance analysis: %w", err)
	}
	switch analysis.OverallStatus {
	case "Growth", "Refining", "Cautious":
	default:
		analysis.OverallStatus = "Refining"
	}
	return analysis, nil
}

// complete sends one system+user exchange and returns the raw content.
func (p *OpenAIProvider) complete(ctx context.Context, operation, system, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	requestID := ExtractRequestID(ctx)
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", apiErr
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(config map[string]string) (Provider, error) {
		apiKey, ok := config["api_key"]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}
		return NewOpenAIProviderWithLogger(apiKey, config["base_url"], config["model"], nil, false), nil
	})
}
