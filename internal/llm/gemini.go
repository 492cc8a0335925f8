// internal/llm/gemini.go
package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/jguerrero45/dashboard-insights/internal/config"
)

// GeminiClient implements TextGenerator on top of the Gemini API. Output is
// requested as application/json.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	cfg    config.AIConfig
	logger *logrus.Logger
}

func NewGeminiClient(ctx context.Context, cfg config.AIConfig, logger *logrus.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ConfigurationError{Setting: "GEMINI_API_KEY"}
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, &ConfigurationError{Setting: "GEMINI_MODEL"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, &TransportError{Model: cfg.Model, Err: err}
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.SetTopP(cfg.TopP)
	model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	model.ResponseMIMEType = "application/json"

	return &GeminiClient{
		client: client,
		model:  model,
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		g.logger.WithError(err).WithField("model", g.cfg.Model).Warn("Gemini call failed")
		return "", &TransportError{Model: g.cfg.Model, Err: err}
	}

	text := firstCandidateText(resp)
	g.logger.WithFields(logrus.Fields{
		"model":      g.cfg.Model,
		"prompt_len": len(prompt),
		"reply_len":  len(text),
	}).Debug("Gemini call completed")
	return text, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		return strings.TrimSpace(b.String())
	}
	return ""
}
