// Package gemini implements the AI enrichment collaborator on top of the
// Google Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/trackflow/tracking-service/internal/api/metrics"
	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	defaultTimeout = 20 * time.Second

	temperature     = 0.3
	maxOutputTokens = 1024

	defaultConfidence  = 0.7
	fallbackConfidence = 0.5
)

const instructions = `You are a parcel tracking assistant. You will receive a list of technical shipment events in JSON format. ` +
	`Your tasks are: 1) Write a brief, friendly summary in Czech (2-3 sentences) from the perspective of the recipient. ` +
	`2) Estimate the delivery date and time if the data makes this possible. 3) Flag any issues or delays clearly. ` +
	`Write naturally, without technical jargon. Do not use bullet points. ` +
	`Respond only with a JSON object in this exact format: ` +
	`{ "summary": string, "estimatedDelivery": string | null, "hasIssue": boolean, "issueDescription": string | null }`

// Config captures the settings for the Gemini summarizer.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the API endpoint. Empty uses the public endpoint.
	BaseURL string
}

// generator produces raw model text for a prompt.
type generator interface {
	generate(ctx context.Context, model, prompt string) (string, error)
}

type Summarizer struct {
	gen     generator
	model   string
	timeout time.Duration
	logger  zerolog.Logger
}

var _ ports.Summarizer = (*Summarizer)(nil)

// New creates a Summarizer. It returns a disabled summarizer, which always
// fails with domain.ErrSummaryUnavailable, when no API key is configured.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Summarizer, error) {
	s := &Summarizer{model: cfg.Model, timeout: cfg.Timeout, logger: logger}
	if s.model == "" {
		s.model = DefaultModel
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if cfg.APIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set, AI summaries disabled")
		return s, nil
	}

	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	s.gen = &genaiGenerator{client: client}
	return s, nil
}

// Enabled reports whether an API key was configured.
func (s *Summarizer) Enabled() bool {
	return s.gen != nil
}

type promptEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Location    *string   `json:"location"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
}

// Summarize asks the model for a recipient-facing summary of events.
func (s *Summarizer) Summarize(ctx context.Context, events []domain.TrackingEvent) (*domain.Summary, error) {
	if s.gen == nil {
		return nil, domain.ErrSummaryUnavailable
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: no events", domain.ErrSummaryUnavailable)
	}

	payload := make([]promptEvent, len(events))
	for i, e := range events {
		payload[i] = promptEvent{
			Timestamp:   e.Timestamp,
			Location:    e.Location,
			Status:      string(e.StatusCode),
			Description: e.DescriptionRaw,
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.generate(ctx, s.model, instructions+"\n\n"+string(data))
	if err != nil {
		metrics.SummariesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrSummaryUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.SummariesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: empty model response", domain.ErrSummaryUnavailable)
	}

	summary, ok := ParseSummary(text)
	if ok {
		metrics.SummariesTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.SummariesTotal.WithLabelValues("unparsed").Inc()
		s.logger.Debug().Int("length", len(text)).Msg("model response was not JSON, using raw text")
	}
	return summary, nil
}

type modelSummary struct {
	Summary           string   `json:"summary"`
	EstimatedDelivery *string  `json:"estimatedDelivery"`
	Confidence        *float64 `json:"confidence"`
	HasIssue          bool     `json:"hasIssue"`
	IssueDescription  *string  `json:"issueDescription"`
}

// ParseSummary extracts the JSON object from the model text. When there is
// none, the whole text becomes the summary and ok is false.
func ParseSummary(text string) (*domain.Summary, bool) {
	raw := text
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		raw = text[start : end+1]
	}

	var m modelSummary
	if err := json.Unmarshal([]byte(raw), &m); err != nil || strings.TrimSpace(m.Summary) == "" {
		return &domain.Summary{Summary: text, Confidence: fallbackConfidence}, false
	}

	out := &domain.Summary{
		Summary:           strings.TrimSpace(m.Summary),
		EstimatedDelivery: nonEmpty(m.EstimatedDelivery),
		Confidence:        defaultConfidence,
		HasIssue:          m.HasIssue,
		IssueDescription:  nonEmpty(m.IssueDescription),
	}
	if m.Confidence != nil {
		out.Confidence = *m.Confidence
	}
	return out, true
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

type genaiGenerator struct {
	client *genai.Client
}

func (g *genaiGenerator) generate(ctx context.Context, model, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}
