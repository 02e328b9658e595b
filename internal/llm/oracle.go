// Package llm extracts contact candidates from pages the deterministic
// extractors could not read, by asking a chat-completion model to pull
// people out of a Markdown rendering of the page.
package llm

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

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/kaptinlin/jsonrepair"
	"github.com/mitchellh/mapstructure"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/logger"
	"github.com/jonesrussell/contactscout/internal/normalize"
)

const (
	// DefaultTimeout bounds one oracle call. A slow model is treated as
	// having found nothing rather than stalling discovery.
	DefaultTimeout = 20 * time.Second
	// DefaultConfidence is assigned to LLM records that carry no
	// confidence of their own.
	DefaultConfidence = 0.6
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	// maxMarkdownChars caps the page content sent to the model.
	maxMarkdownChars = 12000

	// maxResponseBodyBytes limits the size of model responses.
	maxResponseBodyBytes = 1 * 1024 * 1024
)

const systemPrompt = `You extract contact information for people from web page content.
Reply with a JSON array only. Each element: {"first_name", "last_name",
"job_title", "department", "email", "phone", "confidence"}. Use empty
strings for unknown fields and a confidence between 0 and 1. Reply with []
when the page lists no people.`

// Oracle produces contact candidates for a page.
type Oracle interface {
	ExtractContacts(ctx context.Context, pageURL, html string) ([]domain.ContactCandidate, error)
}

// Config configures an HTTPOracle.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// HTTPOracle calls an OpenAI-compatible chat completions endpoint.
type HTTPOracle struct {
	cfg        Config
	httpClient *http.Client
	log        logger.Interface
}

// NewHTTPOracle creates an oracle against cfg.Endpoint.
func NewHTTPOracle(cfg Config, log logger.Interface) *HTTPOracle {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &HTTPOracle{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.WithComponent("llm"),
	}
}

// record is the shape the model is asked to produce per person.
type record struct {
	FirstName  string  `mapstructure:"first_name"`
	LastName   string  `mapstructure:"last_name"`
	JobTitle   string  `mapstructure:"job_title"`
	Department string  `mapstructure:"department"`
	Email      string  `mapstructure:"email"`
	Phone      string  `mapstructure:"phone"`
	Confidence float64 `mapstructure:"confidence"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ExtractContacts renders the page to Markdown and asks the model for the
// people on it. A timeout is not an error: discovery moves on with whatever
// the deterministic extractors found.
func (o *HTTPOracle) ExtractContacts(ctx context.Context, pageURL, html string) ([]domain.ContactCandidate, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("failed to convert page to markdown: %w", err)
	}
	if len(markdown) > maxMarkdownChars {
		markdown = markdown[:maxMarkdownChars]
	}
	if strings.TrimSpace(markdown) == "" {
		return nil, nil
	}

	content, err := o.complete(ctx, markdown)
	if err != nil {
		if isTimeout(ctx, err) {
			o.log.Warn("oracle timed out, skipping page", "url", pageURL)
			return nil, nil
		}
		return nil, err
	}

	records, err := parseRecords(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse oracle reply: %w", err)
	}

	candidates := make([]domain.ContactCandidate, 0, len(records))
	for _, rec := range records {
		c := rec.toCandidate(pageURL)
		if c.Valid() {
			candidates = append(candidates, c)
		}
	}

	o.log.Debug("oracle extracted candidates", "url", pageURL, "count", len(candidates))
	return candidates, nil
}

// complete sends one chat completion request and returns the reply content.
func (o *HTTPOracle) complete(ctx context.Context, markdown string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: o.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: markdown},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if unmarshalErr := json.Unmarshal(respBody, &parsed); unmarshalErr != nil {
		return "", fmt.Errorf("failed to decode response: %w", unmarshalErr)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("oracle returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// parseRecords decodes the model's reply, repairing sloppy JSON first when
// plain unmarshaling fails.
func parseRecords(content string) ([]record, error) {
	raw := extractJSONArray(content)

	var items []map[string]any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return nil, fmt.Errorf("unmarshal: %w, repair: %w", err, repairErr)
		}
		if err = json.Unmarshal([]byte(repaired), &items); err != nil {
			return nil, fmt.Errorf("unmarshal repaired JSON: %w", err)
		}
	}

	records := make([]record, 0, len(items))
	for _, item := range items {
		var rec record
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &rec,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build decoder: %w", err)
		}
		if err := decoder.Decode(item); err != nil {
			// One malformed record does not spoil the rest.
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// extractJSONArray strips prose and code fences around the reply's array.
func extractJSONArray(content string) string {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}

// toCandidate converts a model record into a normalized candidate.
func (r *record) toCandidate(pageURL string) domain.ContactCandidate {
	confidence := r.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = DefaultConfidence
	}

	c := domain.ContactCandidate{
		Source:        domain.SourceLLM,
		FirstName:     strings.TrimSpace(r.FirstName),
		LastName:      strings.TrimSpace(r.LastName),
		JobTitle:      strings.TrimSpace(r.JobTitle),
		Department:    strings.TrimSpace(r.Department),
		Email:         r.Email,
		Phone:         r.Phone,
		DiscoveryURL:  pageURL,
		RawConfidence: confidence,
	}
	normalize.Candidate(&c)
	return c
}

// isTimeout reports whether an oracle call failed on a deadline.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout exceeded")
}

// Disabled is an Oracle that never finds anything, used when no endpoint is
// configured.
type Disabled struct{}

// NewDisabled returns the no-op oracle.
func NewDisabled() *Disabled { return &Disabled{} }

// ExtractContacts returns no candidates.
func (*Disabled) ExtractContacts(context.Context, string, string) ([]domain.ContactCandidate, error) {
	return nil, nil
}
