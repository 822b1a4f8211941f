package ai

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/resumatch/internal/model"
	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
)

//go:embed prompt.md
var promptTemplate string

//go:embed report.schema.json
var reportSchemaJSON string

var reportSchema = gojsonschema.NewStringLoader(reportSchemaJSON)

// sleep waits d or until ctx is done, whichever comes first.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

const defaultMaxLogLength = 200

type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Timeout     time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 2 * time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 10 * time.Second
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	return p
}

// backoff is the sleep before retry number attempt (1 based): the base
// delay doubled per attempt, capped, with the upper half jittered.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt && d < p.MaxDelay; i++ {
		d *= 2
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	half := d / 2
	return half + rand.N(half+1)
}

// Matcher asks a provider for a structured resume/job match report.
type Matcher struct {
	provider  IProvider
	model     string
	policy    RetryPolicy
	maxLogLen int
}

func NewMatcher(provider IProvider, model string, policy RetryPolicy) *Matcher {
	return &Matcher{
		provider:  provider,
		model:     model,
		policy:    policy.withDefaults(),
		maxLogLen: defaultMaxLogLength,
	}
}

func (m *Matcher) ProviderName() string {
	return m.provider.Name()
}

func (m *Matcher) ModelName() string {
	return m.model
}

// Analyze runs the match prompt with bounded retries. Transport failures,
// timeouts and malformed output are retried; ErrUnavailable is not. The
// returned error always wraps ErrProvider.
func (m *Matcher) Analyze(ctx context.Context, resumeText, jobText string) (*model.MatchReport, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("provider", m.provider.Name()), zap.String("model", m.model))
	prompt := buildPrompt(resumeText, jobText)
	logger.Debug("match request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", truncateForLog(prompt, m.maxLogLen)),
	)

	var lastErr error
	attempt := 1
	for ; attempt <= m.policy.MaxAttempts; attempt++ {
		report, err := m.attempt(ctx, prompt)
		if err == nil {
			logger.Debug("match response parsed", zap.Int("attempt", attempt))
			return report, nil
		}
		lastErr = err
		logger.Warn("match attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		if errors.Is(err, appErr.ErrUnavailable) || ctx.Err() != nil {
			break
		}
		if attempt < m.policy.MaxAttempts {
			if err := sleep(ctx, m.policy.backoff(attempt)); err != nil {
				lastErr = errors.Join(lastErr, err)
				break
			}
		}
	}
	if attempt > m.policy.MaxAttempts {
		attempt = m.policy.MaxAttempts
	}
	return nil, fmt.Errorf("%w after %d attempt(s): %w", appErr.ErrProvider, attempt, lastErr)
}

func (m *Matcher) attempt(ctx context.Context, prompt string) (*model.MatchReport, error) {
	if m.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.policy.Timeout)
		defer cancel()
	}
	raw, err := m.provider.Generate(ctx, m.model, prompt)
	if err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Debug("match response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", truncateForLog(raw, m.maxLogLen)),
	)
	return ParseReport(raw)
}

func buildPrompt(resumeText, jobText string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{RESUME_TEXT}}", resumeText)
	return strings.ReplaceAll(prompt, "{{JOB_TEXT}}", jobText)
}

// ParseReport pulls the JSON object out of a completion, validates it
// against the report schema and decodes it.
func ParseReport(raw string) (*model.MatchReport, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty provider response")
	}
	result, err := gojsonschema.Validate(reportSchema, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("parse provider response: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("provider response does not match schema: %s", strings.Join(msgs, "; "))
	}
	var report model.MatchReport
	if err := json.Unmarshal([]byte(cleaned), &report); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	return &report, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, "```"); idx != -1 {
		body := raw[idx+3:]
		body = strings.TrimPrefix(body, "json")
		if end := strings.Index(body, "```"); end != -1 {
			body = body[:end]
		}
		raw = strings.TrimSpace(body)
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}

func truncateForLog(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
