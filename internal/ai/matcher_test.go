package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
)

const validReport = `{
  "overall_match": {"score": 77, "summary": "good", "strengths": ["go"], "weaknesses": []},
  "skills_analysis": [{"skill": "Go", "category": "hard_skill", "match": 79}],
  "experience": {"match": 81, "summary": "ok", "details": [{"position": "dev"}]},
  "education": {"match": 60},
  "risks": [],
  "interview_questions": [{"question": "why?"}]
}`

type scriptedProvider struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	replies []func(ctx context.Context) (string, error)
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(ctx context.Context, _ string, prompt string) (string, error) {
	p.mu.Lock()
	idx := p.calls
	p.calls++
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()
	if idx >= len(p.replies) {
		idx = len(p.replies) - 1
	}
	return p.replies[idx](ctx)
}

func reply(s string, err error) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return s, err }
}

func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	original := sleep
	sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	t.Cleanup(func() { sleep = original })
	return &slept
}

func TestMatcherRetriesThenSucceeds(t *testing.T) {
	slept := stubSleep(t)
	p := &scriptedProvider{replies: []func(context.Context) (string, error){
		reply("", errors.New("connection reset")),
		reply("not json at all", nil),
		reply("```json\n"+validReport+"\n```", nil),
	}}
	m := NewMatcher(p, "m1", RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second, MaxDelay: 10 * time.Second})

	report, err := m.Analyze(context.Background(), "resume body", "job body")
	require.NoError(t, err)
	require.Equal(t, 3, p.calls)
	require.Len(t, *slept, 2)
	require.Equal(t, 77.0, report.OverallScore())
	require.Equal(t, 79.0, *report.SkillsAnalysis[0].Match)
	require.True(t, strings.Contains(p.prompts[0], "resume body"))
	require.True(t, strings.Contains(p.prompts[0], "job body"))
	require.Equal(t, "scripted", m.ProviderName())
	require.Equal(t, "m1", m.ModelName())
}

func TestMatcherExhaustsAttempts(t *testing.T) {
	slept := stubSleep(t)
	p := &scriptedProvider{replies: []func(context.Context) (string, error){
		reply(`{"overall_match": {"score": "high"}}`, nil),
	}}
	m := NewMatcher(p, "m1", RetryPolicy{MaxAttempts: 3})

	_, err := m.Analyze(context.Background(), "r", "j")
	require.ErrorIs(t, err, appErr.ErrProvider)
	require.Equal(t, 3, p.calls)
	require.Len(t, *slept, 2)
}

func TestMatcherDoesNotRetryUnavailable(t *testing.T) {
	slept := stubSleep(t)
	p := &scriptedProvider{replies: []func(context.Context) (string, error){
		reply("", appErr.ErrUnavailable),
	}}
	m := NewMatcher(p, "m1", RetryPolicy{MaxAttempts: 3})

	_, err := m.Analyze(context.Background(), "r", "j")
	require.ErrorIs(t, err, appErr.ErrProvider)
	require.ErrorIs(t, err, appErr.ErrUnavailable)
	require.Equal(t, 1, p.calls)
	require.Empty(t, *slept)
}

func TestMatcherPerAttemptTimeout(t *testing.T) {
	stubSleep(t)
	p := &scriptedProvider{replies: []func(context.Context) (string, error){
		func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
		reply(validReport, nil),
	}}
	m := NewMatcher(p, "m1", RetryPolicy{MaxAttempts: 3, Timeout: 10 * time.Millisecond})

	report, err := m.Analyze(context.Background(), "r", "j")
	require.NoError(t, err)
	require.Equal(t, 2, p.calls)
	require.Equal(t, 77.0, report.OverallScore())
}

func TestMatcherStopsWaitingWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := &scriptedProvider{replies: []func(context.Context) (string, error){
		func(context.Context) (string, error) {
			time.AfterFunc(20*time.Millisecond, cancel)
			return "", errors.New("connection reset")
		},
		reply(validReport, nil),
	}}
	m := NewMatcher(p, "m1", RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour, MaxDelay: time.Hour})

	start := time.Now()
	_, err := m.Analyze(ctx, "r", "j")
	require.ErrorIs(t, err, appErr.ErrProvider)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, p.calls)
	require.Less(t, time.Since(start), 10*time.Second)
}

func TestMockProviderDegradesImmediately(t *testing.T) {
	slept := stubSleep(t)
	p, err := NewProvider("mock", nil)
	require.NoError(t, err)
	_, err = NewMatcher(p, "", RetryPolicy{}).Analyze(context.Background(), "r", "j")
	require.ErrorIs(t, err, appErr.ErrUnavailable)
	require.Empty(t, *slept)
}

func TestBackoff(t *testing.T) {
	p := RetryPolicy{BaseDelay: 2 * time.Second, MaxDelay: 10 * time.Second}.withDefaults()
	tests := []struct {
		attempt int
		max     time.Duration
	}{
		{attempt: 1, max: 2 * time.Second},
		{attempt: 2, max: 4 * time.Second},
		{attempt: 3, max: 8 * time.Second},
		{attempt: 4, max: 10 * time.Second},
		{attempt: 9, max: 10 * time.Second},
	}
	for _, tt := range tests {
		for i := 0; i < 20; i++ {
			d := p.backoff(tt.attempt)
			require.GreaterOrEqual(t, d, tt.max/2)
			require.LessOrEqual(t, d, tt.max)
		}
	}
}

func TestParseReport(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "plain", raw: validReport, ok: true},
		{name: "fenced", raw: "```json\n" + validReport + "\n```", ok: true},
		{name: "chatter around", raw: "Here you go:\n" + validReport + "\nThanks", ok: true},
		{name: "minimal", raw: `{"overall_match": {"score": 50}}`, ok: true},
		{name: "empty", raw: "", ok: false},
		{name: "truncated", raw: `{"overall_match": {"score": 50}`, ok: false},
		{name: "missing overall", raw: `{"skills_analysis": []}`, ok: false},
		{name: "score not number", raw: `{"overall_match": {"score": "50"}}`, ok: false},
		{name: "skill without name", raw: `{"overall_match": {"score": 5}, "skills_analysis": [{"match": 3}]}`, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := ParseReport(tt.raw)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, report.OverallMatch)
		})
	}
}

func TestTruncateForLog(t *testing.T) {
	require.Equal(t, "abc", truncateForLog("abc", 5))
	require.Equal(t, "пр...", truncateForLog("привет", 2))
}
