package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/pathfinderai/pathfinder/internal/exam"
	"github.com/pathfinderai/pathfinder/internal/llm"
)

// Purpose tags review requests in the LLM event log.
const Purpose = "exam-review"

// ErrNoProvider is returned when reviews are requested without a provider.
var ErrNoProvider = errors.New("review: no LLM provider configured")

// Service generates study reviews.
type Service struct {
	provider llm.Provider
	cfg      Config
	now      func() time.Time
}

// NewService creates a review service. A nil provider yields a service
// whose Review always fails with ErrNoProvider.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg, now: time.Now}
}

// Enabled reports whether the service can produce reviews.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

type reviewOutput struct {
	Summary         string                 `json:"summary"`
	Recommendations []recommendationOutput `json:"recommendations"`
	Pacing          string                 `json:"pacing"`
}

type recommendationOutput struct {
	Subject  string `json:"subject"`
	Priority string `json:"priority"`
	Advice   string `json:"advice"`
}

// Review asks the model for a study plan. duration is the exam's allotted
// time, used to put elapsed time in context.
func (s *Service) Review(ctx context.Context, res *exam.Result, duration time.Duration) (*Review, error) {
	if !s.Enabled() {
		return nil, ErrNoProvider
	}
	if res == nil {
		return nil, errors.New("review: nil result")
	}

	ctx = llm.WithPurpose(ctx, Purpose)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(res, duration.String())},
		},
		Schema:      Schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("review generation: %w", err)
	}

	var out reviewOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse review response: %w", err)
	}

	rv := &Review{
		SessionID:   res.SessionID,
		Summary:     out.Summary,
		Pacing:      out.Pacing,
		Model:       resp.Model,
		GeneratedAt: s.now(),
	}
	for _, r := range out.Recommendations {
		rv.Recommendations = append(rv.Recommendations, Recommendation(r))
	}
	slices.SortStableFunc(rv.Recommendations, func(a, b Recommendation) int {
		return priorityRank(a.Priority) - priorityRank(b.Priority)
	})
	return rv, nil
}

func priorityRank(p string) int {
	switch p {
	case "high":
		return 0
	case "medium":
		return 1
	default:
		return 2
	}
}
