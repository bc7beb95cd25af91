package store

import (
	"context"
	"time"

	"github.com/pathfinderai/pathfinder/internal/exam"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// ResultQuery filters stored exam results.
type ResultQuery struct {
	ExamID string // empty = all exams
	Limit  int    // max results (0 = unlimited)
}

// ResultSummary is a lightweight row for result listings.
type ResultSummary struct {
	SessionID      string
	Sequence       int64
	ExamID         string
	ExamName       string
	Reason         exam.CompletionReason
	TotalQuestions int
	Correct        int
	Wrong          int
	Unattempted    int
	Score          float64
	MaxScore       float64
	Percentage     float64
	Elapsed        time.Duration
	CompletedAt    time.Time
}

// ResultRepo persists completed exam results.
type ResultRepo interface {
	// SaveResult stores a result with its subject breakdown and answers.
	SaveResult(ctx context.Context, res *exam.Result) error

	// GetResult loads a full result, or nil if no result has that session ID.
	GetResult(ctx context.Context, sessionID string) (*exam.Result, error)

	// ListResults returns summaries, newest first.
	ListResults(ctx context.Context, q ResultQuery) ([]ResultSummary, error)

	// DeleteResult removes a result and its children.
	DeleteResult(ctx context.Context, sessionID string) error
}

// SessionEventData captures one session lifecycle transition.
type SessionEventData struct {
	SessionID string
	ExamID    string
	Kind      string // started, submitted, timeout, restarted
	From      string
	To        string
	At        time.Time // zero = now
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	ID       int
	Sequence int64
	SessionEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates token usage per purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage per model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendSessionEvent records a session lifecycle transition.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QuerySessionEvents returns a session's events in sequence order.
	QuerySessionEvents(ctx context.Context, sessionID string) ([]SessionEventRecord, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns a single LLM event, or nil if not found.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates usage grouped by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates usage grouped by model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
