// Package review turns a scored exam into a short AI-written study plan.
package review

import "time"

// Review is a study plan for one completed exam.
type Review struct {
	SessionID       string
	Summary         string
	Recommendations []Recommendation
	Pacing          string
	Model           string
	GeneratedAt     time.Time
}

// Recommendation is advice for a single subject.
type Recommendation struct {
	Subject  string
	Priority string // high, medium or low
	Advice   string
}

// Config holds review generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the settings used by the app.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   768,
		Temperature: 0.4,
	}
}
