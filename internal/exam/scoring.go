package exam

import (
	"maps"
	"slices"
	"time"
)

// CompletionReason records why a session ended.
type CompletionReason string

const (
	ReasonSubmitted CompletionReason = "submitted"
	ReasonTimeout   CompletionReason = "timeout"
)

// SubjectResult is the per-subject breakdown of a result.
type SubjectResult struct {
	Subject     string
	Quota       int
	Attempted   int
	Correct     int
	Wrong       int
	Unattempted int
	RawScore    float64 // may be negative
	Score       float64 // RawScore clamped at zero
	MaxScore    float64
	Percentage  float64
}

// Result is the immutable outcome of a completed session.
type Result struct {
	SessionID      string
	ExamID         string
	ExamName       string
	TotalQuestions int
	Correct        int
	Wrong          int
	Unattempted    int
	RawScore       float64
	Score          float64
	MaxScore       float64
	Percentage     float64
	Elapsed        time.Duration
	Reason         CompletionReason
	CompletedAt    time.Time
	Subjects       []SubjectResult
	Answers        map[int]int
}

// Attempted is the number of questions with a selection.
func (r *Result) Attempted() int { return r.Correct + r.Wrong }

// Subject returns the breakdown for one subject.
func (r *Result) Subject(name string) (SubjectResult, bool) {
	for _, s := range r.Subjects {
		if s.Subject == name {
			return s, true
		}
	}
	return SubjectResult{}, false
}

// clone returns a copy that shares nothing mutable with r.
func (r *Result) clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	c.Subjects = slices.Clone(r.Subjects)
	c.Answers = maps.Clone(r.Answers)
	return &c
}

// ScorePaper grades answers against a resolved paper. Every blueprint
// section gets a subject row in blueprint order, including sections with a
// zero quota, which report zero marks and 0%.
func ScorePaper(p *Paper, answers map[int]int, elapsed time.Duration) *Result {
	return score(p.Blueprint.Sections, p.Questions, answers, elapsed)
}

// Score grades answers against questions. It is a pure function: the same
// inputs always produce the same result. Subject rows come from the
// questions alone; use ScorePaper to keep empty sections.
//
// Subject scores are clamped at zero individually. The total is the raw
// sum of every question's delta, clamped once, so a subject with a negative
// raw score still drags the total down.
func Score(questions []Question, answers map[int]int, elapsed time.Duration) *Result {
	return score(nil, questions, answers, elapsed)
}

func score(sections []Section, questions []Question, answers map[int]int, elapsed time.Duration) *Result {
	res := &Result{
		TotalQuestions: len(questions),
		Elapsed:        elapsed,
		Answers:        maps.Clone(answers),
	}
	if res.Answers == nil {
		res.Answers = map[int]int{}
	}

	index := make(map[string]int, len(sections))
	for _, sec := range sections {
		if _, dup := index[sec.Subject]; dup {
			continue
		}
		index[sec.Subject] = len(res.Subjects)
		res.Subjects = append(res.Subjects, SubjectResult{Subject: sec.Subject})
	}
	for _, q := range questions {
		i, ok := index[q.Subject]
		if !ok {
			i = len(res.Subjects)
			index[q.Subject] = i
			res.Subjects = append(res.Subjects, SubjectResult{Subject: q.Subject})
		}
		sr := &res.Subjects[i]
		sr.Quota++
		sr.MaxScore += q.MarksCorrect
		res.MaxScore += q.MarksCorrect

		sel, answered := answers[q.Ordinal]
		switch {
		case !answered:
			sr.Unattempted++
			res.Unattempted++
		case sel == q.Correct:
			sr.Attempted++
			sr.Correct++
			sr.RawScore += q.MarksCorrect
			res.Correct++
			res.RawScore += q.MarksCorrect
		default:
			sr.Attempted++
			sr.Wrong++
			sr.RawScore -= q.MarksWrong
			res.Wrong++
			res.RawScore -= q.MarksWrong
		}
	}

	for i := range res.Subjects {
		sr := &res.Subjects[i]
		sr.Score = max(0, sr.RawScore)
		sr.Percentage = percentage(sr.Score, sr.MaxScore)
	}
	res.Score = max(0, res.RawScore)
	res.Percentage = percentage(res.Score, res.MaxScore)
	return res
}

func percentage(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return 100 * score / maxScore
}

// Band buckets a percentage for display.
type Band int

const (
	BandWeak Band = iota
	BandFair
	BandStrong
)

func (b Band) String() string {
	switch b {
	case BandStrong:
		return "strong"
	case BandFair:
		return "fair"
	default:
		return "weak"
	}
}

// BandFor classifies a percentage: 80 and above is strong, 60 and above is
// fair, anything lower is weak.
func BandFor(pct float64) Band {
	switch {
	case pct >= 80:
		return BandStrong
	case pct >= 60:
		return BandFair
	default:
		return BandWeak
	}
}
