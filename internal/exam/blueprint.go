package exam

import "time"

// Item is a single entry in a subject's question bank.
type Item struct {
	Prompt     string
	Options    []string
	Answer     int // index into Options
	Topic      string
	Difficulty string
}

// Bank supplies the ordered items for a subject. Implementations must not
// mutate the returned slice's elements after handing them out.
type Bank interface {
	Questions(subject string) []Item
}

// BankFunc adapts a plain function to the Bank interface.
type BankFunc func(subject string) []Item

func (f BankFunc) Questions(subject string) []Item { return f(subject) }

// Section is one subject's slice of a blueprint.
type Section struct {
	Subject      string
	Quota        int
	MarksCorrect float64
	MarksWrong   float64 // magnitude of the penalty, applied as a deduction
}

// MaxMarks is the best possible score for the section.
func (s Section) MaxMarks() float64 {
	return float64(s.Quota) * s.MarksCorrect
}

// Blueprint is the static definition of an exam.
type Blueprint struct {
	ID       string
	Name     string
	Bank     string // bank identifier in the catalog
	Duration time.Duration
	Sections []Section
}

// TotalQuestions is the sum of section quotas.
func (b Blueprint) TotalQuestions() int {
	n := 0
	for _, s := range b.Sections {
		n += s.Quota
	}
	return n
}

// TotalMaxMarks is the best possible score across all sections.
func (b Blueprint) TotalMaxMarks() float64 {
	var m float64
	for _, s := range b.Sections {
		m += s.MaxMarks()
	}
	return m
}

// Subjects returns section subjects in blueprint order.
func (b Blueprint) Subjects() []string {
	out := make([]string, len(b.Sections))
	for i, s := range b.Sections {
		out[i] = s.Subject
	}
	return out
}

// Question is a resolved, immutable question on a paper.
type Question struct {
	Ordinal      int // 1-based, unique within the paper
	Subject      string
	Prompt       string
	Options      []string
	Correct      int
	MarksCorrect float64
	MarksWrong   float64
	Topic        string
	Difficulty   string
}

// Paper is the resolved question list for one blueprint.
type Paper struct {
	Blueprint      Blueprint
	Questions      []Question
	TotalQuestions int
	TotalMaxMarks  float64
}

// Question returns the question with the given 1-based ordinal.
func (p *Paper) Question(ordinal int) (Question, bool) {
	if ordinal < 1 || ordinal > len(p.Questions) {
		return Question{}, false
	}
	return p.Questions[ordinal-1], true
}

// SubjectRange returns the first and last ordinals of a subject's block.
// ok is false for unknown subjects and zero-quota sections.
func (p *Paper) SubjectRange(subject string) (first, last int, ok bool) {
	next := 1
	for _, s := range p.Blueprint.Sections {
		if s.Subject == subject {
			if s.Quota == 0 {
				return 0, 0, false
			}
			return next, next + s.Quota - 1, true
		}
		next += s.Quota
	}
	return 0, 0, false
}
