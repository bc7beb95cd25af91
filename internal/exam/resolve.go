package exam

import (
	"fmt"
	"slices"
	"time"
)

// Resolve materializes a paper from a blueprint and bank. Sections are laid
// out in blueprint order; within a section the i-th question is item
// i mod len(bank), so short banks cycle. Ordinals run 1..N across the paper.
func Resolve(bp Blueprint, bank Bank) (*Paper, error) {
	if bank == nil {
		return nil, &ConfigurationError{Exam: bp.ID, Reason: "no question bank"}
	}
	if bp.Duration < time.Second {
		return nil, &ConfigurationError{Exam: bp.ID, Reason: fmt.Sprintf("duration must be at least one second, got %s", bp.Duration)}
	}

	seen := make(map[string]bool, len(bp.Sections))
	for _, s := range bp.Sections {
		if seen[s.Subject] {
			return nil, &ConfigurationError{Exam: bp.ID, Subject: s.Subject, Reason: "subject listed more than once"}
		}
		seen[s.Subject] = true
		if s.Quota < 0 {
			return nil, &ConfigurationError{Exam: bp.ID, Subject: s.Subject, Reason: fmt.Sprintf("negative quota %d", s.Quota)}
		}
		if s.MarksCorrect < 0 || s.MarksWrong < 0 {
			return nil, &ConfigurationError{Exam: bp.ID, Subject: s.Subject, Reason: "marks must be non-negative"}
		}
	}

	// Take a private copy so later edits to the caller's blueprint cannot
	// leak into a running paper.
	bp.Sections = slices.Clone(bp.Sections)

	questions := make([]Question, 0, bp.TotalQuestions())
	ordinal := 1
	for _, s := range bp.Sections {
		if s.Quota == 0 {
			continue
		}
		items := bank.Questions(s.Subject)
		if len(items) == 0 {
			return nil, &ConfigurationError{Exam: bp.ID, Subject: s.Subject, Reason: fmt.Sprintf("empty bank for quota %d", s.Quota)}
		}
		for idx, it := range items {
			if len(it.Options) < 2 {
				return nil, &ConfigurationError{Exam: bp.ID, Subject: s.Subject, Reason: fmt.Sprintf("item %d has fewer than two options", idx)}
			}
			if it.Answer < 0 || it.Answer >= len(it.Options) {
				return nil, &ConfigurationError{Exam: bp.ID, Subject: s.Subject, Reason: fmt.Sprintf("item %d answer index %d out of range", idx, it.Answer)}
			}
		}

		for i := 0; i < s.Quota; i++ {
			it := items[i%len(items)]
			questions = append(questions, Question{
				Ordinal:      ordinal,
				Subject:      s.Subject,
				Prompt:       it.Prompt,
				Options:      slices.Clone(it.Options),
				Correct:      it.Answer,
				MarksCorrect: s.MarksCorrect,
				MarksWrong:   s.MarksWrong,
				Topic:        it.Topic,
				Difficulty:   it.Difficulty,
			})
			ordinal++
		}
	}

	return &Paper{
		Blueprint:      bp,
		Questions:      questions,
		TotalQuestions: len(questions),
		TotalMaxMarks:  bp.TotalMaxMarks(),
	}, nil
}
