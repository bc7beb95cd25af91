package exam

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(n int, prefix string) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = Item{
			Prompt:  fmt.Sprintf("%s %d", prefix, i),
			Options: []string{"a", "b", "c", "d"},
			Answer:  i % 4,
		}
	}
	return out
}

func mapBank(m map[string][]Item) Bank {
	return BankFunc(func(subject string) []Item { return m[subject] })
}

func TestResolve_CyclesShortBank(t *testing.T) {
	bp := Blueprint{
		ID:       "cycle",
		Duration: time.Minute,
		Sections: []Section{{Subject: "A", Quota: 5, MarksCorrect: 1}},
	}
	bank := mapBank(map[string][]Item{"A": items(2, "A")})

	paper, err := Resolve(bp, bank)
	require.NoError(t, err)
	require.Len(t, paper.Questions, 5)

	want := []string{"A 0", "A 1", "A 0", "A 1", "A 0"}
	for i, q := range paper.Questions {
		assert.Equal(t, want[i], q.Prompt, "question %d", i+1)
		assert.Equal(t, i+1, q.Ordinal)
	}
}

func TestResolve_SequentialOrdinalsAcrossSections(t *testing.T) {
	bp := Blueprint{
		ID:       "multi",
		Duration: time.Hour,
		Sections: []Section{
			{Subject: "Physics", Quota: 3, MarksCorrect: 4, MarksWrong: 1},
			{Subject: "Chemistry", Quota: 0, MarksCorrect: 4, MarksWrong: 1},
			{Subject: "Biology", Quota: 4, MarksCorrect: 4, MarksWrong: 1},
		},
	}
	bank := mapBank(map[string][]Item{
		"Physics": items(10, "P"),
		"Biology": items(10, "B"),
	})

	paper, err := Resolve(bp, bank)
	require.NoError(t, err)

	assert.Equal(t, 7, paper.TotalQuestions)
	assert.Equal(t, 28.0, paper.TotalMaxMarks)
	for i, q := range paper.Questions {
		assert.Equal(t, i+1, q.Ordinal)
	}
	assert.Equal(t, "Physics", paper.Questions[2].Subject)
	assert.Equal(t, "Biology", paper.Questions[3].Subject)

	first, last, ok := paper.SubjectRange("Biology")
	require.True(t, ok)
	assert.Equal(t, 4, first)
	assert.Equal(t, 7, last)

	_, _, ok = paper.SubjectRange("Chemistry")
	assert.False(t, ok)
}

func TestResolve_ZeroQuotaWithEmptyBankIsFine(t *testing.T) {
	bp := Blueprint{
		ID:       "zero",
		Duration: time.Minute,
		Sections: []Section{{Subject: "Ghost", Quota: 0, MarksCorrect: 1}},
	}
	paper, err := Resolve(bp, mapBank(nil))
	require.NoError(t, err)
	assert.Empty(t, paper.Questions)
	assert.Equal(t, 0.0, paper.TotalMaxMarks)
}

func TestResolve_ConfigurationErrors(t *testing.T) {
	good := map[string][]Item{"A": items(3, "A")}
	tests := []struct {
		name string
		bp   Blueprint
		bank map[string][]Item
	}{
		{
			name: "empty bank with quota",
			bp:   Blueprint{ID: "x", Duration: time.Minute, Sections: []Section{{Subject: "B", Quota: 1}}},
			bank: good,
		},
		{
			name: "negative quota",
			bp:   Blueprint{ID: "x", Duration: time.Minute, Sections: []Section{{Subject: "A", Quota: -1}}},
			bank: good,
		},
		{
			name: "zero duration",
			bp:   Blueprint{ID: "x", Sections: []Section{{Subject: "A", Quota: 1}}},
			bank: good,
		},
		{
			name: "negative marks",
			bp:   Blueprint{ID: "x", Duration: time.Minute, Sections: []Section{{Subject: "A", Quota: 1, MarksWrong: -1}}},
			bank: good,
		},
		{
			name: "duplicate subject",
			bp: Blueprint{ID: "x", Duration: time.Minute, Sections: []Section{
				{Subject: "A", Quota: 1}, {Subject: "A", Quota: 1},
			}},
			bank: good,
		},
		{
			name: "answer out of range",
			bp:   Blueprint{ID: "x", Duration: time.Minute, Sections: []Section{{Subject: "A", Quota: 1}}},
			bank: map[string][]Item{"A": {{Prompt: "q", Options: []string{"a", "b"}, Answer: 2}}},
		},
		{
			name: "single option",
			bp:   Blueprint{ID: "x", Duration: time.Minute, Sections: []Section{{Subject: "A", Quota: 1}}},
			bank: map[string][]Item{"A": {{Prompt: "q", Options: []string{"a"}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.bp, mapBank(tt.bank))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "x", cfgErr.Exam)
		})
	}
}

func TestResolve_NilBank(t *testing.T) {
	_, err := Resolve(Blueprint{ID: "x", Duration: time.Minute}, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestResolve_PaperIsIsolatedFromInputs(t *testing.T) {
	sections := []Section{{Subject: "A", Quota: 2, MarksCorrect: 1}}
	bankItems := items(2, "A")
	bp := Blueprint{ID: "iso", Duration: time.Minute, Sections: sections}

	paper, err := Resolve(bp, mapBank(map[string][]Item{"A": bankItems}))
	require.NoError(t, err)

	sections[0].Quota = 99
	bankItems[0].Options[0] = "mutated"

	assert.Equal(t, 2, paper.Blueprint.Sections[0].Quota)
	assert.Equal(t, "a", paper.Questions[0].Options[0])
}
