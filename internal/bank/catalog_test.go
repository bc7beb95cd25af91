package bank

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathfinderai/pathfinder/internal/exam"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	tests := []struct {
		id        string
		duration  time.Duration
		questions int
		maxMarks  float64
	}{
		{"clat", 120 * time.Minute, 140, 140},
		{"cuet", 165 * time.Minute, 200, 200},
		{"neet", 200 * time.Minute, 180, 720},
		{"jee-main", 180 * time.Minute, 75, 300},
		{"jee-advanced", 180 * time.Minute, 54, 162},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			bp, ok := c.Exam(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.duration, bp.Duration)
			assert.Equal(t, tt.questions, bp.TotalQuestions())

			paper, err := c.Paper(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.questions, paper.TotalQuestions)
			assert.Equal(t, tt.maxMarks, paper.TotalMaxMarks)
		})
	}

	assert.Len(t, c.Exams(), 5)
	assert.Equal(t, "clat", c.Exams()[0].ID)
}

func TestDefaultCatalog_NegativeMarking(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	clat, _ := c.Exam("clat")
	assert.Equal(t, 0.25, clat.Sections[0].MarksWrong)
	assert.Equal(t, "English Language", clat.Sections[0].Subject)

	neet, _ := c.Exam("neet")
	assert.Equal(t, 4.0, neet.Sections[2].MarksCorrect)
	assert.Equal(t, 1.0, neet.Sections[2].MarksWrong)
}

func TestDefaultCatalog_NEETCyclesBiology(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	b, ok := c.Bank("neet")
	require.True(t, ok)
	size := b.Size("Biology")
	require.Positive(t, size)

	paper, err := c.Paper("neet")
	require.NoError(t, err)
	first, _, ok := paper.SubjectRange("Biology")
	require.True(t, ok)

	q0, _ := paper.Question(first)
	qWrap, _ := paper.Question(first + size)
	assert.Equal(t, q0.Prompt, qWrap.Prompt)
}

func TestPaperUnknownExam(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	_, err = c.Paper("gre")
	assert.True(t, errors.Is(err, ErrUnknownExam))
}

const tinyBank = `version: v1.2.0
bank: tiny
subjects:
- name: Logic
  items:
  - prompt: "2 + 2?"
    options: ["3", "4"]
    answer: 1
- name: Empty
  items: []
`

const tinyExams = `version: v1.0.0
exams:
- id: tiny
  name: Tiny Test
  bank: tiny
  duration: 90s
  marks:
    correct: 2
  sections:
  - subject: Logic
    quota: 3
    marks:
      wrong: 0.5
`

func TestLoadFromFS(t *testing.T) {
	c, err := Load(fstest.MapFS{
		"tiny.yaml":  {Data: []byte(tinyBank)},
		"exams.yaml": {Data: []byte(tinyExams)},
	})
	require.NoError(t, err)

	bp, ok := c.Exam("tiny")
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, bp.Duration)
	assert.Equal(t, exam.Section{Subject: "Logic", Quota: 3, MarksCorrect: 2, MarksWrong: 0.5}, bp.Sections[0])

	b, _ := c.Bank("tiny")
	assert.Equal(t, []string{"Logic", "Empty"}, b.Subjects())
	assert.Equal(t, "v1.2.0", b.Version)

	paper, err := c.Paper("tiny")
	require.NoError(t, err)
	assert.Len(t, paper.Questions, 3)
	assert.Equal(t, 1, paper.Questions[2].Correct)
}

func TestWithDirOverlaysBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.yaml"), []byte(tinyBank), 0o644))

	// A user exams.yaml replaces the built-in declarations of the same IDs
	// and adds new ones; built-in exams it does not mention survive.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "exams.yaml"), []byte(tinyExams), 0o644))

	c, err := WithDir(dir)
	require.NoError(t, err)

	_, ok := c.Exam("tiny")
	assert.True(t, ok)
	_, ok = c.Exam("neet")
	assert.True(t, ok)
	assert.Len(t, c.Exams(), 6)
}

func TestLoadMissingBank(t *testing.T) {
	_, err := Load(fstest.MapFS{"exams.yaml": {Data: []byte(tinyExams)}})
	assert.ErrorContains(t, err, "missing bank")
}

func TestParseBankErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "single option",
			doc:  "version: v1.0.0\nbank: x\nsubjects:\n- name: A\n  items:\n  - prompt: q\n    options: [a]\n    answer: 0\n",
			want: "schema validation failed",
		},
		{
			name: "negative answer",
			doc:  "version: v1.0.0\nbank: x\nsubjects:\n- name: A\n  items:\n  - prompt: q\n    options: [a, b]\n    answer: -1\n",
			want: "schema validation failed",
		},
		{
			name: "answer past options",
			doc:  "version: v1.0.0\nbank: x\nsubjects:\n- name: A\n  items:\n  - prompt: q\n    options: [a, b]\n    answer: 2\n",
			want: "out of range",
		},
		{
			name: "major version",
			doc:  "version: v2.0.0\nbank: x\nsubjects: []\n",
			want: "unsupported version",
		},
		{
			name: "bad version",
			doc:  "version: latest\nbank: x\nsubjects: []\n",
			want: "invalid version",
		},
		{
			name: "duplicate subject",
			doc:  "version: v1.0.0\nbank: x\nsubjects:\n- name: A\n  items: []\n- name: A\n  items: []\n",
			want: "listed twice",
		},
		{
			name: "missing bank id",
			doc:  "version: v1.0.0\nsubjects: []\n",
			want: "schema validation failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBank([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseExamsErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "bad duration",
			doc:  "version: v1.0.0\nexams:\n- id: a\n  name: A\n  bank: b\n  duration: forever\n  sections:\n  - subject: S\n    quota: 1\n",
			want: "duration",
		},
		{
			name: "negative quota",
			doc:  "version: v1.0.0\nexams:\n- id: a\n  name: A\n  bank: b\n  duration: 1m\n  sections:\n  - subject: S\n    quota: -1\n",
			want: "schema validation failed",
		},
		{
			name: "duplicate id",
			doc: "version: v1.0.0\nexams:\n" +
				"- id: a\n  name: A\n  bank: b\n  duration: 1m\n  sections:\n  - subject: S\n    quota: 1\n" +
				"- id: a\n  name: A\n  bank: b\n  duration: 1m\n  sections:\n  - subject: S\n    quota: 1\n",
			want: "declared twice",
		},
		{
			name: "bad id",
			doc:  "version: v1.0.0\nexams:\n- id: Not Valid\n  name: A\n  bank: b\n  duration: 1m\n  sections:\n  - subject: S\n    quota: 1\n",
			want: "schema validation failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExams([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBankQuestionsReturnsCopy(t *testing.T) {
	b, err := ParseBank([]byte(tinyBank))
	require.NoError(t, err)

	qs := b.Questions("Logic")
	qs[0].Prompt = "changed"
	assert.Equal(t, "2 + 2?", b.Questions("Logic")[0].Prompt)
	assert.Empty(t, b.Questions("Nope"))
}
