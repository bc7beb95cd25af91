// Package bank loads question banks and exam blueprints from YAML.
//
// A catalog directory holds one document per bank plus an exams.yaml that
// declares the blueprints. The built-in catalog is embedded in the binary;
// a user directory can add banks and exams or replace built-in ones by ID.
package bank

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/pathfinderai/pathfinder/internal/exam"
)

//go:embed data/*.yaml
var builtin embed.FS

// ExamsFile is the document name that declares blueprints.
const ExamsFile = "exams.yaml"

// SupportedMajor is the catalog document major version this build reads.
const SupportedMajor = "v1"

// ErrUnknownExam is returned when a blueprint ID is not in the catalog.
var ErrUnknownExam = errors.New("unknown exam")

// Bank is a named collection of per-subject items.
type Bank struct {
	ID       string
	Version  string
	subjects map[string][]exam.Item
	order    []string
}

// Questions returns a copy of the subject's items, in document order.
func (b *Bank) Questions(subject string) []exam.Item {
	return slices.Clone(b.subjects[subject])
}

// Subjects lists subjects in document order.
func (b *Bank) Subjects() []string {
	return slices.Clone(b.order)
}

// Size is the number of items for a subject.
func (b *Bank) Size(subject string) int {
	return len(b.subjects[subject])
}

// Catalog holds every loaded bank and blueprint.
type Catalog struct {
	banks map[string]*Bank
	exams map[string]exam.Blueprint
}

// Default loads the embedded catalog.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(builtin, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded catalog: %w", err)
	}
	return Load(sub)
}

// WithDir loads the embedded catalog and overlays the documents in dir.
// An empty dir returns the embedded catalog unchanged.
func WithDir(dir string) (*Catalog, error) {
	base, err := fs.Sub(builtin, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded catalog: %w", err)
	}
	if dir == "" {
		return Load(base)
	}
	return Load(base, os.DirFS(dir))
}

// Load reads *.yaml documents from each file system in turn. Later file
// systems replace banks and exams with the same ID.
func Load(layers ...fs.FS) (*Catalog, error) {
	c := &Catalog{
		banks: make(map[string]*Bank),
		exams: make(map[string]exam.Blueprint),
	}
	for _, fsys := range layers {
		names, err := fs.Glob(fsys, "*.yaml")
		if err != nil {
			return nil, fmt.Errorf("list catalog: %w", err)
		}
		sort.Strings(names)
		for _, name := range names {
			raw, err := fs.ReadFile(fsys, name)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			if path.Base(name) == ExamsFile {
				bps, err := ParseExams(raw)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				for _, bp := range bps {
					c.exams[bp.ID] = bp
				}
				continue
			}
			b, err := ParseBank(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			c.banks[b.ID] = b
		}
	}

	for _, bp := range c.exams {
		if _, ok := c.banks[bp.Bank]; !ok {
			return nil, fmt.Errorf("exam %q references missing bank %q", bp.ID, bp.Bank)
		}
	}
	return c, nil
}

// Exams returns every blueprint sorted by ID.
func (c *Catalog) Exams() []exam.Blueprint {
	out := make([]exam.Blueprint, 0, len(c.exams))
	for _, bp := range c.exams {
		out = append(out, bp)
	}
	slices.SortFunc(out, func(a, b exam.Blueprint) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Exam returns the blueprint with the given ID.
func (c *Catalog) Exam(id string) (exam.Blueprint, bool) {
	bp, ok := c.exams[id]
	return bp, ok
}

// Bank returns the bank with the given ID.
func (c *Catalog) Bank(id string) (*Bank, bool) {
	b, ok := c.banks[id]
	return b, ok
}

// Paper resolves the blueprint with the given ID against its bank.
func (c *Catalog) Paper(id string) (*exam.Paper, error) {
	bp, ok := c.exams[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExam, id)
	}
	b, ok := c.banks[bp.Bank]
	if !ok {
		return nil, &exam.ConfigurationError{Exam: id, Reason: fmt.Sprintf("bank %q not loaded", bp.Bank)}
	}
	return exam.Resolve(bp, b)
}

// checkVersion rejects documents that are not valid semver or whose major
// version this build does not understand.
func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid version %q", v)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("unsupported version %s (want %s.x.y)", v, SupportedMajor)
	}
	return nil
}

type itemDoc struct {
	Prompt     string   `yaml:"prompt"`
	Options    []string `yaml:"options"`
	Answer     int      `yaml:"answer"`
	Topic      string   `yaml:"topic"`
	Difficulty string   `yaml:"difficulty"`
}

type subjectDoc struct {
	Name  string    `yaml:"name"`
	Items []itemDoc `yaml:"items"`
}

type bankDoc struct {
	Version  string       `yaml:"version"`
	Bank     string       `yaml:"bank"`
	Subjects []subjectDoc `yaml:"subjects"`
}

// ParseBank validates and decodes a bank document.
func ParseBank(raw []byte) (*Bank, error) {
	schema, _, err := compiledSchemas()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	if err := validateDoc(schema, raw); err != nil {
		return nil, err
	}

	var doc bankDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}

	b := &Bank{ID: doc.Bank, Version: doc.Version, subjects: make(map[string][]exam.Item)}
	for _, s := range doc.Subjects {
		if _, dup := b.subjects[s.Name]; dup {
			return nil, fmt.Errorf("bank %q: subject %q listed twice", doc.Bank, s.Name)
		}
		items := make([]exam.Item, 0, len(s.Items))
		for i, it := range s.Items {
			if it.Answer >= len(it.Options) {
				return nil, fmt.Errorf("bank %q: %s item %d: answer %d out of range", doc.Bank, s.Name, i, it.Answer)
			}
			items = append(items, exam.Item{
				Prompt:     it.Prompt,
				Options:    it.Options,
				Answer:     it.Answer,
				Topic:      it.Topic,
				Difficulty: it.Difficulty,
			})
		}
		b.subjects[s.Name] = items
		b.order = append(b.order, s.Name)
	}
	return b, nil
}

type marksDoc struct {
	Correct *float64 `yaml:"correct"`
	Wrong   *float64 `yaml:"wrong"`
}

type sectionDoc struct {
	Subject string    `yaml:"subject"`
	Quota   int       `yaml:"quota"`
	Marks   *marksDoc `yaml:"marks"`
}

type examDoc struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Bank     string       `yaml:"bank"`
	Duration string       `yaml:"duration"`
	Marks    *marksDoc    `yaml:"marks"`
	Sections []sectionDoc `yaml:"sections"`
}

type examsDoc struct {
	Version string    `yaml:"version"`
	Exams   []examDoc `yaml:"exams"`
}

// ParseExams validates and decodes an exams document. Section marks
// default to the exam-level marks, which default to +1/-0.
func ParseExams(raw []byte) ([]exam.Blueprint, error) {
	_, schema, err := compiledSchemas()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	if err := validateDoc(schema, raw); err != nil {
		return nil, err
	}

	var doc examsDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode exams: %w", err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := make([]exam.Blueprint, 0, len(doc.Exams))
	for _, e := range doc.Exams {
		if seen[e.ID] {
			return nil, fmt.Errorf("exam %q declared twice", e.ID)
		}
		seen[e.ID] = true

		d, err := time.ParseDuration(e.Duration)
		if err != nil {
			return nil, fmt.Errorf("exam %q: duration: %w", e.ID, err)
		}

		correct, wrong := 1.0, 0.0
		e.Marks.apply(&correct, &wrong)

		bp := exam.Blueprint{ID: e.ID, Name: e.Name, Bank: e.Bank, Duration: d}
		for _, s := range e.Sections {
			c, w := correct, wrong
			s.Marks.apply(&c, &w)
			bp.Sections = append(bp.Sections, exam.Section{
				Subject:      s.Subject,
				Quota:        s.Quota,
				MarksCorrect: c,
				MarksWrong:   w,
			})
		}
		out = append(out, bp)
	}
	return out, nil
}

func (m *marksDoc) apply(correct, wrong *float64) {
	if m == nil {
		return
	}
	if m.Correct != nil {
		*correct = *m.Correct
	}
	if m.Wrong != nil {
		*wrong = *m.Wrong
	}
}
