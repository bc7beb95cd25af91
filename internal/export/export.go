// Package export writes stored exam results as CSV, JSON or XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pathfinderai/pathfinder/internal/exam"
)

// Format selects the output encoding.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
)

// Formats lists the supported formats.
var Formats = []Format{CSV, JSON, XLSX}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unknown export format %q (want csv, json or xlsx)", s)
	}
	return f, nil
}

// Write encodes results to w. CSV and XLSX emit one row per subject per
// result; JSON emits the full results including answers.
func Write(w io.Writer, f Format, results []*exam.Result) error {
	switch f {
	case CSV:
		return writeCSV(w, results)
	case JSON:
		return writeJSON(w, results)
	case XLSX:
		return writeXLSX(w, results)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

var header = []string{
	"session_id", "exam_id", "exam_name", "completed_at", "reason", "elapsed_seconds",
	"subject", "quota", "attempted", "correct", "wrong", "unattempted",
	"raw_score", "score", "max_score", "percentage",
}

// rows flattens results into subject rows plus a TOTAL row per result.
func rows(results []*exam.Result) [][]any {
	var out [][]any
	for _, r := range results {
		lead := []any{
			r.SessionID, r.ExamID, r.ExamName,
			r.CompletedAt.UTC().Format(time.RFC3339), string(r.Reason),
			int64(r.Elapsed / time.Second),
		}
		for _, s := range r.Subjects {
			out = append(out, append(slices.Clone(lead),
				s.Subject, s.Quota, s.Attempted, s.Correct, s.Wrong, s.Unattempted,
				s.RawScore, s.Score, s.MaxScore, round2(s.Percentage),
			))
		}
		out = append(out, append(slices.Clone(lead),
			"TOTAL", r.TotalQuestions, r.Attempted(), r.Correct, r.Wrong, r.Unattempted,
			r.RawScore, r.Score, r.MaxScore, round2(r.Percentage),
		))
	}
	return out
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func cellString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return fmt.Sprint(v)
	}
}

func writeCSV(w io.Writer, results []*exam.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows(results) {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = cellString(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

type subjectJSON struct {
	Subject     string  `json:"subject"`
	Quota       int     `json:"quota"`
	Attempted   int     `json:"attempted"`
	Correct     int     `json:"correct"`
	Wrong       int     `json:"wrong"`
	Unattempted int     `json:"unattempted"`
	RawScore    float64 `json:"raw_score"`
	Score       float64 `json:"score"`
	MaxScore    float64 `json:"max_score"`
	Percentage  float64 `json:"percentage"`
}

type resultJSON struct {
	SessionID      string         `json:"session_id"`
	ExamID         string         `json:"exam_id"`
	ExamName       string         `json:"exam_name"`
	CompletedAt    time.Time      `json:"completed_at"`
	Reason         string         `json:"reason"`
	ElapsedSeconds int64          `json:"elapsed_seconds"`
	TotalQuestions int            `json:"total_questions"`
	Correct        int            `json:"correct"`
	Wrong          int            `json:"wrong"`
	Unattempted    int            `json:"unattempted"`
	RawScore       float64        `json:"raw_score"`
	Score          float64        `json:"score"`
	MaxScore       float64        `json:"max_score"`
	Percentage     float64        `json:"percentage"`
	Subjects       []subjectJSON  `json:"subjects"`
	Answers        map[string]int `json:"answers"`
}

func writeJSON(w io.Writer, results []*exam.Result) error {
	out := make([]resultJSON, 0, len(results))
	for _, r := range results {
		rj := resultJSON{
			SessionID:      r.SessionID,
			ExamID:         r.ExamID,
			ExamName:       r.ExamName,
			CompletedAt:    r.CompletedAt.UTC(),
			Reason:         string(r.Reason),
			ElapsedSeconds: int64(r.Elapsed / time.Second),
			TotalQuestions: r.TotalQuestions,
			Correct:        r.Correct,
			Wrong:          r.Wrong,
			Unattempted:    r.Unattempted,
			RawScore:       r.RawScore,
			Score:          r.Score,
			MaxScore:       r.MaxScore,
			Percentage:     r.Percentage,
			Answers:        make(map[string]int, len(r.Answers)),
		}
		for _, s := range r.Subjects {
			rj.Subjects = append(rj.Subjects, subjectJSON(s))
		}
		for ord, opt := range r.Answers {
			rj.Answers[strconv.Itoa(ord)] = opt
		}
		out = append(out, rj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// SheetName is the worksheet written by the XLSX format.
const SheetName = "Results"

func writeXLSX(w io.Writer, results []*exam.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	all := append([][]any{head}, rows(results)...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
