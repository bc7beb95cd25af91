package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/pathfinderai/pathfinder/internal/exam"
)

// resultRepo implements ResultRepo. A result is written with its subject
// rows and answers in one transaction.
type resultRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var resultColumns = []string{
	"id", "sequence", "exam_id", "exam_name", "reason", "total_questions",
	"correct", "wrong", "unattempted", "raw_score", "score", "max_score",
	"percentage", "elapsed_ms", "completed_at",
}

var subjectColumns = []string{
	"result_id", "position", "subject", "quota", "attempted", "correct",
	"wrong", "unattempted", "raw_score", "score", "max_score", "percentage",
}

func (r *resultRepo) SaveResult(ctx context.Context, res *exam.Result) error {
	if res == nil || res.SessionID == "" {
		return errors.New("save result: missing session ID")
	}
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args := builder().Insert(tableResults).
		Columns(resultColumns...).
		Values(
			res.SessionID,
			seqNum,
			res.ExamID,
			res.ExamName,
			string(res.Reason),
			res.TotalQuestions,
			res.Correct,
			res.Wrong,
			res.Unattempted,
			res.RawScore,
			res.Score,
			res.MaxScore,
			res.Percentage,
			res.Elapsed.Milliseconds(),
			res.CompletedAt.UnixMilli(),
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	if len(res.Subjects) > 0 {
		ins := builder().Insert(tableSubjects).Columns(subjectColumns...)
		for i, s := range res.Subjects {
			ins.Values(res.SessionID, i, s.Subject, s.Quota, s.Attempted, s.Correct,
				s.Wrong, s.Unattempted, s.RawScore, s.Score, s.MaxScore, s.Percentage)
		}
		query, args = ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert subject results: %w", err)
		}
	}

	if len(res.Answers) > 0 {
		ins := builder().Insert(tableAnswers).Columns("result_id", "ordinal", "option")
		for ord, opt := range res.Answers {
			ins.Values(res.SessionID, ord, opt)
		}
		query, args = ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit result: %w", err)
	}
	return nil
}

func (r *resultRepo) GetResult(ctx context.Context, sessionID string) (*exam.Result, error) {
	query, args := builder().Select(resultColumns...).
		From(entsql.Table(tableResults)).
		Where(entsql.EQ("id", sessionID)).
		Query()

	var res exam.Result
	var seqNum, elapsedMs, completedMs int64
	var reason string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&res.SessionID, &seqNum, &res.ExamID, &res.ExamName, &reason,
		&res.TotalQuestions, &res.Correct, &res.Wrong, &res.Unattempted,
		&res.RawScore, &res.Score, &res.MaxScore, &res.Percentage,
		&elapsedMs, &completedMs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query result: %w", err)
	}
	res.Reason = exam.CompletionReason(reason)
	res.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	res.CompletedAt = time.UnixMilli(completedMs)

	if res.Subjects, err = r.subjects(ctx, sessionID); err != nil {
		return nil, err
	}
	if res.Answers, err = r.answers(ctx, sessionID); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resultRepo) subjects(ctx context.Context, sessionID string) ([]exam.SubjectResult, error) {
	query, args := builder().Select(subjectColumns[2:]...).
		From(entsql.Table(tableSubjects)).
		Where(entsql.EQ("result_id", sessionID)).
		OrderBy("position").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subject results: %w", err)
	}
	defer rows.Close()

	var out []exam.SubjectResult
	for rows.Next() {
		var s exam.SubjectResult
		if err := rows.Scan(&s.Subject, &s.Quota, &s.Attempted, &s.Correct, &s.Wrong,
			&s.Unattempted, &s.RawScore, &s.Score, &s.MaxScore, &s.Percentage); err != nil {
			return nil, fmt.Errorf("scan subject result: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *resultRepo) answers(ctx context.Context, sessionID string) (map[int]int, error) {
	query, args := builder().Select("ordinal", "option").
		From(entsql.Table(tableAnswers)).
		Where(entsql.EQ("result_id", sessionID)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var ord, opt int
		if err := rows.Scan(&ord, &opt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out[ord] = opt
	}
	return out, rows.Err()
}

func (r *resultRepo) ListResults(ctx context.Context, q ResultQuery) ([]ResultSummary, error) {
	sel := builder().Select(resultColumns...).
		From(entsql.Table(tableResults)).
		OrderBy(entsql.Desc("sequence"))
	if q.ExamID != "" {
		sel.Where(entsql.EQ("exam_id", q.ExamID))
	}
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []ResultSummary
	for rows.Next() {
		var s ResultSummary
		var rawScore float64
		var reason string
		var elapsedMs, completedMs int64
		if err := rows.Scan(
			&s.SessionID, &s.Sequence, &s.ExamID, &s.ExamName, &reason,
			&s.TotalQuestions, &s.Correct, &s.Wrong, &s.Unattempted,
			&rawScore, &s.Score, &s.MaxScore, &s.Percentage,
			&elapsedMs, &completedMs,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		s.Reason = exam.CompletionReason(reason)
		s.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		s.CompletedAt = time.UnixMilli(completedMs)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *resultRepo) DeleteResult(ctx context.Context, sessionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	// Children first: foreign_keys is a per-connection pragma, so cascades
	// cannot be relied on across the pool.
	for _, table := range []string{tableAnswers, tableSubjects} {
		query, args := builder().Delete(table).Where(entsql.EQ("result_id", sessionID)).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	query, args := builder().Delete(tableResults).Where(entsql.EQ("id", sessionID)).Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return tx.Commit()
}
