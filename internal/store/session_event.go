package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	at := data.At
	if at.IsZero() {
		at = time.Now()
	}

	query, args := builder().Insert(tableSessionEvents).
		Columns("sequence", "timestamp", "session_id", "exam_id", "kind", "from_state", "to_state").
		Values(seqNum, at.UnixMilli(), data.SessionID, data.ExamID, data.Kind, data.From, data.To).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, sessionID string) ([]SessionEventRecord, error) {
	query, args := builder().
		Select("id", "sequence", "timestamp", "session_id", "exam_id", "kind", "from_state", "to_state").
		From(entsql.Table(tableSessionEvents)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionEventRecord
	for rows.Next() {
		var rec SessionEventRecord
		var ts int64
		if err := rows.Scan(&rec.ID, &rec.Sequence, &ts, &rec.SessionID, &rec.ExamID, &rec.Kind, &rec.From, &rec.To); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		rec.At = time.UnixMilli(ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}
