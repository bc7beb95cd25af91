package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ExamResult is one scored session. Its subject rows and answers live in
// SubjectResult and ResultAnswer.
type ExamResult struct {
	ent.Schema
}

func (ExamResult) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable().
			Comment("Session ID"),
		field.Int64("sequence").
			Unique().
			Immutable().
			Comment("Global sequence number, shared with the event tables"),
		field.String("exam_id").NotEmpty(),
		field.String("exam_name"),
		field.String("reason").
			Comment("submitted or timeout"),
		field.Int("total_questions"),
		field.Int("correct"),
		field.Int("wrong"),
		field.Int("unattempted"),
		field.Float("raw_score").
			Comment("May be negative"),
		field.Float("score").
			Comment("raw_score clamped at zero"),
		field.Float("max_score"),
		field.Float("percentage"),
		field.Int64("elapsed_ms"),
		field.Int64("completed_at").
			Comment("Unix milliseconds"),
	}
}

func (ExamResult) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("exam_id"),
	}
}
