package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SubjectResult is one subject row of an ExamResult, kept in blueprint
// order by position.
type SubjectResult struct {
	ent.Schema
}

func (SubjectResult) Fields() []ent.Field {
	return []ent.Field{
		field.String("result_id").NotEmpty(),
		field.Int("position"),
		field.String("subject").NotEmpty(),
		field.Int("quota"),
		field.Int("attempted"),
		field.Int("correct"),
		field.Int("wrong"),
		field.Int("unattempted"),
		field.Float("raw_score"),
		field.Float("score"),
		field.Float("max_score"),
		field.Float("percentage"),
	}
}

func (SubjectResult) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("result_id", "position").Unique(),
	}
}
