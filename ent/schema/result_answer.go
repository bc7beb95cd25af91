package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ResultAnswer is the option chosen for one question of an ExamResult.
// Unattempted questions have no row.
type ResultAnswer struct {
	ent.Schema
}

func (ResultAnswer) Fields() []ent.Field {
	return []ent.Field{
		field.String("result_id").NotEmpty(),
		field.Int("ordinal").Positive(),
		field.Int("option").NonNegative(),
	}
}

func (ResultAnswer) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("result_id", "ordinal").Unique(),
	}
}
