package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
)

// HealthRecord is a single self-reported measurement (blood pressure, weight,
// blood sugar, ...). record_type stays free-form: the set of things people
// track is open-ended.
type HealthRecord struct{ ent.Schema }

func (HealthRecord) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "health_records"},
	}
}

func (HealthRecord) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.UUID("user_id", uuid.UUID{}),
		field.String("record_type").NotEmpty(),
		field.String("value").NotEmpty(),
		field.String("unit").Optional().Nillable(),
		field.Time("measured_date"),
		field.String("notes").Optional().Nillable(),
		field.Time("created_at").Default(time.Now),
	}
}

func (HealthRecord) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("health_records").
			Field("user_id").
			Required().
			Unique(),
	}
}

func (HealthRecord) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "record_type", "measured_date"),
	}
}
