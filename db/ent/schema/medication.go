package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
)

type Medication struct{ ent.Schema }

func (Medication) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "medications"},
	}
}

func (Medication) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.UUID("user_id", uuid.UUID{}),
		field.String("name").NotEmpty(),
		field.String("dosage").Optional().Nillable(),
		field.String("frequency").Optional().Nillable(),
		field.Time("start_date").Default(time.Now).
			SchemaType(map[string]string{dialect.Postgres: "date"}),
		field.Time("end_date").Optional().Nillable().
			SchemaType(map[string]string{dialect.Postgres: "date"}),
		field.String("instructions").Optional().Nillable(),
		field.String("side_effects").Optional().Nillable(),
		field.Bool("is_active").Default(true),
		field.Bool("reminder_enabled").Default(false),
		// "HH:MM" wall-clock times, matched by the reminder scheduler.
		field.JSON("reminder_times", []string{}).Optional(),
		field.Time("created_at").Default(time.Now),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
	}
}

func (Medication) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("medications").
			Field("user_id").
			Required().
			Unique(),
		edge.To("logs", MedicationLog.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Medication) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "is_active"),
	}
}
