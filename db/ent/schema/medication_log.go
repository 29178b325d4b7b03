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

	"github.com/anudeep227/personal-health-manager/db/ent/schema/utils"
)

type MedicationLog struct{ ent.Schema }

func (MedicationLog) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "medication_logs"},
	}
}

func (MedicationLog) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.UUID("medication_id", uuid.UUID{}),
		field.Time("scheduled_time"),
		field.Time("taken_time").Optional().Nillable(),
		field.String("status").Default("pending").
			Validate(utils.EnumValidator("pending", "taken", "missed", "skipped")),
		field.String("notes").Optional().Nillable(),
		field.Time("created_at").Default(time.Now),
	}
}

func (MedicationLog) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("medication", Medication.Type).
			Ref("logs").
			Field("medication_id").
			Required().
			Unique(),
	}
}

func (MedicationLog) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("medication_id", "scheduled_time"),
	}
}
