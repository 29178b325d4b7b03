package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"

	"github.com/google/uuid"
)

type User struct{ ent.Schema }

func (User) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "users"},
	}
}

func (User) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.String("first_name").NotEmpty(),
		field.String("last_name").NotEmpty(),
		field.String("email").Optional().Nillable(),
		field.String("phone").Optional().Nillable(),
		field.Time("date_of_birth").Optional().Nillable().
			SchemaType(map[string]string{dialect.Postgres: "date"}),
		field.String("gender").Optional().Nillable(),
		field.String("blood_group").Optional().Nillable(),
		field.Float("height_cm").Optional().Nillable().
			SchemaType(map[string]string{dialect.Postgres: "numeric(5,1)"}),
		field.Float("weight_kg").Optional().Nillable().
			SchemaType(map[string]string{dialect.Postgres: "numeric(5,1)"}),
		field.String("emergency_contact").Optional().Nillable(),
		field.String("allergies").Optional().Nillable(),
		field.String("medical_conditions").Optional().Nillable(),
		field.Time("created_at").Default(time.Now),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
	}
}

func (User) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("medications", Medication.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("appointments", Appointment.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("health_records", HealthRecord.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("documents", DocumentAnalysis.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}
