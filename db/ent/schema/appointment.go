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

type Appointment struct{ ent.Schema }

func (Appointment) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "appointments"},
	}
}

func (Appointment) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.UUID("user_id", uuid.UUID{}),
		field.String("title").NotEmpty(),
		field.String("doctor_name").Optional().Nillable(),
		field.String("hospital_name").Optional().Nillable(),
		field.Time("appointment_date"),
		field.Int("duration_minutes").Optional().Nillable().Positive(),
		field.String("type").Optional().Nillable(),
		field.String("status").Default("scheduled").
			Validate(utils.EnumValidator("scheduled", "completed", "cancelled", "missed")),
		field.Bool("reminder_enabled").Default(true),
		field.String("notes").Optional().Nillable(),
		field.Time("created_at").Default(time.Now),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
	}
}

func (Appointment) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("appointments").
			Field("user_id").
			Required().
			Unique(),
	}
}

func (Appointment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "appointment_date"),
		index.Fields("user_id", "status"),
	}
}
