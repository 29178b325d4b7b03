package schema

import (
	"encoding/json"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/db/ent/schema/utils"
)

// DocumentAnalysis is the persisted outcome of one pipeline run over one
// uploaded document.
type DocumentAnalysis struct{ ent.Schema }

func (DocumentAnalysis) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "document_analyses"},
	}
}

func (DocumentAnalysis) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.UUID("user_id", uuid.UUID{}),
		field.String("filename").NotEmpty(),
		field.String("file_path").NotEmpty(),
		field.String("file_ext").NotEmpty().
			Validate(utils.EnumValidator(constants.FileTypes...)),
		field.Int64("file_size").NonNegative(),
		field.Bytes("content_hash").NotEmpty().
			SchemaType(map[string]string{dialect.Postgres: "bytea"}),
		field.String("category").Default(string(constants.General)).
			Validate(utils.EnumValidator(constants.AsStringSlice()...)),
		field.Float32("confidence").Default(0),
		field.String("extractor").Optional().Nillable(),
		field.String("raw_text").Optional().Nillable().
			SchemaType(map[string]string{dialect.Postgres: "text"}),
		field.JSON("fields_json", json.RawMessage{}).Optional(),
		field.String("summary").Optional().Nillable().
			SchemaType(map[string]string{dialect.Postgres: "text"}),
		field.JSON("recommendations", []string{}).Optional(),
		field.String("summary_source").Optional().Nillable(),
		field.JSON("tags", []string{}).Optional(),
		field.JSON("warnings", []string{}).Optional(),
		field.String("status").Default(string(constants.AnalysisQueued)).
			Validate(utils.EnumValidator(constants.AnalysisStatuses...)),
		field.String("error_code").Optional().Nillable(),
		field.String("error_message").Optional().Nillable(),
		field.Time("analyzed_at").Optional().Nillable(),
		field.Time("created_at").Default(time.Now),
	}
}

func (DocumentAnalysis) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("documents").
			Field("user_id").
			Required().
			Unique(),
	}
}

func (DocumentAnalysis) Indexes() []ent.Index {
	return []ent.Index{
		// one row per distinct file content per user
		index.Fields("user_id", "content_hash").Unique(),
		index.Fields("user_id", "category"),
		index.Fields("user_id", "created_at"),
		index.Fields("status"),
	}
}
