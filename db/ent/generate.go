package main

import (
	"log"

	"entgo.io/ent/entc"
	"entgo.io/ent/entc/gen"
)

// Regenerates gen/ent from the schemas below. Run from the repo root:
//
//	go run ./db/ent
func main() {
	err := entc.Generate(
		"./db/ent/schema",
		&gen.Config{
			Target:  "gen/ent",
			Package: "github.com/anudeep227/personal-health-manager/gen/ent",
			Schema:  "github.com/anudeep227/personal-health-manager/db/ent/schema",
		},
	)
	if err != nil {
		log.Fatal(err)
	}
}
