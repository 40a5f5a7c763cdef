package importer

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemamodel/pkg/jsonschema"
	pkgopenapi "github.com/goliatone/go-schemamodel/pkg/openapi"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

const petstore = `openapi: 3.0.3
info:
  title: Pets
  version: "1.0.0"
paths: {}
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
          minLength: 1
        tag:
          type: string
          nullable: true
        owner:
          $ref: '#/components/schemas/Owner'
        kind:
          oneOf:
            - $ref: '#/components/schemas/Owner'
            - type: string
              enum: [cat, dog]
    Owner:
      type: object
      x-label: Owner
      properties:
        id:
          type: integer
          format: int64
`

func load(t *testing.T, raw string) jsonschema.Document {
	t.Helper()
	return jsonschema.MustNewDocument(jsonschema.SourceFromBytes("petstore.yaml"), []byte(raw))
}

func TestComponentsKeepDocumentOrder(t *testing.T) {
	importer := New(pkgopenapi.NewImportOptions())
	out, err := importer.Components(context.Background(), load(t, petstore))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if diff := cmp.Diff([]string{"$schema", "title", "type", "$defs"}, out.Keys()); diff != "" {
		t.Fatalf("root keys (-want +got):\n%s", diff)
	}
	rawDefs, _ := out.Get("$defs")
	defs := rawDefs.(*jsonschema.Object)
	if diff := cmp.Diff([]string{"Pet", "Owner"}, defs.Keys()); diff != "" {
		t.Fatalf("definition order (-want +got):\n%s", diff)
	}
	pet := child(defs, "Pet")
	props := child(pet, "properties")
	if diff := cmp.Diff([]string{"name", "tag", "owner", "kind"}, props.Keys()); diff != "" {
		t.Fatalf("property order (-want +got):\n%s", diff)
	}
	if ref, _ := child(props, "owner").Get("$ref"); ref != "#/$defs/Owner" {
		t.Fatalf("expected rewritten ref, got %v", ref)
	}
	if types, _ := child(props, "tag").Get("type"); !cmp.Equal(types, []any{"string", "null"}) {
		t.Fatalf("expected nullable union, got %v", types)
	}
}

func TestImportNodes(t *testing.T) {
	nodes, err := pkgopenapi.ImportNodes(context.Background(), New(pkgopenapi.NewImportOptions(pkgopenapi.WithTitle("Zoo"))), load(t, petstore))
	if err != nil {
		t.Fatalf("import nodes: %v", err)
	}
	byPointer := map[string]uischema.Node{}
	for _, node := range nodes {
		byPointer[node.Base().Pointer] = node
	}

	if byPointer["#"].Base().Title != "Zoo" {
		t.Fatalf("expected title override")
	}
	name, ok := byPointer["#/$defs/Pet/properties/name"].(*uischema.FieldNode)
	if !ok || !name.IsRequired || name.Restrictions["minLength"] != 1 {
		t.Fatalf("unexpected name node: %+v", byPointer["#/$defs/Pet/properties/name"])
	}
	if tag := byPointer["#/$defs/Pet/properties/tag"]; tag == nil || !tag.Base().IsNillable {
		t.Fatalf("expected nillable tag")
	}
	owner, ok := byPointer["#/$defs/Pet/properties/owner"].(*uischema.ReferenceNode)
	if !ok || owner.Reference != "#/$defs/Owner" {
		t.Fatalf("unexpected owner node: %+v", byPointer["#/$defs/Pet/properties/owner"])
	}
	kind, ok := byPointer["#/$defs/Pet/properties/kind"].(*uischema.CombinationNode)
	if !ok || kind.CombinationType != uischema.CombinationOneOf || len(kind.Children) != 2 {
		t.Fatalf("unexpected kind node: %+v", byPointer["#/$defs/Pet/properties/kind"])
	}
	if byPointer["#/$defs/Owner"].Base().Custom["x-label"] != "Owner" {
		t.Fatalf("expected vendor extension to survive")
	}
}

func TestComponentsRejectsNonOpenAPI(t *testing.T) {
	importer := New(pkgopenapi.NewImportOptions())
	if _, err := importer.Components(context.Background(), load(t, `{"type":"object"}`)); err == nil {
		t.Fatalf("expected error for plain JSON Schema input")
	}
}

func TestComponentsWithoutSchemas(t *testing.T) {
	importer := New(pkgopenapi.NewImportOptions())
	out, err := importer.Components(context.Background(), load(t, "openapi: 3.0.3\ninfo: {title: Empty, version: '1'}\npaths: {}\n"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.Has("$defs") {
		t.Fatalf("expected no definitions")
	}
}

func TestRewriteRef(t *testing.T) {
	if got, err := rewriteRef("#/components/schemas/Pet", "#"); err != nil || got != "#/$defs/Pet" {
		t.Fatalf("unexpected rewrite %q, %v", got, err)
	}
	for _, ref := range []string{"other.yaml#/Pet", "#/components/parameters/id", "#/components/schemas/Pet/properties/name"} {
		if _, err := rewriteRef(ref, "#"); err == nil {
			t.Fatalf("expected %q to be rejected", ref)
		}
	}
}
