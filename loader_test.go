package schemamodel_test

import (
	"context"
	"testing"
	"testing/fstest"

	schemamodel "github.com/goliatone/go-schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/jsonschema"
	engine "github.com/goliatone/go-schemamodel/pkg/schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

func TestOpen(t *testing.T) {
	files := fstest.MapFS{
		"model.yaml": {Data: []byte("type: object\nproperties:\n  name:\n    type: string\n")},
	}
	loader := schemamodel.NewLoader(jsonschema.WithFileSystem(files))

	saves := 0
	model, doc, err := schemamodel.Open(context.Background(), loader, jsonschema.SourceFromFS("model.yaml"), func(*engine.SavableSchemaModel) {
		saves++
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if doc.Format() != jsonschema.FormatYAML {
		t.Fatalf("expected yaml document, got %s", doc.Format())
	}
	if !model.HasNode("#/properties/name") {
		t.Fatalf("expected name property")
	}

	if _, err := model.AddField("age", uischema.FieldTypeInteger, engine.RootPosition()); err != nil {
		t.Fatalf("add field: %v", err)
	}
	if saves != 1 {
		t.Fatalf("expected one save, got %d", saves)
	}
}

func TestOpenRejectsNilLoader(t *testing.T) {
	if _, _, err := schemamodel.Open(context.Background(), nil, jsonschema.SourceFromFile("x.json"), nil); err == nil {
		t.Fatalf("expected error")
	}
}
