package schemamodel

import (
	"context"
	"errors"

	internalLoader "github.com/goliatone/go-schemamodel/internal/jsonschema/loader"
	internalImporter "github.com/goliatone/go-schemamodel/internal/openapi/importer"
	"github.com/goliatone/go-schemamodel/pkg/jsonschema"
	pkgopenapi "github.com/goliatone/go-schemamodel/pkg/openapi"
	engine "github.com/goliatone/go-schemamodel/pkg/schemamodel"
)

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...jsonschema.LoaderOption) jsonschema.Loader {
	cfg := jsonschema.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewImporter constructs an OpenAPI component importer backed by the internal
// implementation.
func NewImporter(options ...pkgopenapi.ImportOption) pkgopenapi.Importer {
	cfg := pkgopenapi.NewImportOptions(options...)
	return internalImporter.New(cfg)
}

// Open loads the document at src and wraps its nodes in a savable model. The
// returned document carries the source format so callers can save it back in
// kind.
func Open(ctx context.Context, loader jsonschema.Loader, src jsonschema.Source, save engine.SaveFunc, options ...jsonschema.DecodeOption) (*engine.SavableSchemaModel, jsonschema.Document, error) {
	if loader == nil {
		return nil, jsonschema.Document{}, errors.New("schemamodel: loader is nil")
	}
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return nil, jsonschema.Document{}, err
	}
	nodes, err := jsonschema.ParseDocument(doc, options...)
	if err != nil {
		return nil, doc, err
	}
	return engine.NewSavable(engine.NewNodeMap(nodes...), save), doc, nil
}
