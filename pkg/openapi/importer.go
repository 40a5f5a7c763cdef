package openapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-schemamodel/pkg/jsonschema"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

// ErrExternalReference is returned when a component refers to a schema outside
// the document's own components.
var ErrExternalReference = errors.New("openapi: external reference")

// Importer converts the component schemas of an OpenAPI 3 document into a
// JSON Schema document whose $defs hold every component. References of the
// form #/components/schemas/X become #/$defs/X and nullable schemas gain a
// null type.
type Importer interface {
	Components(ctx context.Context, doc jsonschema.Document) (*jsonschema.Object, error)
}

// ImportOptions exposes the importer toggles.
type ImportOptions struct {
	// Validate runs the OpenAPI validator before converting. Examples are not
	// validated.
	Validate bool

	// AllowExternalRefs lets the OpenAPI loader follow refs to other files.
	// Components that keep such refs are still rejected.
	AllowExternalRefs bool

	// Title overrides the title of the produced document. Defaults to the
	// OpenAPI info title.
	Title string
}

// ImportOption mutates ImportOptions during construction.
type ImportOption func(*ImportOptions)

// WithValidation toggles OpenAPI validation.
func WithValidation(enabled bool) ImportOption {
	return func(opts *ImportOptions) {
		opts.Validate = enabled
	}
}

// WithExternalReferences toggles loading of external refs.
func WithExternalReferences(enabled bool) ImportOption {
	return func(opts *ImportOptions) {
		opts.AllowExternalRefs = enabled
	}
}

// WithTitle sets the document title.
func WithTitle(title string) ImportOption {
	return func(opts *ImportOptions) {
		opts.Title = title
	}
}

// NewImportOptions applies ImportOption functions and returns the resulting
// configuration. Implementations under internal/openapi call this helper to
// remain consistent.
func NewImportOptions(options ...ImportOption) ImportOptions {
	cfg := ImportOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// ImportNodes imports doc and converts the result into a node array ready for
// schemamodel.
func ImportNodes(ctx context.Context, importer Importer, doc jsonschema.Document) ([]uischema.Node, error) {
	if importer == nil {
		return nil, errors.New("openapi: importer is nil")
	}
	obj, err := importer.Components(ctx, doc)
	if err != nil {
		return nil, err
	}
	nodes, err := jsonschema.BuildNodes(obj)
	if err != nil {
		return nil, fmt.Errorf("openapi: build nodes: %w", err)
	}
	return nodes, nil
}

// Construction helpers live in the top-level schemamodel package to avoid
// import cycles.
