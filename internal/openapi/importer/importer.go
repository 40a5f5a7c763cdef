package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-schemamodel/pkg/jsonschema"
	pkgopenapi "github.com/goliatone/go-schemamodel/pkg/openapi"
	"github.com/goliatone/go-schemamodel/pkg/pointer"
)

const (
	componentsPrefix = "#/components/schemas/"
	dialect          = "https://json-schema.org/draft/2020-12/schema"
)

// Importer implements pkgopenapi.Importer using kin-openapi.
type Importer struct {
	options pkgopenapi.ImportOptions
}

// Ensure the implementation satisfies the public interface.
var _ pkgopenapi.Importer = (*Importer)(nil)

// New constructs an Importer with the given options.
func New(options pkgopenapi.ImportOptions) pkgopenapi.Importer {
	return &Importer{options: options}
}

// Components loads doc with kin-openapi and rebuilds its component schemas as
// $defs. Component and property order follow the source document; kin-openapi
// only keeps maps, so the ordered decode of the same payload supplies the
// order.
func (i *Importer) Components(ctx context.Context, doc jsonschema.Document) (*jsonschema.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi importer: document payload is empty")
	}

	ordered, err := jsonschema.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi importer: %w", err)
	}
	if !ordered.Has("openapi") {
		return nil, errors.New("openapi importer: document is not OpenAPI 3")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: i.options.AllowExternalRefs,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi importer: load document: %w", err)
	}
	if i.options.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi importer: validate: %w", err)
		}
	}

	out := jsonschema.NewObject()
	out.Set("$schema", dialect)
	if title := i.title(ordered); title != "" {
		out.Set("title", title)
	}
	out.Set("type", "object")

	orderedSchemas := child(child(ordered, "components"), "schemas")
	if orderedSchemas == nil {
		return out, nil
	}
	defs := jsonschema.NewObject()
	for _, name := range orderedNames(orderedSchemas, spec.Components.Schemas) {
		converted, err := convertSchema(spec.Components.Schemas[name], child(orderedSchemas, name), componentsPrefix+name)
		if err != nil {
			return nil, err
		}
		defs.Set(name, converted)
	}
	if defs.Len() > 0 {
		out.Set(pointer.KeywordDefs, defs)
	}
	return out, nil
}

func (i *Importer) title(ordered *jsonschema.Object) string {
	if strings.TrimSpace(i.options.Title) != "" {
		return i.options.Title
	}
	raw, _ := child(ordered, "info").Get("title")
	title, _ := raw.(string)
	return title
}

// convertSchema turns a kin-openapi schema into its JSON Schema 2020-12 form.
// twin is the same schema from the ordered decode and may be nil.
func convertSchema(ref *openapi3.SchemaRef, twin *jsonschema.Object, at string) (*jsonschema.Object, error) {
	out := jsonschema.NewObject()
	if ref == nil {
		return out, nil
	}
	if ref.Ref != "" {
		target, err := rewriteRef(ref.Ref, at)
		if err != nil {
			return nil, err
		}
		return out.Set("$ref", target), nil
	}
	src := ref.Value
	if src == nil {
		return out, nil
	}

	if src.Title != "" {
		out.Set("title", src.Title)
	}
	if src.Description != "" {
		out.Set("description", src.Description)
	}
	if types := schemaTypes(src); types != nil {
		out.Set("type", types)
	}

	if len(src.Properties) > 0 {
		orderedProps := child(twin, "properties")
		props := jsonschema.NewObject()
		for _, name := range orderedNames(orderedProps, src.Properties) {
			converted, err := convertSchema(src.Properties[name], child(orderedProps, name), at+"/properties/"+name)
			if err != nil {
				return nil, err
			}
			props.Set(name, converted)
		}
		out.Set("properties", props)
	}
	if len(src.Required) > 0 {
		required := make([]any, 0, len(src.Required))
		for _, name := range src.Required {
			required = append(required, name)
		}
		out.Set("required", required)
	}
	if src.Items != nil {
		items, err := convertSchema(src.Items, child(twin, "items"), at+"/items")
		if err != nil {
			return nil, err
		}
		out.Set("items", items)
	}
	for _, combination := range []struct {
		keyword string
		refs    openapi3.SchemaRefs
	}{
		{pointer.KeywordAllOf, src.AllOf},
		{pointer.KeywordAnyOf, src.AnyOf},
		{pointer.KeywordOneOf, src.OneOf},
	} {
		if len(combination.refs) == 0 {
			continue
		}
		members, err := convertMembers(combination.refs, twin, combination.keyword, at)
		if err != nil {
			return nil, err
		}
		out.Set(combination.keyword, members)
	}

	writeRestrictions(out, src)
	if src.Default != nil {
		out.Set("default", src.Default)
	}
	writeAnnotations(out, src)
	return out, nil
}

func convertMembers(refs openapi3.SchemaRefs, twin *jsonschema.Object, keyword, at string) ([]any, error) {
	rawMembers, _ := twin.Get(keyword)
	orderedMembers, _ := rawMembers.([]any)
	out := make([]any, 0, len(refs))
	for idx, ref := range refs {
		var memberTwin *jsonschema.Object
		if idx < len(orderedMembers) {
			memberTwin, _ = orderedMembers[idx].(*jsonschema.Object)
		}
		converted, err := convertSchema(ref, memberTwin, fmt.Sprintf("%s/%s/%d", at, keyword, idx))
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// schemaTypes folds the OpenAPI 3.0 nullable flag into a type union.
func schemaTypes(src *openapi3.Schema) any {
	var types []string
	if src.Type != nil {
		types = src.Type.Slice()
	}
	if src.Nullable && len(types) > 0 && !contains(types, "null") {
		types = append(types, "null")
	}
	switch len(types) {
	case 0:
		return nil
	case 1:
		return types[0]
	default:
		out := make([]any, len(types))
		for idx, value := range types {
			out[idx] = value
		}
		return out
	}
}

func writeRestrictions(out *jsonschema.Object, src *openapi3.Schema) {
	if src.Format != "" {
		out.Set("format", src.Format)
	}
	if src.Pattern != "" {
		out.Set("pattern", src.Pattern)
	}
	if src.MinLength != 0 {
		out.Set("minLength", int(src.MinLength))
	}
	if src.MaxLength != nil {
		out.Set("maxLength", int(*src.MaxLength))
	}
	if src.Min != nil {
		if src.ExclusiveMin {
			out.Set("exclusiveMinimum", *src.Min)
		} else {
			out.Set("minimum", *src.Min)
		}
	}
	if src.Max != nil {
		if src.ExclusiveMax {
			out.Set("exclusiveMaximum", *src.Max)
		} else {
			out.Set("maximum", *src.Max)
		}
	}
	if src.MultipleOf != nil {
		out.Set("multipleOf", *src.MultipleOf)
	}
	if len(src.Enum) > 0 {
		out.Set("enum", append([]any(nil), src.Enum...))
	}
	if src.MinItems != 0 {
		out.Set("minItems", int(src.MinItems))
	}
	if src.MaxItems != nil {
		out.Set("maxItems", int(*src.MaxItems))
	}
	if src.UniqueItems {
		out.Set("uniqueItems", true)
	}
}

// writeAnnotations keeps the OpenAPI annotations that JSON Schema shares, plus
// every vendor extension, sorted by name.
func writeAnnotations(out *jsonschema.Object, src *openapi3.Schema) {
	if src.ReadOnly {
		out.Set("readOnly", true)
	}
	if src.WriteOnly {
		out.Set("writeOnly", true)
	}
	if src.Deprecated {
		out.Set("deprecated", true)
	}
	if src.Example != nil {
		out.Set("examples", []any{src.Example})
	}
	keys := make([]string, 0, len(src.Extensions))
	for key := range src.Extensions {
		if strings.HasPrefix(key, "x-") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		out.Set(key, src.Extensions[key])
	}
}

func rewriteRef(ref, at string) (string, error) {
	if !strings.HasPrefix(ref, componentsPrefix) {
		return "", fmt.Errorf("%w %q at %s", pkgopenapi.ErrExternalReference, ref, at)
	}
	name := strings.TrimPrefix(ref, componentsPrefix)
	if name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("%w %q at %s", pkgopenapi.ErrExternalReference, ref, at)
	}
	return "#/" + pointer.KeywordDefs + "/" + name, nil
}

// orderedNames lists the keys of schemas in document order, falling back to
// sorted order for keys the ordered decode does not know.
func orderedNames(twin *jsonschema.Object, schemas openapi3.Schemas) []string {
	seen := make(map[string]bool, len(schemas))
	out := make([]string, 0, len(schemas))
	for _, name := range twin.Keys() {
		if _, ok := schemas[name]; ok {
			out = append(out, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range schemas {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func child(obj *jsonschema.Object, key string) *jsonschema.Object {
	raw, _ := obj.Get(key)
	out, _ := raw.(*jsonschema.Object)
	return out
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
