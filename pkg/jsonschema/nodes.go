package jsonschema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemamodel/pkg/pointer"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

var (
	// ErrUnsupportedDialect is returned when $schema names a draft other than
	// 2020-12.
	ErrUnsupportedDialect = errors.New("jsonschema: unsupported $schema")
	// ErrUnsupportedSchema is returned for constructs the node model cannot
	// represent: boolean schemas, nested arrays, multi-type unions.
	ErrUnsupportedSchema = errors.New("jsonschema: unsupported schema")
	// ErrUnsupportedReference is returned for $ref values outside #/$defs.
	ErrUnsupportedReference = errors.New("jsonschema: unsupported $ref")
)

const dialect202012 = "https://json-schema.org/draft/2020-12/schema"

// Keywords owned by the node shape. They never land in Custom.
const (
	keywordSchema   = "$schema"
	keywordRef      = "$ref"
	keywordType     = "type"
	keywordRequired = "required"
	keywordTitle    = "title"
	keywordDesc     = "description"
	keywordDefault  = "default"
)

// restrictionKeywords are copied into Restrictions, in output order.
var restrictionKeywords = []string{
	"format", "pattern", "minLength", "maxLength",
	"minimum", "exclusiveMinimum", "maximum", "exclusiveMaximum", "multipleOf",
	"enum", "const",
	"minProperties", "maxProperties",
	"minItems", "maxItems", "uniqueItems", "minContains", "maxContains",
}

// arrayKeywords describe the array itself rather than its items.
var arrayKeywords = map[string]bool{
	"minItems": true, "maxItems": true, "uniqueItems": true,
	"minContains": true, "maxContains": true,
}

func isRestriction(key string) bool {
	for _, candidate := range restrictionKeywords {
		if candidate == key {
			return true
		}
	}
	return false
}

// DecodeOption configures BuildNodes and ParseDocument.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	requireDialect bool
}

// WithRequiredDialect rejects documents without a $schema keyword.
func WithRequiredDialect() DecodeOption {
	return func(opts *decodeOptions) {
		opts.requireDialect = true
	}
}

// ParseDocument decodes a loaded document into its flat node array.
func ParseDocument(doc Document, options ...DecodeOption) ([]uischema.Node, error) {
	obj, err := Decode(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Location(), err)
	}
	nodes, err := BuildNodes(obj, options...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Location(), err)
	}
	return nodes, nil
}

// BuildNodes converts a decoded document into the flat node array consumed by
// schemamodel. The root comes first, followed by every node depth first in
// document order; root properties precede $defs.
func BuildNodes(doc *Object, options ...DecodeOption) ([]uischema.Node, error) {
	if doc == nil {
		return nil, errors.New("jsonschema: document is nil")
	}
	opts := decodeOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	if err := validateDialect(doc, opts.requireDialect); err != nil {
		return nil, err
	}
	if doc.Has(keywordRef) {
		return nil, fmt.Errorf("%w: root cannot be a reference", ErrUnsupportedSchema)
	}

	b := &nodeBuilder{}
	root, err := b.build(doc, pointer.Root, true)
	if err != nil {
		return nil, err
	}
	if rawDefs, ok := doc.Get(pointer.KeywordDefs); ok {
		defs, ok := rawDefs.(*Object)
		if !ok {
			return nil, fmt.Errorf("%w: $defs must be an object", ErrUnsupportedSchema)
		}
		parent, ok := root.(uischema.Parent)
		if !ok {
			return nil, fmt.Errorf("%w: root must be an object or combination", ErrUnsupportedSchema)
		}
		children := parent.ChildPointers()
		for _, name := range defs.Keys() {
			value, _ := defs.Get(name)
			def := pointer.Definition(name)
			if _, err := b.build(value, def, false); err != nil {
				return nil, err
			}
			children = append(children, def)
		}
		parent.SetChildPointers(children)
	}

	if err := uischema.Validate(b.nodes); err != nil {
		return nil, err
	}
	return b.nodes, nil
}

func validateDialect(doc *Object, required bool) error {
	raw, ok := doc.Get(keywordSchema)
	if !ok {
		if required {
			return errors.New("jsonschema: $schema is required")
		}
		return nil
	}
	value, _ := raw.(string)
	if !isDraft202012(value) {
		return fmt.Errorf("%w %q", ErrUnsupportedDialect, value)
	}
	return nil
}

func isDraft202012(value string) bool {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimSuffix(trimmed, "#")
	switch trimmed {
	case dialect202012, "http://json-schema.org/draft/2020-12/schema":
		return true
	default:
		return false
	}
}

type nodeBuilder struct {
	nodes []uischema.Node
}

// build creates the node for value at ptr, appends it, then recurses into its
// children.
func (b *nodeBuilder) build(value any, ptr string, isRoot bool) (uischema.Node, error) {
	obj, ok := value.(*Object)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an object schema", ErrUnsupportedSchema, ptr)
	}

	outerTypes, err := readTypes(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ptr, err)
	}
	isArray := len(outerTypes.types) == 1 && outerTypes.types[0] == "array"

	shape := obj
	if isArray {
		shape = NewObject()
		if items, ok := obj.Get(pointer.KeywordItems); ok {
			if shape, ok = items.(*Object); !ok {
				return nil, fmt.Errorf("%w: %s/items must be an object", ErrUnsupportedSchema, ptr)
			}
		}
	}

	node, err := b.shape(shape, ptr)
	if err != nil {
		return nil, err
	}
	base := node.Base()
	base.Pointer = ptr
	base.IsArray = isArray
	if isArray {
		base.IsNillable = outerTypes.nillable
	}

	consumed := map[string]bool{}
	readCommon(base, obj, consumed)
	readRestrictions(base, obj, consumed)
	if isArray {
		consumed[keywordType] = true
		consumed[pointer.KeywordItems] = true
		readCommon(base, shape, nil)
		shapeConsumed := shapeKeys(node, shape)
		readRestrictions(base, shape, shapeConsumed)
		readCustom(base, shape, shapeConsumed)
	} else {
		for key := range shapeKeys(node, obj) {
			consumed[key] = true
		}
	}
	if isRoot {
		consumed[pointer.KeywordDefs] = true
	}
	readCustom(base, obj, consumed)

	b.nodes = append(b.nodes, node)
	return node, b.children(node, shape, ptr)
}

// shape picks the node variant from the keywords describing a single value.
func (b *nodeBuilder) shape(obj *Object, ptr string) (uischema.Node, error) {
	if raw, ok := obj.Get(keywordRef); ok {
		target, _ := raw.(string)
		if !pointer.IsDirectDefinition(target) {
			return nil, fmt.Errorf("%w %q at %s", ErrUnsupportedReference, target, ptr)
		}
		return uischema.NewReferenceNode(target), nil
	}
	if kind, ok := combinationKeyword(obj); ok {
		return uischema.NewCombinationNode(kind), nil
	}

	types, err := readTypes(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ptr, err)
	}
	switch len(types.types) {
	case 0:
		node := uischema.NewFieldNode(uischema.FieldTypeObject)
		node.ImplicitType = true
		return node, nil
	case 1:
		if types.types[0] == "array" {
			return nil, fmt.Errorf("%w: nested array at %s", ErrUnsupportedSchema, ptr)
		}
		fieldType := uischema.FieldType(types.types[0])
		if !fieldType.Valid() {
			return nil, fmt.Errorf("%w: type %q at %s", ErrUnsupportedSchema, fieldType, ptr)
		}
		node := uischema.NewFieldNode(fieldType)
		node.IsNillable = types.nillable
		return node, nil
	default:
		return nil, fmt.Errorf("%w: type union %v at %s", ErrUnsupportedSchema, types.types, ptr)
	}
}

func (b *nodeBuilder) children(node uischema.Node, shape *Object, ptr string) error {
	switch typed := node.(type) {
	case *uischema.CombinationNode:
		raw, _ := shape.Get(string(typed.CombinationType))
		members, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("%w: %s/%s must be an array", ErrUnsupportedSchema, ptr, typed.CombinationType)
		}
		for idx, member := range members {
			childPtr := uischema.ChildPointer(typed, strconv.Itoa(idx))
			if _, err := b.build(member, childPtr, false); err != nil {
				return err
			}
			typed.Children = append(typed.Children, childPtr)
		}
	case *uischema.FieldNode:
		if typed.FieldType != uischema.FieldTypeObject {
			return nil
		}
		rawProps, ok := shape.Get(pointer.KeywordProperties)
		if !ok {
			return nil
		}
		props, ok := rawProps.(*Object)
		if !ok {
			return fmt.Errorf("%w: %s/properties must be an object", ErrUnsupportedSchema, ptr)
		}
		required := requiredNames(shape)
		for _, name := range props.Keys() {
			value, _ := props.Get(name)
			childPtr := uischema.ChildPointer(typed, name)
			child, err := b.build(value, childPtr, false)
			if err != nil {
				return err
			}
			child.Base().IsRequired = required[name]
			typed.Children = append(typed.Children, childPtr)
		}
	}
	return nil
}

// shapeKeys lists the keywords consumed by the variant chosen for node.
func shapeKeys(node uischema.Node, obj *Object) map[string]bool {
	keys := map[string]bool{}
	switch typed := node.(type) {
	case *uischema.ReferenceNode:
		keys[keywordRef] = true
	case *uischema.CombinationNode:
		keys[string(typed.CombinationType)] = true
	case *uischema.FieldNode:
		keys[keywordType] = true
		if typed.FieldType == uischema.FieldTypeObject && obj.Has(pointer.KeywordProperties) {
			keys[pointer.KeywordProperties] = true
			keys[keywordRequired] = true
		}
	}
	return keys
}

func combinationKeyword(obj *Object) (uischema.CombinationKind, bool) {
	for _, kind := range []uischema.CombinationKind{uischema.CombinationAllOf, uischema.CombinationAnyOf, uischema.CombinationOneOf} {
		if obj.Has(string(kind)) {
			return kind, true
		}
	}
	return "", false
}

type typeSet struct {
	types    []string
	nillable bool
}

// readTypes splits the type keyword into its non-null members and a nillable
// flag.
func readTypes(obj *Object) (typeSet, error) {
	raw, ok := obj.Get(keywordType)
	if !ok {
		return typeSet{}, nil
	}
	var names []string
	switch typed := raw.(type) {
	case string:
		names = []string{typed}
	case []any:
		for _, item := range typed {
			name, ok := item.(string)
			if !ok {
				return typeSet{}, fmt.Errorf("%w: type entries must be strings", ErrUnsupportedSchema)
			}
			names = append(names, name)
		}
	default:
		return typeSet{}, fmt.Errorf("%w: type must be a string or array", ErrUnsupportedSchema)
	}
	out := typeSet{}
	for _, name := range names {
		if name == string(uischema.FieldTypeNull) && len(names) > 1 {
			out.nillable = true
			continue
		}
		out.types = append(out.types, name)
	}
	return out, nil
}

func requiredNames(obj *Object) map[string]bool {
	out := map[string]bool{}
	raw, _ := obj.Get(keywordRequired)
	list, _ := raw.([]any)
	for _, item := range list {
		if name, ok := item.(string); ok {
			out[name] = true
		}
	}
	return out
}

// readCommon fills empty title, description and default from obj.
func readCommon(base *uischema.Common, obj *Object, consumed map[string]bool) {
	if raw, ok := obj.Get(keywordTitle); ok {
		if value, ok := raw.(string); ok && base.Title == "" {
			base.Title = value
			markConsumed(consumed, keywordTitle)
		}
	}
	if raw, ok := obj.Get(keywordDesc); ok {
		if value, ok := raw.(string); ok && base.Description == "" {
			base.Description = value
			markConsumed(consumed, keywordDesc)
		}
	}
	if raw, ok := obj.Get(keywordDefault); ok && base.Default == nil {
		base.Default = uischema.CloneValue(raw)
		markConsumed(consumed, keywordDefault)
	}
}

func readRestrictions(base *uischema.Common, obj *Object, consumed map[string]bool) {
	for _, key := range obj.Keys() {
		if !isRestriction(key) || consumed[key] {
			continue
		}
		value, _ := obj.Get(key)
		if base.Restrictions == nil {
			base.Restrictions = uischema.Restrictions{}
		}
		base.Restrictions[key] = uischema.CloneValue(value)
		consumed[key] = true
	}
}

func readCustom(base *uischema.Common, obj *Object, consumed map[string]bool) {
	for _, key := range obj.Keys() {
		if consumed[key] {
			continue
		}
		switch key {
		case keywordTitle, keywordDesc, keywordDefault:
			// Already read into the common attributes, or a duplicate from
			// items that the outer schema overrides.
			continue
		}
		value, _ := obj.Get(key)
		if base.Custom == nil {
			base.Custom = map[string]any{}
		}
		base.Custom[key] = uischema.CloneValue(value)
	}
}

func markConsumed(consumed map[string]bool, key string) {
	if consumed != nil {
		consumed[key] = true
	}
}
