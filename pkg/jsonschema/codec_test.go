package jsonschema

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemamodel/pkg/testsupport"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

func TestBuildNodesFromFixture(t *testing.T) {
	raw := testsupport.ReadFixture(t, filepath.Join("testdata", "mock.schema.yaml"))
	doc, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := BuildNodes(doc)
	if err != nil {
		t.Fatalf("build nodes: %v", err)
	}
	if diff := cmp.Diff(testsupport.MockNodes(), got); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSchemaMatchesFixture(t *testing.T) {
	want, err := Decode(testsupport.ReadFixture(t, filepath.Join("testdata", "mock.schema.yaml")))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := BuildSchema(testsupport.MockNodes())
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}
	if diff := cmp.Diff(want.ToMap(), got.ToMap()); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"type", "properties", "$defs"}, got.Keys()); diff != "" {
		t.Fatalf("root key order (-want +got):\n%s", diff)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	nodes := testsupport.MockNodes()
	doc, err := BuildSchema(nodes)
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}

	for _, format := range []Format{FormatJSON, FormatYAML} {
		raw, err := Encode(doc, format)
		if err != nil {
			t.Fatalf("encode %s: %v", format, err)
		}
		if DetectFormat(raw) != format {
			t.Fatalf("expected %s output to be detected as %s", format, format)
		}
		decoded, err := Decode(raw)
		if err != nil {
			t.Fatalf("decode %s: %v", format, err)
		}
		got, err := BuildNodes(decoded)
		if err != nil {
			t.Fatalf("build nodes from %s: %v", format, err)
		}
		if diff := cmp.Diff(nodes, got); diff != "" {
			t.Fatalf("%s round trip mismatch (-want +got):\n%s", format, diff)
		}
	}
}

func TestDecodeKeepsPropertyOrder(t *testing.T) {
	raw := testsupport.ReadFixture(t, filepath.Join("testdata", "ordered.schema.json"))
	nodes, err := ParseDocument(MustNewDocument(SourceFromFile("ordered.schema.json"), raw), WithRequiredDialect())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	root := nodes[0].(*uischema.FieldNode)
	want := []string{
		"#/properties/zeta",
		"#/properties/alpha",
		"#/properties/mid",
		"#/properties/tags",
	}
	if diff := cmp.Diff(want, root.Children); diff != "" {
		t.Fatalf("children order (-want +got):\n%s", diff)
	}
	if root.Title != "Order" || root.Custom["$id"] != "https://example.com/order.schema.json" {
		t.Fatalf("unexpected root attributes: %+v", root.Common)
	}

	byPointer := map[string]uischema.Node{}
	for _, node := range nodes {
		byPointer[node.Base().Pointer] = node
	}

	alpha := byPointer["#/properties/alpha"].(*uischema.FieldNode)
	if !alpha.IsRequired || alpha.FieldType != uischema.FieldTypeNumber || alpha.Default != 1.5 {
		t.Fatalf("unexpected alpha: %+v", alpha)
	}

	mid := byPointer["#/properties/mid"].(*uischema.FieldNode)
	if !mid.ImplicitType || mid.Description != "Free form" || mid.Custom["additionalProperties"] != false {
		t.Fatalf("unexpected mid: %+v", mid)
	}

	tags := byPointer["#/properties/tags"].(*uischema.FieldNode)
	if !tags.IsArray || !tags.IsNillable || tags.FieldType != uischema.FieldTypeString {
		t.Fatalf("unexpected tags: %+v", tags)
	}
	wantRestrictions := uischema.Restrictions{"enum": []any{"a", "b"}, "uniqueItems": true}
	if diff := cmp.Diff(wantRestrictions, tags.Restrictions); diff != "" {
		t.Fatalf("tags restrictions (-want +got):\n%s", diff)
	}

	doc, err := BuildSchema(nodes)
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}
	if diff := cmp.Diff([]string{"$id", "$schema", "title", "type", "properties", "required"}, doc.Keys()); diff != "" {
		t.Fatalf("root key order (-want +got):\n%s", diff)
	}
	rawTags, _ := doc.Get("properties")
	tagSchema, _ := rawTags.(*Object).Get("tags")
	if diff := cmp.Diff([]string{"type", "items", "uniqueItems"}, tagSchema.(*Object).Keys()); diff != "" {
		t.Fatalf("array key order (-want +got):\n%s", diff)
	}
}

func TestEncodeJSONKeepsOrder(t *testing.T) {
	obj := NewObject().Set("b", 1).Set("a", NewObject().Set("z", true).Set("y", []any{"x"}))
	out, err := EncodeJSON(obj, "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got, want := string(out), `{"b":1,"a":{"z":true,"y":["x"]}}`; got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	yamlOut, err := EncodeYAML(obj)
	if err != nil {
		t.Fatalf("encode yaml: %v", err)
	}
	if !strings.HasPrefix(string(yamlOut), "b: 1\na:\n  z: true\n") {
		t.Fatalf("unexpected yaml:\n%s", yamlOut)
	}
}

func TestObjectSetKeepsPosition(t *testing.T) {
	obj := NewObject().Set("a", 1).Set("b", 2).Set("a", 3)
	if diff := cmp.Diff([]string{"a", "b"}, obj.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	if !obj.Delete("a") || obj.Delete("a") {
		t.Fatalf("expected a single successful delete")
	}

	nested := NewObject().Set("list", []any{NewObject().Set("k", "v")})
	clone := nested.Clone()
	list, _ := clone.Get("list")
	list.([]any)[0].(*Object).Set("k", "changed")
	original, _ := nested.Get("list")
	if value, _ := original.([]any)[0].(*Object).Get("k"); value != "v" {
		t.Fatalf("clone shares nested objects")
	}
}

func TestBuildNodesErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		opts []DecodeOption
		want error
	}{
		{
			name: "old dialect",
			raw:  `{"$schema":"http://json-schema.org/draft-07/schema#","type":"object"}`,
			want: ErrUnsupportedDialect,
		},
		{
			name: "external reference",
			raw:  `{"type":"object","properties":{"a":{"$ref":"other.json#/x"}}}`,
			want: ErrUnsupportedReference,
		},
		{
			name: "nested definition reference",
			raw:  `{"type":"object","properties":{"a":{"$ref":"#/$defs/A/properties/b"}}}`,
			want: ErrUnsupportedReference,
		},
		{
			name: "nested array",
			raw:  `{"type":"object","properties":{"a":{"type":"array","items":{"type":"array"}}}}`,
			want: ErrUnsupportedSchema,
		},
		{
			name: "type union",
			raw:  `{"type":"object","properties":{"a":{"type":["string","integer"]}}}`,
			want: ErrUnsupportedSchema,
		},
		{
			name: "boolean schema",
			raw:  `{"type":"object","properties":{"a":true}}`,
			want: ErrUnsupportedSchema,
		},
		{
			name: "root reference",
			raw:  `{"$ref":"#/$defs/A","$defs":{"A":{"type":"string"}}}`,
			want: ErrUnsupportedSchema,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			_, err = BuildNodes(doc, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBuildNodesRejectsDanglingReference(t *testing.T) {
	doc, err := Decode([]byte(`{"type":"object","properties":{"a":{"$ref":"#/$defs/Missing"}}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	_, err = BuildNodes(doc)
	issues, ok := uischema.AsIssues(err)
	if !ok {
		t.Fatalf("expected validation issues, got %v", err)
	}
	if diff := cmp.Diff([]string{uischema.CodeDanglingReference}, issues.Codes()); diff != "" {
		t.Fatalf("codes (-want +got):\n%s", diff)
	}
}

func TestRequiredDialect(t *testing.T) {
	doc, err := Decode([]byte("type: object\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := BuildNodes(doc); err != nil {
		t.Fatalf("expected optional dialect, got %v", err)
	}
	if _, err := BuildNodes(doc, WithRequiredDialect()); err == nil {
		t.Fatalf("expected missing $schema to fail")
	}
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{"", "[1,2]", "just a string"} {
		if _, err := Decode([]byte(raw)); err == nil {
			t.Fatalf("expected %q to fail", raw)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`{"$schema":"https://json-schema.org/draft/2020-12/schema"}`, true},
		{"type: object\nproperties: {}\n", true},
		{`{"openapi":"3.0.3","components":{}}`, false},
		{`{"name":"not a schema"}`, false},
	}
	for _, tt := range tests {
		if got := Detect([]byte(tt.raw)); got != tt.want {
			t.Fatalf("detect %q: expected %v, got %v", tt.raw, tt.want, got)
		}
	}
}
