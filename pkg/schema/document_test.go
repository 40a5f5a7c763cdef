package schema

import "testing"

func TestNewDocumentFormat(t *testing.T) {
	tests := []struct {
		src  Source
		raw  string
		want Format
	}{
		{SourceFromFile("model.schema.json"), "type: object", FormatJSON},
		{SourceFromFile("model.yml"), `{"type":"object"}`, FormatYAML},
		{SourceFromBytes("stdin"), `  {"type":"object"}`, FormatJSON},
		{SourceFromBytes("stdin"), "type: object\n", FormatYAML},
	}
	for _, tt := range tests {
		doc, err := NewDocument(tt.src, []byte(tt.raw))
		if err != nil {
			t.Fatalf("new document: %v", err)
		}
		if doc.Format() != tt.want {
			t.Fatalf("%s: expected %s, got %s", tt.src.Location(), tt.want, doc.Format())
		}
	}
}

func TestNewDocumentRejectsEmptyInput(t *testing.T) {
	if _, err := NewDocument(nil, []byte("{}")); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := NewDocument(SourceFromBytes(""), []byte("  \n")); err == nil {
		t.Fatalf("expected error for blank payload")
	}
}

func TestDocumentRawIsCopied(t *testing.T) {
	raw := []byte(`{"type":"object"}`)
	doc := MustNewDocument(SourceFromFile("a.json"), raw)
	raw[0] = 'x'
	if doc.Raw()[0] != '{' {
		t.Fatalf("expected document to keep its own copy")
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in   string
		kind SourceKind
	}{
		{"schemas/model.json", SourceKindFile},
		{"https://example.com/model.json", SourceKindURL},
		{"-", SourceKindInline},
	}
	for _, tt := range tests {
		src, err := ParseSource(tt.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.in, err)
		}
		if src.Kind() != tt.kind {
			t.Fatalf("parse %q: expected %s, got %s", tt.in, tt.kind, src.Kind())
		}
	}
	if _, err := ParseSource(" "); err == nil {
		t.Fatalf("expected error for empty location")
	}
}
