package loader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"

	pkgjsonschema "github.com/goliatone/go-schemamodel/pkg/jsonschema"
)

const sample = `{"type":"object","properties":{"name":{"type":"string"}}}`

func TestLoaderSources(t *testing.T) {
	ctx := context.Background()

	tmp := t.TempDir()
	filePath := filepath.Join(tmp, "model.json")
	if err := os.WriteFile(filePath, []byte(sample), 0o644); err != nil {
		t.Fatalf("write temp fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sample))
	}))
	defer server.Close()

	loader := New(pkgjsonschema.NewLoaderOptions(
		pkgjsonschema.WithFileSystem(fstest.MapFS{"schemas/model.yaml": {Data: []byte("type: object\n")}}),
		pkgjsonschema.WithHTTPFallback(0),
		pkgjsonschema.WithInlineReader(func() ([]byte, error) { return []byte(sample), nil }),
	))

	tests := []struct {
		name   string
		src    pkgjsonschema.Source
		format pkgjsonschema.Format
	}{
		{"file", pkgjsonschema.SourceFromFile(filePath), pkgjsonschema.FormatJSON},
		{"fs", pkgjsonschema.SourceFromFS("schemas/model.yaml"), pkgjsonschema.FormatYAML},
		{"http", pkgjsonschema.SourceFromURL(server.URL), pkgjsonschema.FormatJSON},
		{"inline", pkgjsonschema.SourceFromBytes("stdin"), pkgjsonschema.FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := loader.Load(ctx, tt.src)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if doc.Format() != tt.format {
				t.Fatalf("expected %s, got %s", tt.format, doc.Format())
			}
			if _, err := pkgjsonschema.ParseDocument(doc); err != nil {
				t.Fatalf("parse: %v", err)
			}
		})
	}
}

func TestLoaderIsOfflineByDefault(t *testing.T) {
	loader := New(pkgjsonschema.NewLoaderOptions())
	if _, err := loader.Load(context.Background(), pkgjsonschema.SourceFromURL("https://example.com/model.json")); err == nil {
		t.Fatalf("expected http sources to be disabled")
	}
	if _, err := loader.Load(context.Background(), pkgjsonschema.SourceFromBytes("stdin")); err == nil {
		t.Fatalf("expected inline sources to need a reader")
	}
}

func TestLoaderRejectsOversizedDocuments(t *testing.T) {
	big := `{"type":"object","description":"` + strings.Repeat("x", 256) + `"}`

	tmp := t.TempDir()
	filePath := filepath.Join(tmp, "big.json")
	if err := os.WriteFile(filePath, []byte(big), 0o644); err != nil {
		t.Fatalf("write temp fixture: %v", err)
	}

	declared := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(big)))
		_, _ = w.Write([]byte(big))
	}))
	defer declared.Close()

	streamed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 8; i++ {
			_, _ = w.Write([]byte(big))
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}))
	defer streamed.Close()

	loader := New(pkgjsonschema.NewLoaderOptions(
		pkgjsonschema.WithMaxDocumentBytes(64),
		pkgjsonschema.WithHTTPFallback(0),
		pkgjsonschema.WithFileSystem(fstest.MapFS{"big.json": {Data: []byte(big)}}),
		pkgjsonschema.WithInlineReader(func() ([]byte, error) { return []byte(big), nil }),
	))

	sources := map[string]pkgjsonschema.Source{
		"file":          pkgjsonschema.SourceFromFile(filePath),
		"fs":            pkgjsonschema.SourceFromFS("big.json"),
		"http declared": pkgjsonschema.SourceFromURL(declared.URL),
		"http streamed": pkgjsonschema.SourceFromURL(streamed.URL),
		"inline":        pkgjsonschema.SourceFromBytes("stdin"),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			_, err := loader.Load(context.Background(), src)
			if !errors.Is(err, pkgjsonschema.ErrDocumentTooLarge) {
				t.Fatalf("expected size limit error, got %v", err)
			}
		})
	}
}

func TestReadLimitedStopsPastTheLimit(t *testing.T) {
	l := &Loader{maxBytes: 4}
	reader := &countingReader{r: strings.NewReader(strings.Repeat("y", 1<<16))}
	if _, err := l.readLimited(reader, "stream"); !errors.Is(err, pkgjsonschema.ErrDocumentTooLarge) {
		t.Fatalf("expected size limit error, got %v", err)
	}
	if reader.n > 5 {
		t.Fatalf("expected at most 5 bytes to be read, read %d", reader.n)
	}

	l.maxBytes = 0
	data, err := l.readLimited(strings.NewReader("unbounded"), "stream")
	if err != nil || string(data) != "unbounded" {
		t.Fatalf("expected unbounded read, got %q (err %v)", data, err)
	}
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestLoaderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loader := New(pkgjsonschema.NewLoaderOptions())
	if _, err := loader.Load(ctx, pkgjsonschema.SourceFromFile("missing.json")); err == nil {
		t.Fatalf("expected cancelled context to fail")
	}
}
