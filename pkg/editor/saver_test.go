package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/goliatone/go-schemamodel/pkg/jsonschema"
	"github.com/goliatone/go-schemamodel/pkg/schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/testsupport"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

func byPointer(nodes []uischema.Node) map[string]uischema.Node {
	out := make(map[string]uischema.Node, len(nodes))
	for _, node := range nodes {
		out[node.Base().Pointer] = node
	}
	return out
}

func TestFileSaverWritesAfterEdits(t *testing.T) {
	cases := []struct {
		name   string
		file   string
		format jsonschema.Format
	}{
		{name: "json", file: "schema.json", format: jsonschema.FormatJSON},
		{name: "yaml", file: "schema.yaml", format: jsonschema.FormatYAML},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			saver := NewFileSaver(path, "")
			if saver.Format() != tc.format {
				t.Fatalf("expected format %q, got %q", tc.format, saver.Format())
			}
			model := schemamodel.NewSavable(schemamodel.NewNodeMap(testsupport.MockNodes()...), saver.Save)

			if _, err := model.AddField("extra", uischema.FieldTypeBoolean, schemamodel.At(testsupport.ParentPointer, -1)); err != nil {
				t.Fatalf("add field: %v", err)
			}
			if err := saver.Err(); err != nil {
				t.Fatalf("save: %v", err)
			}
			if saver.Saves() != 1 {
				t.Fatalf("expected one save, got %d", saver.Saves())
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read saved file: %v", err)
			}
			doc, err := jsonschema.Decode(raw)
			if err != nil {
				t.Fatalf("decode saved file: %v", err)
			}
			nodes, err := jsonschema.BuildNodes(doc)
			if err != nil {
				t.Fatalf("build nodes: %v", err)
			}
			if diff := cmp.Diff(byPointer(model.Nodes()), byPointer(nodes)); diff != "" {
				t.Fatalf("saved document mismatch (-model +file):\n%s", diff)
			}
		})
	}
}

func TestFileSaverSkipsFailedEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	saver := NewFileSaver(path, jsonschema.FormatJSON)
	model := schemamodel.NewSavable(schemamodel.NewNodeMap(testsupport.MockNodes()...), saver.Save)

	if _, err := model.DeleteNode(testsupport.Def1Pointer); err == nil {
		t.Fatalf("expected referenced definition deletion to fail")
	}
	if saver.Saves() != 0 {
		t.Fatalf("expected no save, got %d", saver.Saves())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file to be written, stat err %v", err)
	}
}

func TestFileSaverRecordsErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "missing", "schema.json")
	saver := NewFileSaver(path, "", WithSaverLogger(logger))
	model := schemamodel.NewSavable(schemamodel.NewNodeMap(testsupport.MockNodes()...), saver.Save)

	if _, err := model.AddFieldType("Extra"); err != nil {
		t.Fatalf("add definition: %v", err)
	}
	if saver.Err() == nil {
		t.Fatalf("expected save error for missing directory")
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("expected an error to be logged")
	}
}

func TestFileSaverFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	saver := NewFileSaver(path, "", WithFileMode(0o600))
	if err := saver.Write(testsupport.MockNodes()); err != nil {
		t.Fatalf("write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestFileSaverReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	saver := NewFileSaver(path, "")
	for i := 0; i < 2; i++ {
		if err := saver.Write(testsupport.MockNodes()); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "schema.json" {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Fatalf("expected only schema.json, found %v", names)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, err := jsonschema.Decode(raw); err != nil {
		t.Fatalf("expected a complete document, decode failed: %v", err)
	}
}
