package editor

import (
	"io"
	"testing"

	"github.com/goliatone/go-schemamodel/pkg/schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/testsupport"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

const mockOutline = `- parent (object)
  - child (string) *
  & ref (ref Def1)
+ combination (anyOf)
  - 0 (string)
  & 1 (ref Def2)
- list (object[])
  - id (integer) *
# Def1 (object)
  - name (string)
# Def2 (string?)
# Unused (object)
`

func TestRenderOutline(t *testing.T) {
	model := schemamodel.FromNodes(testsupport.MockNodes())

	out, written := testsupport.CaptureOutput(t, func(w io.Writer) (string, error) {
		return RenderOutline(model, w)
	})
	if out != mockOutline {
		t.Fatalf("unexpected outline:\n%s", out)
	}
	if written != out {
		t.Fatalf("expected writer to receive the outline")
	}
}

func TestRenderOutlineEmptyModel(t *testing.T) {
	model := schemamodel.FromNodes([]uischema.Node{uischema.NewRoot()})

	out, err := RenderOutline(model)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty outline, got %q", out)
	}
	if _, err := RenderOutline(nil); err == nil {
		t.Fatalf("expected error for nil model")
	}
}
