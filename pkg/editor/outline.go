package editor

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-schemamodel/pkg/pointer"
	"github.com/goliatone/go-schemamodel/pkg/schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

const outlineSource = `{% for line in lines %}{{ line.Indent }}{{ line.Marker }} {{ line.Name|safe }}` +
	`{% if line.Detail %} ({{ line.Detail|safe }}){% endif %}{% if line.Required %} *{% endif %}` + "\n" +
	`{% endfor %}`

var outlineTemplate = pongo2.Must(pongo2.FromString(outlineSource))

// Outline markers.
const (
	markerField       = "-"
	markerCombination = "+"
	markerReference   = "&"
	markerDefinition  = "#"
)

type outlineLine struct {
	Indent   string
	Marker   string
	Name     string
	Detail   string
	Required bool
}

// RenderOutline prints the model as an indented tree, one node per line.
// References are shown but not expanded. Definitions are marked with "#".
func RenderOutline(model *schemamodel.SchemaModel, out ...io.Writer) (string, error) {
	if model == nil {
		return "", fmt.Errorf("editor: model is nil")
	}
	root, err := model.RootNode()
	if err != nil {
		return "", err
	}
	var lines []outlineLine
	for _, child := range uischema.Children(root) {
		if err := collectOutline(model, child, 0, &lines); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	if err := outlineTemplate.ExecuteWriter(pongo2.Context{"lines": lines}, &buf); err != nil {
		return "", fmt.Errorf("editor: render outline: %w", err)
	}
	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func collectOutline(model *schemamodel.SchemaModel, ptr string, depth int, lines *[]outlineLine) error {
	node, err := model.Node(ptr)
	if err != nil {
		return err
	}
	base := node.Base()
	line := outlineLine{
		Indent:   strings.Repeat("  ", depth),
		Name:     pointer.ExtractName(ptr),
		Required: base.IsRequired,
	}
	switch typed := node.(type) {
	case *uischema.FieldNode:
		line.Marker = markerField
		line.Detail = string(typed.FieldType)
	case *uischema.CombinationNode:
		line.Marker = markerCombination
		line.Detail = string(typed.CombinationType)
	case *uischema.ReferenceNode:
		line.Marker = markerReference
		line.Detail = "ref " + pointer.ExtractName(typed.Reference)
	}
	if base.IsArray {
		line.Detail += "[]"
	}
	if base.IsNillable {
		line.Detail += "?"
	}
	if pointer.IsDirectDefinition(ptr) {
		line.Marker = markerDefinition
	}
	*lines = append(*lines, line)

	for _, child := range uischema.Children(node) {
		if err := collectOutline(model, child, depth+1, lines); err != nil {
			return err
		}
	}
	return nil
}
