package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/editor"
	"github.com/goliatone/go-schemamodel/pkg/jsonschema"
	"github.com/goliatone/go-schemamodel/pkg/schema"
	engine "github.com/goliatone/go-schemamodel/pkg/schemamodel"
)

const httpTimeout = 30 * time.Second

// app carries the persistent flags shared by every subcommand.
type app struct {
	logger *logrus.Logger

	file          string
	output        string
	format        string
	debug         bool
	strictDialect bool
}

// workspace is an opened document wired to a file saver.
type workspace struct {
	model *engine.SavableSchemaModel
	saver *editor.FileSaver
	doc   jsonschema.Document
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.logger.SetOutput(cmd.ErrOrStderr())
	if a.debug {
		a.logger.SetLevel(logrus.DebugLevel)
	}
	if a.format != "" {
		if _, ok := schema.ParseFormat(a.format); !ok {
			return fmt.Errorf("unsupported format %q", a.format)
		}
	}
	return nil
}

func (a *app) loader(in io.Reader) jsonschema.Loader {
	return schemamodel.NewLoader(
		jsonschema.WithHTTPFallback(httpTimeout),
		jsonschema.WithInlineReader(func() ([]byte, error) { return io.ReadAll(in) }),
	)
}

// open loads --file. Edits are saved to --output, or back to --file when it
// is a local path.
func (a *app) open(cmd *cobra.Command) (*workspace, error) {
	src, err := schema.ParseSource(a.file)
	if err != nil {
		return nil, err
	}
	var decode []jsonschema.DecodeOption
	if a.strictDialect {
		decode = append(decode, jsonschema.WithRequiredDialect())
	}

	ws := &workspace{}
	save := func(model *engine.SavableSchemaModel) {
		if ws.saver != nil {
			ws.saver.Save(model)
		}
	}
	model, doc, err := schemamodel.Open(cmd.Context(), a.loader(cmd.InOrStdin()), src, save, decode...)
	if err != nil {
		return nil, err
	}
	ws.model = model
	ws.doc = doc

	target := a.output
	if target == "" && src.Kind() == jsonschema.SourceKindFile {
		target = src.Location()
	}
	if target != "" {
		ws.saver = editor.NewFileSaver(target, a.outputFormat(doc, target), editor.WithSaverLogger(a.logger))
	}
	a.logger.WithFields(logrus.Fields{"source": doc.Location(), "nodes": model.NodeMap().Len()}).Debug("opened schema")
	return ws, nil
}

func (a *app) outputFormat(doc jsonschema.Document, target string) jsonschema.Format {
	if format, ok := schema.ParseFormat(a.format); ok {
		return format
	}
	if format, ok := schema.FormatFromPath(target); ok {
		return format
	}
	return doc.Format()
}

func (a *app) session(cmd *cobra.Command, ws *workspace) (*editor.Session, error) {
	return editor.NewSession(ws.model,
		editor.WithLogger(a.logger),
		editor.WithPromptDriver(editor.NewSurveyDriver(cmd.OutOrStdout())),
	)
}

// edit opens the document, applies fn and reports save failures.
func (a *app) edit(cmd *cobra.Command, fn func(ctx context.Context, ws *workspace) error) error {
	ws, err := a.open(cmd)
	if err != nil {
		return err
	}
	if ws.saver == nil {
		return errors.New("--output is required when --file is not a local path")
	}
	if err := fn(cmd.Context(), ws); err != nil {
		return err
	}
	return ws.saver.Err()
}
