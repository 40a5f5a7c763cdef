package editor

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-schemamodel/pkg/jsonschema"
	"github.com/goliatone/go-schemamodel/pkg/schema"
	"github.com/goliatone/go-schemamodel/pkg/schemamodel"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

// FileSaver persists a model to disk after every successful edit. Its Save
// method has the schemamodel.SaveFunc shape. Save has no error return, so
// failures are logged and kept for Err.
type FileSaver struct {
	path   string
	format jsonschema.Format
	perm   os.FileMode
	logger logrus.FieldLogger

	mu      sync.Mutex
	lastErr error
	saves   int
}

// SaverOption configures a FileSaver.
type SaverOption func(*FileSaver)

// WithSaverLogger routes save logs to logger.
func WithSaverLogger(logger logrus.FieldLogger) SaverOption {
	return func(f *FileSaver) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithFileMode sets the permissions of newly written files.
func WithFileMode(perm os.FileMode) SaverOption {
	return func(f *FileSaver) {
		f.perm = perm
	}
}

// NewFileSaver writes to path in format. An empty format is derived from the
// path extension and falls back to JSON.
func NewFileSaver(path string, format jsonschema.Format, options ...SaverOption) *FileSaver {
	if format == "" {
		if detected, ok := schema.FormatFromPath(path); ok {
			format = detected
		} else {
			format = jsonschema.FormatJSON
		}
	}
	f := &FileSaver{
		path:   path,
		format: format,
		perm:   0o644,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

func (f *FileSaver) Path() string { return f.path }

func (f *FileSaver) Format() jsonschema.Format { return f.format }

// Save rebuilds the document from model and writes it.
func (f *FileSaver) Save(model *schemamodel.SavableSchemaModel) {
	if model == nil {
		f.record(errors.New("editor: nothing to save"))
		return
	}
	f.record(f.Write(model.Nodes()))
}

// Write renders nodes and replaces the target file atomically.
func (f *FileSaver) Write(nodes []uischema.Node) error {
	doc, err := jsonschema.BuildSchema(nodes)
	if err != nil {
		return fmt.Errorf("editor: build document: %w", err)
	}
	data, err := jsonschema.Encode(doc, f.format)
	if err != nil {
		return err
	}
	return writeAtomic(f.path, data, f.perm)
}

// Err returns the error of the most recent save, or nil.
func (f *FileSaver) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Saves counts completed save attempts.
func (f *FileSaver) Saves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func (f *FileSaver) record(err error) {
	f.mu.Lock()
	f.lastErr = err
	f.saves++
	f.mu.Unlock()

	entry := f.logger.WithFields(logrus.Fields{"path": f.path, "format": f.format})
	if err != nil {
		entry.WithError(err).Error("save failed")
		return
	}
	entry.Debug("saved schema")
}

// writeAtomic replaces path through a synced temporary file in the same
// directory, so readers see either the old or the new document.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return errors.New("editor: output path is required")
	}
	if err := renameio.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("editor: write %s: %w", path, err)
	}
	return nil
}
