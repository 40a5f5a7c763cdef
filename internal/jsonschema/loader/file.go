package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// loadFile reads a local document. Files whose size already exceeds the limit
// are refused before reading.
func (l *Loader) loadFile(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("jsonschema loader: file path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("jsonschema loader: %s is a directory", path)
	}
	if err := l.checkSize(info.Size(), path); err != nil {
		return nil, err
	}
	return l.readLimited(file, path)
}
