package loader

import (
	"context"
	"errors"
)

// loadFromFS reads name from the configured fs.FS.
func (l *Loader) loadFromFS(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("jsonschema loader: fs path is required")
	}
	if l.fs == nil {
		return nil, errors.New("jsonschema loader: fs is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := l.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	if info, err := file.Stat(); err == nil {
		if err := l.checkSize(info.Size(), name); err != nil {
			return nil, err
		}
	}
	return l.readLimited(file, name)
}
