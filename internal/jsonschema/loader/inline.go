package loader

import (
	"context"
	"errors"
)

// loadInline hands back the bytes of the configured reader. The reader owns
// buffering, so the limit is checked on the returned payload.
func (l *Loader) loadInline(ctx context.Context, name string) ([]byte, error) {
	if l.stdin == nil {
		return nil, errors.New("jsonschema loader: inline reader is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := l.stdin()
	if err != nil {
		return nil, err
	}
	if err := l.checkSize(int64(len(data)), name); err != nil {
		return nil, err
	}
	return data, nil
}
