package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	pkgjsonschema "github.com/goliatone/go-schemamodel/pkg/jsonschema"
)

// Loader implements pkgjsonschema.Loader by delegating to file, fs.FS, HTTP or
// inline strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	stdin     func() ([]byte, error)
	maxBytes  int64
}

// Ensure the implementation satisfies the public interface.
var _ pkgjsonschema.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options pkgjsonschema.LoaderOptions) pkgjsonschema.Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		stdin:     options.Stdin,
		maxBytes:  options.MaxDocumentBytes,
	}
}

// Load fetches a document from the provided source and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src pkgjsonschema.Source) (pkgjsonschema.Document, error) {
	if src == nil {
		return pkgjsonschema.Document{}, errors.New("jsonschema loader: source is nil")
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case pkgjsonschema.SourceKindFile:
		data, err = l.loadFile(ctx, src.Location())
	case pkgjsonschema.SourceKindFS:
		data, err = l.loadFromFS(ctx, src.Location())
	case pkgjsonschema.SourceKindURL:
		if !l.allowHTTP {
			return pkgjsonschema.Document{}, errors.New("jsonschema loader: http support disabled")
		}
		data, err = l.loadHTTP(ctx, src.Location())
	case pkgjsonschema.SourceKindInline:
		data, err = l.loadInline(ctx, src.Location())
	default:
		err = fmt.Errorf("jsonschema loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return pkgjsonschema.Document{}, err
	}
	return pkgjsonschema.NewDocument(src, data)
}

// readLimited reads r up to the configured limit. One byte past the limit is
// requested so oversized payloads are detected without buffering them whole.
func (l *Loader) readLimited(r io.Reader, location string) ([]byte, error) {
	if l.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if err := l.checkSize(int64(len(data)), location); err != nil {
		return nil, err
	}
	return data, nil
}

func (l *Loader) checkSize(size int64, location string) error {
	if l.maxBytes > 0 && size > l.maxBytes {
		return fmt.Errorf("%w: %s is over %d bytes", pkgjsonschema.ErrDocumentTooLarge, location, l.maxBytes)
	}
	return nil
}
