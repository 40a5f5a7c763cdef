package jsonschema

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"
)

// Loader fetches schema documents from different sources (filesystem, fs.FS,
// HTTP, in-memory). Implementations live under internal/jsonschema but satisfy
// this contract.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures how a Loader resolves sources. Loading is offline
// first; HTTP must be enabled explicitly.
type LoaderOptions struct {
	// FileSystem enables loading from an abstract filesystem; SourceKindFS
	// sources fail when it is nil.
	FileSystem fs.FS

	// HTTPClient allows callers to inject custom HTTP behaviour (timeouts,
	// proxies). Nil means HTTP sources are disabled unless AllowHTTPFallback is
	// true.
	HTTPClient *http.Client

	// AllowHTTPFallback toggles the default HTTP loader when no client is
	// supplied.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration

	// Stdin feeds SourceKindInline sources. Nil disables them.
	Stdin func() ([]byte, error)

	// MaxDocumentBytes caps the size of a loaded document. Zero or less
	// disables the check.
	MaxDocumentBytes int64
}

// ErrDocumentTooLarge is returned when a source exceeds MaxDocumentBytes.
var ErrDocumentTooLarge = errors.New("jsonschema: document too large")

// DefaultMaxDocumentBytes is applied by NewLoaderOptions.
const DefaultMaxDocumentBytes = int64(5 << 20)

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS implementation for relative paths.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote schema documents.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and assigns an
// optional timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithInlineReader supplies the payload for inline sources, typically stdin.
func WithInlineReader(read func() ([]byte, error)) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.Stdin = read
	}
}

// WithMaxDocumentBytes overrides DefaultMaxDocumentBytes.
func WithMaxDocumentBytes(limit int64) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.MaxDocumentBytes = limit
	}
}

// NewLoaderOptions applies a set of LoaderOption values and returns the
// resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{MaxDocumentBytes: DefaultMaxDocumentBytes}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Construction helpers live in the top-level schemamodel package to prevent
// import cycles.
