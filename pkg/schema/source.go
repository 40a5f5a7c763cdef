package schema

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where a schema document originated so loaders can operate
// on files, fs.FS entries, URLs or in-memory payloads without leaking
// implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindFS     SourceKind = "fs"
	SourceKindURL    SourceKind = "url"
	SourceKindInline SourceKind = "inline"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }

func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }

func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }

func (s urlSource) Kind() SourceKind { return SourceKindURL }

// SourceFromURL parses the supplied URL string and returns a Source. It panics
// if the URL is invalid to surface configuration mistakes early.
func SourceFromURL(raw string) Source {
	src, err := urlSourceFrom(raw)
	if err != nil {
		panic(err.Error())
	}
	return src
}

func urlSourceFrom(raw string) (Source, error) {
	if raw == "" {
		return nil, errors.New("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("schema: invalid URL %q: %v", raw, err)
	}
	return urlSource{raw: raw}, nil
}

type inlineSource struct {
	name string
}

func (s inlineSource) Location() string { return s.name }

func (s inlineSource) Kind() SourceKind { return SourceKindInline }

// SourceFromBytes labels a payload that is already in memory, such as stdin.
func SourceFromBytes(name string) Source {
	if name == "" {
		name = "inline"
	}
	return inlineSource{name: name}
}

// ParseSource maps a command line location onto a Source: http and https URLs
// become URL sources, "-" is stdin, anything else is a file path.
func ParseSource(location string) (Source, error) {
	trimmed := strings.TrimSpace(location)
	switch {
	case trimmed == "":
		return nil, errors.New("schema: location is required")
	case trimmed == "-":
		return SourceFromBytes("stdin"), nil
	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		return urlSourceFrom(trimmed)
	default:
		return SourceFromFile(trimmed), nil
	}
}
