// Package loader fetches contract documents from a file, an fs.FS or an
// HTTP(S) URL.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"
)

// Kind identifies where a document lives.
type Kind int

// Source kinds.
const (
	KindFile Kind = iota
	KindFS
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindFS:
		return "fs"
	case KindURL:
		return "url"
	default:
		return "file"
	}
}

// KindOf classifies a location: http and https URLs are fetched, anything
// else is a file path.
func KindOf(location string) Kind {
	lower := strings.ToLower(strings.TrimSpace(location))
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return KindURL
	}
	return KindFile
}

// Option configures a Loader.
type Option func(*Loader)

// WithFS sets the filesystem read by LoadFS.
func WithFS(fsys fs.FS) Option {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithHTTPClient sets the client used for URL locations. The client is
// copied.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client == nil {
			return
		}
		clone := *client
		l.http = &clone
	}
}

// WithTimeout bounds URL fetches. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d >= 0 {
			l.timeout = d
		}
	}
}

// Loader reads raw documents.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// New builds a Loader. Without WithHTTPClient a default client is used.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.http == nil {
		l.http = &http.Client{}
	}
	return l
}

// Load reads location, picking the strategy with KindOf.
func (l *Loader) Load(ctx context.Context, location string) ([]byte, Kind, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, KindFile, errors.New("loader: location is empty")
	}

	kind := KindOf(location)
	var (
		data []byte
		err  error
	)
	switch kind {
	case KindURL:
		data, err = loadHTTP(ctx, l.http, location, l.timeout)
	default:
		data, err = loadFile(ctx, location)
	}
	if err != nil {
		return nil, kind, fmt.Errorf("loader: %s %s: %w", kind, location, err)
	}
	return data, kind, nil
}

// LoadFS reads name from the configured filesystem.
func (l *Loader) LoadFS(ctx context.Context, name string) ([]byte, error) {
	data, err := loadFromFS(ctx, l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("loader: fs %s: %w", name, err)
	}
	return data, nil
}
