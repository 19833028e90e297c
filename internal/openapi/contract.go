// Package openapi resolves the REST routes the console talks to from an
// OpenAPI document. The MiComedor contract is embedded; deployments can point
// to a different file or URL when the backend mounts routes elsewhere.
package openapi

import (
	"context"
	_ "embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/goliatone/go-micomedor/internal/openapi/loader"
)

//go:embed micomedor.yaml
var contract []byte

// Contract returns a copy of the embedded contract.
func Contract() []byte {
	out := make([]byte, len(contract))
	copy(out, contract)
	return out
}

var defaultRoutes = sync.OnceValues(func() (Routes, error) {
	return Parse(context.Background(), contract)
})

// Default returns the routes of the embedded contract.
func Default() (Routes, error) {
	return defaultRoutes()
}

// Load parses the contract at location, a file path or an http(s) URL.
func Load(ctx context.Context, location string, opts ...loader.Option) (Routes, error) {
	data, _, err := loader.New(opts...).Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}
	return Parse(ctx, data)
}

// LoadFS parses the contract stored at name inside fsys.
func LoadFS(ctx context.Context, fsys fs.FS, name string) (Routes, error) {
	data, err := loader.New(loader.WithFS(fsys)).LoadFS(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}
	return Parse(ctx, data)
}
