// Package apidoc serves the OpenAPI description of the HTTP API.
package apidoc

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sort"

	"github.com/brizzai/social-manager/internal/logger"
	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed openapi.yaml
var openAPISource []byte

// Document is the validated API description
type Document struct {
	doc  *openapi3.T
	json []byte
}

// Load parses and validates the embedded document
func Load() (*Document, error) {
	return Parse(openAPISource)
}

// Parse parses and validates an OpenAPI document
func Parse(data []byte) (*Document, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load api document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid api document: %w", err)
	}
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode api document: %w", err)
	}
	return &Document{doc: doc, json: raw}, nil
}

// Paths returns the documented paths in sorted order
func (d *Document) Paths() []string {
	paths := make([]string, 0, d.doc.Paths.Len())
	for path := range d.doc.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Operation returns the operation documented for method and path
func (d *Document) Operation(method, path string) *openapi3.Operation {
	item := d.doc.Paths.Value(path)
	if item == nil {
		return nil
	}
	return item.GetOperation(method)
}

// Version returns info.version
func (d *Document) Version() string {
	return d.doc.Info.Version
}

// ServeHTTP writes the document as JSON
func (d *Document) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(d.json); err != nil {
		logger.Error("Failed to write api document", zap.Error(err))
	}
}

// Module provides the API document
var Module = fx.Module("apidoc",
	fx.Provide(Load),
)
