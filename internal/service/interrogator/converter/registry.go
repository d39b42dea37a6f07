package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"thecrew/internal/domain"
	"thecrew/internal/domain/services"
)

var errBinary = errors.New("file is not valid UTF-8 text")

// ConverterRegistry routes files to converters by extension.
//
// Thread-safe for concurrent access.
type ConverterRegistry struct {
	mu         sync.RWMutex
	converters map[string]services.ContentConverter // key: file extension (e.g., ".html")
}

// NewConverterRegistry creates a registry with the standard converters registered.
func NewConverterRegistry() *ConverterRegistry {
	registry := &ConverterRegistry{
		converters: make(map[string]services.ContentConverter),
	}

	registry.Register(NewTextConverter())
	registry.Register(NewHTMLConverter())
	registry.Register(NewXLSXConverter())

	return registry
}

// Register associates a converter with its extensions, normalized to lowercase with a leading dot.
func (r *ConverterRegistry) Register(converter services.ContentConverter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range converter.SupportedExtensions() {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.converters[ext] = converter
	}
}

// GetConverter returns nil if no converter handles the extension.
func (r *ConverterRegistry) GetConverter(fileExt string) services.ContentConverter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.converters[strings.ToLower(fileExt)]
}

// Convert picks a converter from the filename's extension.
// Unsupported types and unreadable content are validation errors.
func (r *ConverterRegistry) Convert(ctx context.Context, filename string, content []byte) (string, error) {
	ext := filepath.Ext(filename)
	converter := r.GetConverter(ext)
	if converter == nil {
		return "", &domain.ValidationError{
			Message: fmt.Sprintf("unsupported file type %q; supported: %s", ext, strings.Join(r.SupportedExtensions(), ", ")),
		}
	}

	text, err := converter.Convert(ctx, content)
	if err != nil {
		return "", &domain.ValidationError{Message: fmt.Sprintf("could not read %s: %v", filename, err)}
	}
	return text, nil
}

// SupportedExtensions returns the registered extensions, sorted.
func (r *ConverterRegistry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.converters))
	for ext := range r.converters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
