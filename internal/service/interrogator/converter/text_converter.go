package converter

import (
	"bytes"
	"context"
	"unicode/utf8"

	"thecrew/internal/domain/services"
)

// textConverter passes plain text, markdown and CSV through unchanged.
type textConverter struct{}

func NewTextConverter() services.ContentConverter {
	return &textConverter{}
}

// Convert strips a UTF-8 BOM and rejects binary content.
func (c *textConverter) Convert(ctx context.Context, input []byte) (string, error) {
	input = bytes.TrimPrefix(input, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(input) || bytes.IndexByte(input, 0) >= 0 {
		return "", errBinary
	}
	return string(input), nil
}

func (c *textConverter) SupportedExtensions() []string {
	return []string{".txt", ".text", ".md", ".markdown", ".csv"}
}

func (c *textConverter) Name() string {
	return "plaintext"
}
