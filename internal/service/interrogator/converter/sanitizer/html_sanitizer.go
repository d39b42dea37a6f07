package sanitizer

import (
	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer strips scripts, event handlers and javascript: URLs from
// uploaded briefing pages while keeping the formatting markdown can express.
//
// Safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer uses the UGC policy. Images are dropped to URLs only;
// data URIs would bloat the extracted text sent to the model.
func NewHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{policy: bluemonday.UGCPolicy()}
}

func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
