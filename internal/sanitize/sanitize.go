// Package sanitize strips unsafe markup from free-text event fields.
//
// This is a security boundary, not a formatting nicety: upstream event
// descriptions arrive as untrusted HTML and are later rendered verbatim by
// consumers. Only a small fixed set of inline formatting tags survives.
package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer is the injected capability used by the normalizer, so the core
// stays agnostic to the policy engine behind it.
type Sanitizer interface {
	Sanitize(html string) string
}

// HTMLSanitizer implements Sanitizer on a bluemonday policy.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

var (
	defaultOnce      sync.Once
	defaultSanitizer *HTMLSanitizer
)

// Default returns the process-wide sanitizer. The policy is built once and
// reused; bluemonday policies are safe for concurrent use.
func Default() *HTMLSanitizer {
	defaultOnce.Do(func() {
		defaultSanitizer = &HTMLSanitizer{policy: buildPolicy()}
	})
	return defaultSanitizer
}

// buildPolicy allows inline formatting only: b, i, em, strong, br, and
// anchors restricted to href/target. Everything else, including any data-*
// attribute, script content, and event handlers, is removed.
func buildPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "em", "strong", "br")
	p.AllowAttrs("href", "target").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	return p
}

// Sanitize returns the input with all disallowed markup removed. Empty input
// yields the empty string.
func (s *HTMLSanitizer) Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return s.policy.Sanitize(html)
}
