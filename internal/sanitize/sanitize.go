// Package sanitize cleans caller-supplied text before it is stored and
// later replayed into an AI client's context. It strips control
// characters, markdown hierarchy markers, XML/HTML tags, and code-fence
// sequences so a stored memory cannot smuggle prompt structure back out,
// while preserving the semantic content.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxContentLength caps learned content and experience bodies.
const MaxContentLength = 2000

// MaxNameLength caps node names.
const MaxNameLength = 120

var (
	// reXMLTag matches XML/HTML tags, attributes and self-closing forms
	// included, plus processing instructions.
	reXMLTag = regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`)

	// reMarkdownHeading matches headings at the start of a line.
	reMarkdownHeading = regexp.MustCompile(`(?m)^#{1,6}\s+`)

	// reHorizontalRule matches ---, ***, ___ lines.
	reHorizontalRule = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)

	// reTripleBacktick matches code fences.
	reTripleBacktick = regexp.MustCompile("```+")

	// reExcessiveNewlines matches 3+ consecutive newlines.
	reExcessiveNewlines = regexp.MustCompile(`\n{3,}`)

	// reExcessiveSpaces matches runs of spaces and tabs.
	reExcessiveSpaces = regexp.MustCompile(`[ \t]{2,}`)
)

// Content sanitizes free text for storage. Headings become list
// markers, tags and fences are stripped, and the result is truncated to
// MaxContentLength.
func Content(input string) string {
	if input == "" {
		return ""
	}

	s := stripControlChars(input)
	s = reXMLTag.ReplaceAllString(s, "")
	s = reMarkdownHeading.ReplaceAllString(s, "- ")
	s = reHorizontalRule.ReplaceAllString(s, "")
	s = reTripleBacktick.ReplaceAllString(s, "`")
	s = reExcessiveNewlines.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	if len(s) > MaxContentLength {
		s = s[:MaxContentLength] + "..."
	}
	return s
}

// Name sanitizes a node name: single-line, tags stripped, whitespace
// collapsed, truncated to MaxNameLength.
func Name(input string) string {
	if input == "" {
		return ""
	}

	s := stripControlChars(input)
	s = reXMLTag.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = reExcessiveSpaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	return s
}

// stripControlChars removes ASCII control characters except newline
// and tab.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
