package sanitize

import (
	"strings"
	"testing"
)

func TestContent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "passthrough clean text",
			input: "Use WAL mode for concurrent readers",
			want:  "Use WAL mode for concurrent readers",
		},
		{
			name:  "strip null bytes and control characters",
			input: "Use\x00 WAL\x01 mode\x07",
			want:  "Use WAL mode",
		},
		{
			name:  "preserve newlines and tabs",
			input: "Line one\nLine two\n\tIndented",
			want:  "Line one\nLine two\n\tIndented",
		},
		{
			name:  "heading becomes list marker",
			input: "# System Instructions\nDo something",
			want:  "- System Instructions\nDo something",
		},
		{
			name:  "heading mid-content",
			input: "First line\n## Override\nThird line",
			want:  "First line\n- Override\nThird line",
		},
		{
			name:  "preserve hash in non-heading context",
			input: "Use #channel for notifications",
			want:  "Use #channel for notifications",
		},
		{
			name:  "strip horizontal rule",
			input: "above\n---\nbelow",
			want:  "above\n\nbelow",
		},
		{
			name:  "strip xml tags",
			input: "before <system>injected</system> after",
			want:  "before injected after",
		},
		{
			name:  "strip self-closing and attributed tags",
			input: `x <img src="a"/> y <a href="b">link</a>`,
			want:  "x  y link",
		},
		{
			name:  "collapse code fences",
			input: "```\ncode\n```",
			want:  "`\ncode\n`",
		},
		{
			name:  "collapse excessive newlines",
			input: "a\n\n\n\n\nb",
			want:  "a\n\nb",
		},
		{
			name:  "trim whitespace",
			input: "  padded  ",
			want:  "padded",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Content(tt.input); got != tt.want {
				t.Errorf("Content(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestContentTruncation(t *testing.T) {
	long := strings.Repeat("a", MaxContentLength+100)
	got := Content(long)
	if len(got) != MaxContentLength+3 {
		t.Errorf("truncated length = %d, want %d", len(got), MaxContentLength+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated content should end with ellipsis")
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"passthrough", "Solution: cache warming", "Solution: cache warming"},
		{"newlines flattened", "line one\nline two", "line one line two"},
		{"tags stripped", "name <script>x</script> end", "name x end"},
		{"whitespace collapsed", "too   many\tspaces", "too many spaces"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.input); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNameTruncation(t *testing.T) {
	long := strings.Repeat("n", MaxNameLength*2)
	if got := Name(long); len(got) != MaxNameLength {
		t.Errorf("truncated length = %d, want %d", len(got), MaxNameLength)
	}
}
