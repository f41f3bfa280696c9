package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("unknown state").Build(), expected: 2},
		{name: "config error", err: ConfigError("bad config").Build(), expected: 7},
		{name: "filesystem error", err: FileSystemError("write failed").Build(), expected: 11},
		{name: "state error", err: StateError("ledger closed").Build(), expected: 12},
		{name: "wrapped state error", err: fmt.Errorf("promote: %w", StateError("ledger closed").Build()), expected: 12},
		{name: "parse error falls back", err: ParseError("style block").Build(), expected: 1},
		{name: "unclassified error", err: stderrors.New("boom"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := WrapError(cause, CategoryFileSystem, "write module").Build()

	quiet := NewCLIErrorAdapter(false, slog.Default())
	if got := quiet.FormatError(err); got != "Error: write module (use -v for details)" {
		t.Errorf("unexpected quiet format: %q", got)
	}

	verbose := NewCLIErrorAdapter(true, slog.Default())
	if got := verbose.FormatError(err); got != "Error: [filesystem:error] write module: permission denied" {
		t.Errorf("unexpected verbose format: %q", got)
	}

	withID := WrapError(cause, CategoryTransform, "needs manual transform").ForExample("webgl_a").Build()
	if got := quiet.FormatError(withID); got != "Error: needs manual transform (webgl_a) (use -v for details)" {
		t.Errorf("unexpected quiet format with id: %q", got)
	}

	if got := quiet.FormatError(stderrors.New("plain")); got != "Error: plain" {
		t.Errorf("unexpected unclassified format: %q", got)
	}
}
