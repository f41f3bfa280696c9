package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := ConfigError("invalid configuration").AtPath("corpusgen.yaml").Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if !err.IsFatal() {
			t.Error("expected config errors to be fatal")
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}
		if path, ok := err.Context().GetString(KeyPath); !ok || path != "corpusgen.yaml" {
			t.Errorf("expected context path=corpusgen.yaml, got %v", path)
		}
	})

	t.Run("Example failures are not fatal", func(t *testing.T) {
		parse := ParseError("style block is not supported").Build()
		transform := TransformError("needs manual transform").Build()

		for _, err := range []*ClassifiedError{parse, transform} {
			if err.IsFatal() {
				t.Errorf("expected %s to be non-fatal", err.Category())
			}
			if !IsExampleFailure(err) {
				t.Errorf("expected %s to be an example failure", err.Category())
			}
		}
		if IsExampleFailure(FileSystemError("disk full").Build()) {
			t.Error("filesystem errors must abort the batch")
		}
		if IsExampleFailure(errors.New("plain")) {
			t.Error("unclassified errors must abort the batch")
		}
	})

	t.Run("Example id through wrapping", func(t *testing.T) {
		inner := TransformError("needs manual transform").ForExample("webgl_a").Build()
		wrapped := fmt.Errorf("generate: %w", inner)

		if !HasCategory(wrapped, CategoryTransform) {
			t.Fatal("expected wrapped error to keep its category")
		}
		if id, ok := ExampleID(wrapped); !ok || id != "webgl_a" {
			t.Errorf("expected example id webgl_a, got %q", id)
		}
		if _, ok := ExampleID(errors.New("plain")); ok {
			t.Error("plain errors carry no example id")
		}
		if got := inner.Error(); got != "[transform:error] needs manual transform (webgl_a)" {
			t.Errorf("unexpected message %q", got)
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("original error")
	err := WrapError(originalErr, CategoryFileSystem, "read source").
		Warning().
		AtPath("src/webgl_a.vue").
		Build()

	if err.Severity() != SeverityWarning {
		t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
	}
	if !errors.Is(err, originalErr) {
		t.Error("expected error to wrap original error")
	}

	withID := err.ForExample("webgl_a")
	if _, ok := err.Context().GetString(KeyExampleID); ok {
		t.Error("ForExample must not mutate the receiver")
	}
	if id, _ := withID.Context().GetString(KeyExampleID); id != "webgl_a" {
		t.Errorf("expected example_id context, got %s", id)
	}
	if path, _ := withID.Context().GetString(KeyPath); path != "src/webgl_a.vue" {
		t.Errorf("expected path context to survive, got %s", path)
	}
}

func TestErrorContext(t *testing.T) {
	var ctx ErrorContext
	ctx = ctx.Set("a", 1)
	merged := ctx.Merge(ErrorContext{"a": 2, "b": "x"})

	if merged["a"] != 2 {
		t.Errorf("expected other to take precedence, got %v", merged["a"])
	}
	if ctx["a"] != 1 {
		t.Errorf("merge must not mutate receiver, got %v", ctx["a"])
	}
	if _, ok := merged.GetString("a"); ok {
		t.Error("GetString must reject non-string values")
	}
	if _, ok := ErrorContext(nil).GetString("a"); ok {
		t.Error("nil context has no values")
	}
}

func TestIs_MatchesCategoryAndMessage(t *testing.T) {
	a := ParseError("nested element inside link").ForExample("x").Build()
	b := ParseError("nested element inside link").Build()
	c := TransformError("nested element inside link").Build()

	if !errors.Is(a, b) {
		t.Error("expected same category and message to match")
	}
	if errors.Is(a, c) {
		t.Error("expected different categories not to match")
	}
}
