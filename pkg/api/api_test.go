package api_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stage3dec/stage3dec/pkg/api"
)

// resultSummary isolates the two fields worth diffing structurally: Code
// is checked separately with strings.Contains since its exact formatting
// isn't part of the contract, but Errors/RewrittenClasses are meant to be
// exact, ordered lists a caller can rely on.
type resultSummary struct {
	Errors           []string
	RewrittenClasses []string
}

func summarize(r api.Result) resultSummary {
	return resultSummary{Errors: r.Errors, RewrittenClasses: r.RewrittenClasses}
}

func TestTransformPlainClassIsUntouched(t *testing.T) {
	result := api.Transform("c.ts", `class C { m() {} }`, `{"source_maps":false}`)

	want := resultSummary{Errors: []string{}, RewrittenClasses: nil}
	if diff := cmp.Diff(want, summarize(result)); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
	if result.Map != "" {
		t.Fatalf("expected no source map, got %q", result.Map)
	}
	if strings.Contains(result.Code, "_applyDecs") {
		t.Fatalf("expected no runtime injection for an undecorated class, got:\n%s", result.Code)
	}
}

func TestTransformDecoratedClassReportsRewrite(t *testing.T) {
	result := api.Transform("c.ts", `class C { @d m(){} }`, `{"source_maps":false}`)

	want := resultSummary{Errors: []string{}, RewrittenClasses: []string{"C"}}
	if diff := cmp.Diff(want, summarize(result)); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
	if !result.InjectedRuntime {
		t.Fatalf("expected InjectedRuntime to be true for a decorated class")
	}
	if !strings.Contains(result.Code, "function _applyDecs") {
		t.Fatalf("expected the runtime helper to be injected, got:\n%s", result.Code)
	}
}

func TestTransformPlainClassDoesNotReportInjectedRuntime(t *testing.T) {
	result := api.Transform("c.ts", `class C { m() {} }`, "")
	if result.InjectedRuntime {
		t.Fatalf("expected InjectedRuntime to be false for an undecorated class")
	}
}

func TestTransformParseFailureReturnsSourceUnchanged(t *testing.T) {
	source := `class C {`
	result := api.Transform("c.ts", source, "")

	if len(result.Errors) == 0 {
		t.Fatalf("expected at least one parse error")
	}
	if diff := cmp.Diff(source, result.Code); diff != "" {
		t.Fatalf("expected the original source back unchanged (-want +got):\n%s", diff)
	}
}

func TestTransformInvalidOptionsJSON(t *testing.T) {
	result := api.Transform("c.ts", `class C {}`, `{not json`)
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error for malformed options, got %v", result.Errors)
	}
	if result.Code != "" {
		t.Fatalf("expected no code on an options-decoding failure, got %q", result.Code)
	}
}
