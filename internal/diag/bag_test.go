package diag

import (
	"testing"

	"cniutil/internal/source"
)

func at(line, col uint32) source.Span {
	return source.Point(source.LineCol{Line: line, Col: col})
}

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	for i := 0; i < 3; i++ {
		b.Add(Diagnostic{Severity: SevInfo, Span: at(1, uint32(i+1))})
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	if b.Add(Diagnostic{}) {
		t.Error("Add past the limit should return false")
	}
}

func TestBagHasErrors(t *testing.T) {
	b := NewBag(10)
	b.Add(Diagnostic{Severity: SevInfo, Span: at(1, 1)})
	if b.HasErrors() {
		t.Error("info-only bag should not report errors")
	}
	b.Add(Diagnostic{Severity: SevError, Span: at(2, 1)})
	if !b.HasErrors() {
		t.Error("bag with an error should report errors")
	}
}

func TestBagSort(t *testing.T) {
	b := NewBag(10)
	b.Add(Diagnostic{Severity: SevInfo, Code: LintUnnecessaryWhitespace, Span: at(3, 1)})
	b.Add(Diagnostic{Severity: SevError, Code: LintExpectedEquals, Span: at(1, 2)})
	b.Add(Diagnostic{Severity: SevError, Code: LintExpectedKey, Span: at(1, 2)})
	b.Sort()

	items := b.Items()
	if items[0].Code != LintExpectedEquals || items[1].Code != LintExpectedKey {
		t.Errorf("equal-position diagnostics should order by code: %v, %v", items[0].Code, items[1].Code)
	}
	if items[2].Code != LintUnnecessaryWhitespace {
		t.Errorf("later position should sort last, got %v", items[2].Code)
	}
}

func TestSeverityString(t *testing.T) {
	if SevInfo.String() != "info" {
		t.Errorf("SevInfo = %q", SevInfo.String())
	}
	if SevError.String() != "syntax error" {
		t.Errorf("SevError = %q", SevError.String())
	}
}
