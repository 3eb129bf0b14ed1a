package domain

import "testing"

func TestResolveOpeningTemplate_StoredAssignmentIsSticky(t *testing.T) {
	stored := TemplateM1B
	got := ResolveOpeningTemplate(&stored, "00000000-0000-0000-0000-000000000000")
	if got != TemplateM1B {
		t.Fatalf("expected stored template M1B to win, got %s", got)
	}

	again := ResolveOpeningTemplate(&stored, "some-other-lead")
	if again != TemplateM1B {
		t.Fatalf("expected repeated resolution to stay M1B, got %s", again)
	}
}

func TestResolveOpeningTemplate_IgnoresNonOpeningStoredTemplate(t *testing.T) {
	stored := TemplateFU2
	got := ResolveOpeningTemplate(&stored, "abc")
	if got != TemplateM1A && got != TemplateM1B {
		t.Fatalf("expected a derived opening variant, got %s", got)
	}
	if got != PickOpeningTemplate("abc") {
		t.Fatalf("expected fallback to the derived variant")
	}
}

func TestPickOpeningTemplate_DeterministicPerLead(t *testing.T) {
	ids := []string{"a", "ab", "lead-123", "00000000-0000-0000-0000-000000000000"}
	for _, id := range ids {
		first := PickOpeningTemplate(id)
		for i := 0; i < 5; i++ {
			if got := PickOpeningTemplate(id); got != first {
				t.Fatalf("variant for %q changed between calls: %s then %s", id, first, got)
			}
		}
	}
}

func TestPickOpeningTemplate_EvenOddSplit(t *testing.T) {
	// "b" has an even character sum, "a" an odd one.
	if got := PickOpeningTemplate("b"); got != TemplateM1A {
		t.Fatalf("expected M1A for even seed, got %s", got)
	}
	if got := PickOpeningTemplate("a"); got != TemplateM1B {
		t.Fatalf("expected M1B for odd seed, got %s", got)
	}
}

func TestStepForTemplate(t *testing.T) {
	cases := map[TemplateID]CadenceStep{
		TemplateM1A:     StepOpening,
		TemplateM1B:     StepOpening,
		TemplateFU1:     StepFollowup1,
		TemplateFU2:     StepFollowup2,
		TemplateBreakup: StepBreakup,
	}
	for id, want := range cases {
		if got := StepForTemplate(id); got != want {
			t.Fatalf("step for %s: expected %s, got %s", id, want, got)
		}
	}
}

func TestNextDefaultAfter_Alternates(t *testing.T) {
	if got := NextDefaultAfter(TemplateM1A); got != TemplateM1B {
		t.Fatalf("expected M1B after M1A, got %s", got)
	}
	if got := NextDefaultAfter(TemplateM1B); got != TemplateM1A {
		t.Fatalf("expected M1A after M1B, got %s", got)
	}
}

func TestCadenceTemplates_CatalogComplete(t *testing.T) {
	for _, id := range []TemplateID{TemplateM1A, TemplateM1B, TemplateFU1, TemplateFU2, TemplateBreakup} {
		tmpl, ok := CadenceTemplates[id]
		if !ok {
			t.Fatalf("catalog missing template %s", id)
		}
		if tmpl.Title == "" || tmpl.Body == "" {
			t.Fatalf("template %s has empty title or body", id)
		}
	}
}
