package domain

// TemplateID identifies one cadence message template.
type TemplateID string

const (
	TemplateM1A     TemplateID = "M1A"
	TemplateM1B     TemplateID = "M1B"
	TemplateFU1     TemplateID = "FU1"
	TemplateFU2     TemplateID = "FU2"
	TemplateBreakup TemplateID = "BREAKUP"
)

// CadenceStep is the position of a template inside the outreach cadence.
type CadenceStep string

const (
	StepOpening   CadenceStep = "OPENING"
	StepFollowup1 CadenceStep = "FOLLOWUP_1"
	StepFollowup2 CadenceStep = "FOLLOWUP_2"
	StepBreakup   CadenceStep = "BREAKUP"
)

// Template is a canned cadence message with a human-readable title.
type Template struct {
	ID    TemplateID `json:"id"`
	Title string     `json:"title"`
	Body  string     `json:"body"`
}

// CadenceTemplates is the fixed catalog keyed by template id.
var CadenceTemplates = map[TemplateID]Template{
	TemplateM1A: {
		ID:    TemplateM1A,
		Title: "M1A — Quick permission ask",
		Body:  "Hi! Can I send you a quick idea to get more bookings through WhatsApp? It's really short.",
	},
	TemplateM1B: {
		ID:    TemplateM1B,
		Title: "M1B — Specific observation",
		Body:  "Hi! I noticed one simple thing on your Google/Instagram profile. Want me to explain it in one minute?",
	},
	TemplateFU1: {
		ID:    TemplateFU1,
		Title: "Follow-up 1 — Direct permission",
		Body:  "Quick follow-up: want me to send the tweak that usually lifts WhatsApp reply rates? If it's not a fit, just let me know.",
	},
	TemplateFU2: {
		ID:    TemplateFU2,
		Title: "Follow-up 2 — Last attempt",
		Body:  "Last try from my side: can I send you a two-line summary?",
	},
	TemplateBreakup: {
		ID:    TemplateBreakup,
		Title: "Break-up — Gentle close",
		Body:  "So I don't keep insisting, I'll close this thread for now. If you want to pick it up later, just reply here.",
	},
}

// IsValidTemplateID reports whether id is part of the catalog.
func IsValidTemplateID(id TemplateID) bool {
	_, ok := CadenceTemplates[id]
	return ok
}

// StepForTemplate maps a template id to its cadence step. Unknown ids are
// treated as openings.
func StepForTemplate(id TemplateID) CadenceStep {
	switch id {
	case TemplateFU1:
		return StepFollowup1
	case TemplateFU2:
		return StepFollowup2
	case TemplateBreakup:
		return StepBreakup
	default:
		return StepOpening
	}
}

// ResolveOpeningTemplate returns the opening variant for a lead. A stored
// assignment is sticky; otherwise the variant is derived deterministically
// from the lead id, so repeated resolution before persistence is stable.
func ResolveOpeningTemplate(stored *TemplateID, leadID string) TemplateID {
	if stored != nil && (*stored == TemplateM1A || *stored == TemplateM1B) {
		return *stored
	}
	return PickOpeningTemplate(leadID)
}

// PickOpeningTemplate derives the A/B opening variant from the lead id:
// sum of character codes, even picks A, odd picks B.
func PickOpeningTemplate(leadID string) TemplateID {
	seed := 0
	for _, ch := range leadID {
		seed += int(ch)
	}
	if seed%2 == 0 {
		return TemplateM1A
	}
	return TemplateM1B
}

// NextDefaultAfter alternates the opening variant suggested for the next
// newly created lead. This is a creation-time hint for balancing A/B
// exposure; it carries no stored-state guarantee and the engine never
// depends on it.
func NextDefaultAfter(lastAssigned TemplateID) TemplateID {
	if lastAssigned == TemplateM1A {
		return TemplateM1B
	}
	return TemplateM1A
}
