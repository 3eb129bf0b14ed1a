package domain

import (
	"time"

	"github.com/ivanjorgee/maxconnect/platform/apperr"
)

// Macro is a named operator action that drives a funnel transition.
type Macro string

const (
	MacroSendMessage1        Macro = "SEND_MESSAGE_1"
	MacroSendFollowup1       Macro = "SEND_FOLLOWUP_1"
	MacroSendFollowup2       Macro = "SEND_FOLLOWUP_2"
	MacroSendBreakup         Macro = "SEND_BREAKUP"
	MacroScheduleMeeting     Macro = "SCHEDULE_MEETING"
	MacroHoldMeeting         Macro = "HOLD_MEETING"
	MacroSendProposal        Macro = "SEND_PROPOSAL"
	MacroConversationStarted Macro = "CONVERSATION_STARTED"
	MacroMarkReplied         Macro = "MARK_REPLIED"
	MacroMarkLost            Macro = "MARK_LOST"
)

// CadencePolicy carries the tunable cadence parameters the transitions need.
type CadencePolicy struct {
	MaxAttempts    int
	NoResponseDays int
}

// MacroOptions are the caller-supplied inputs of a macro application.
// OccurredAt doubles as the chosen meeting date for SCHEDULE_MEETING.
type MacroOptions struct {
	Channel         *Channel
	OccurredAt      *time.Time
	OpeningTemplate *TemplateID
	Note            string
}

// macroSpec is one row of the static transition table: what to log, the new
// funnel status, and the default next action.
type macroSpec struct {
	kind        InteractionKind
	newStatus   Status
	description string

	// setAction distinguishes "clear/replace the next action" from "leave
	// the lead's current action untouched".
	setAction   bool
	nextAction  NextAction // empty with setAction=true clears the action
	offsetHours int
	offsetDays  int
}

var macroTable = map[Macro]macroSpec{
	MacroSendMessage1: {
		kind:        KindMessage1,
		newStatus:   StatusMessage1Sent,
		description: "Message 1 sent.",
		setAction:   true,
		nextAction:  ActionFollowUp1,
		offsetHours: 24,
	},
	MacroSendFollowup1: {
		kind:        KindFollowup1,
		newStatus:   StatusMessage1Sent,
		description: "Follow-up 1 sent.",
		setAction:   true,
		nextAction:  ActionFollowUp2,
		offsetDays:  3,
	},
	MacroSendFollowup2: {
		kind:        KindFollowup2,
		newStatus:   StatusMessage1Sent,
		description: "Follow-up 2 sent.",
		setAction:   true,
		nextAction:  ActionBreakup,
		offsetDays:  7,
	},
	MacroSendBreakup: {
		kind:        KindBreakup,
		newStatus:   StatusSuspendedNoResponse,
		description: "Break-up sent.",
		setAction:   true,
	},
	MacroScheduleMeeting: {
		kind:        KindMeeting,
		newStatus:   StatusMeetingScheduled,
		description: "Meeting scheduled.",
		setAction:   true,
		nextAction:  ActionHoldMeeting,
	},
	MacroHoldMeeting: {
		kind:        KindMeeting,
		newStatus:   StatusMeetingHeld,
		description: "Meeting held.",
		setAction:   true,
		nextAction:  ActionSendProposal,
		offsetDays:  1,
	},
	MacroSendProposal: {
		kind:        KindOther,
		newStatus:   StatusProposalSent,
		description: "Proposal sent.",
		setAction:   true,
		nextAction:  ActionFollowUp1,
		offsetDays:  2,
	},
	MacroConversationStarted: {
		kind:        KindFollowupConversation,
		newStatus:   StatusInConversation,
		description: "Conversation started with the lead.",
		setAction:   true,
	},
	MacroMarkReplied: {
		kind:        KindOther,
		newStatus:   StatusResponded,
		description: "Lead replied.",
		setAction:   true,
	},
	MacroMarkLost: {
		kind:        KindOther,
		newStatus:   StatusLost,
		description: "Lead marked as lost.",
		setAction:   true,
	},
}

// IsValidMacro reports whether name is a known macro.
func IsValidMacro(name Macro) bool {
	_, ok := macroTable[name]
	return ok
}

// Transition is the computed outcome of applying a macro: the interaction to
// append and the fully updated lead. Both must be persisted atomically.
type Transition struct {
	Interaction Interaction
	Updated     Lead
}

// BuildTransition computes the macro transition for a lead, without side
// effects. The returned interaction has no ID yet; the repository assigns it
// on insert.
func BuildTransition(lead Lead, macro Macro, opts MacroOptions, now time.Time, policy CadencePolicy) (Transition, error) {
	spec, ok := macroTable[macro]
	if !ok {
		return Transition{}, apperr.BadRequest("unknown macro: " + string(macro))
	}

	occurredAt := now
	if opts.OccurredAt != nil {
		occurredAt = *opts.OccurredAt
	}

	// SCHEDULE_MEETING with an explicit date picks the meeting date; every
	// other path keeps the lead's stored one.
	meetingAt := lead.MeetingAt
	if macro == MacroScheduleMeeting && opts.OccurredAt != nil {
		meetingAt = opts.OccurredAt
	}

	templateID := resolveCadenceTemplate(lead, macro, opts.OpeningTemplate)
	outboundCadence := templateID != nil && macro != MacroMarkReplied

	var direction *Direction
	var outcome *Outcome
	switch {
	case macro == MacroMarkReplied:
		direction, outcome = directionPtr(DirectionInbound), outcomePtr(OutcomeReplied)
	case outboundCadence:
		direction, outcome = directionPtr(DirectionOutbound), outcomePtr(OutcomeNeutral)
	}

	dueAt := nextActionDue(spec, occurredAt, meetingAt, lead.NextActionDueAt)

	channel := lead.PreferredChannel
	if opts.Channel != nil {
		channel = *opts.Channel
	}

	interaction := Interaction{
		LeadID:      lead.ID,
		Kind:        spec.kind,
		Channel:     channel,
		OccurredAt:  occurredAt,
		Description: buildDescription(spec.description, templateID, opts.Note),
		Direction:   direction,
		TemplateID:  templateID,
		Outcome:     outcome,
	}

	updated := lead
	updated.Status = spec.newStatus
	if spec.setAction {
		if spec.nextAction != "" {
			action := spec.nextAction
			updated.NextAction = &action
		} else {
			updated.NextAction = nil
		}
		updated.NextActionDueAt = dueAt
	}
	updated.MeetingAt = meetingAt

	switch macro {
	case MacroSendMessage1:
		updated.FirstMessageAt = &occurredAt
	case MacroSendFollowup1:
		updated.Followup1At = &occurredAt
	case MacroSendFollowup2:
		updated.Followup2At = &occurredAt
	}

	if outboundCadence {
		updated.AttemptCount++
		updated.LastOutboundAt = &occurredAt
		updated.CurrentTemplate = templateID
		step := StepForTemplate(*templateID)
		updated.CurrentCadenceStep = &step
	}

	// A reply always cancels any pending automatic follow-up and lifts the
	// cooldown.
	if macro == MacroMarkReplied {
		updated.LastInboundAt = &occurredAt
		updated.NoResponseUntil = nil
		updated.NextAction = nil
		updated.NextActionDueAt = nil
	}

	if macro == MacroSendBreakup {
		until := StartOfDay(occurredAt).AddDate(0, 0, policy.NoResponseDays)
		updated.NoResponseUntil = &until
		updated.NextAction = nil
		updated.NextActionDueAt = nil
	}

	updated.UpdatedAt = now

	return Transition{Interaction: interaction, Updated: updated}, nil
}

// BuildConversationFollowup computes the manual conversation nudge: an
// outbound touch logged outside the opening cadence, leaving the lead in
// conversation and waiting up to 48h for a reply. Not a cadence attempt.
func BuildConversationFollowup(lead Lead, now time.Time) Transition {
	interaction := Interaction{
		LeadID:      lead.ID,
		Kind:        KindFollowupConversation,
		Channel:     lead.PreferredChannel,
		OccurredAt:  now,
		Description: "Conversation follow-up sent after 24h without progress.",
		Direction:   directionPtr(DirectionOutbound),
		Outcome:     outcomePtr(OutcomeNeutral),
	}

	updated := lead
	updated.Status = StatusInConversation
	action := ActionAwaitingConversationReply
	updated.NextAction = &action
	updated.NextActionDueAt = timePtr(now.Add(48 * time.Hour))
	updated.UpdatedAt = now

	return Transition{Interaction: interaction, Updated: updated}
}

// resolveCadenceTemplate picks the template an interaction should carry.
// MARK_REPLIED reuses the lead's current template so replies are attributed
// to the variant that earned them.
func resolveCadenceTemplate(lead Lead, macro Macro, override *TemplateID) *TemplateID {
	switch macro {
	case MacroSendMessage1:
		if override != nil && (*override == TemplateM1A || *override == TemplateM1B) {
			return override
		}
		resolved := ResolveOpeningTemplate(lead.CurrentTemplate, lead.ID.String())
		return &resolved
	case MacroSendFollowup1:
		return templatePtr(TemplateFU1)
	case MacroSendFollowup2:
		return templatePtr(TemplateFU2)
	case MacroSendBreakup:
		return templatePtr(TemplateBreakup)
	case MacroMarkReplied:
		if lead.CurrentTemplate != nil && IsValidTemplateID(*lead.CurrentTemplate) {
			return lead.CurrentTemplate
		}
	}
	return nil
}

// nextActionDue computes the due date for the macro's default next action:
// hold-meeting actions use the chosen meeting date, hour offsets apply to the
// interaction instant, day offsets to its local midnight.
func nextActionDue(spec macroSpec, occurredAt time.Time, meetingAt, currentDue *time.Time) *time.Time {
	if spec.nextAction == ActionHoldMeeting {
		if meetingAt != nil {
			return meetingAt
		}
		return currentDue
	}
	if spec.offsetHours > 0 {
		due := occurredAt.Add(time.Duration(spec.offsetHours) * time.Hour)
		return &due
	}
	if spec.offsetDays > 0 {
		due := StartOfDay(occurredAt).AddDate(0, 0, spec.offsetDays)
		return &due
	}
	return nil
}

func buildDescription(base string, templateID *TemplateID, note string) string {
	description := base
	if templateID != nil {
		description += " (" + string(*templateID) + ")"
	}
	if note != "" {
		description += " " + note
	}
	return description
}

func templatePtr(id TemplateID) *TemplateID    { return &id }
func directionPtr(d Direction) *Direction      { return &d }
func outcomePtr(o Outcome) *Outcome            { return &o }
