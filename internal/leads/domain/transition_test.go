package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

var testPolicy = CadencePolicy{MaxAttempts: 4, NoResponseDays: 30}

func newTestLead() Lead {
	return Lead{
		ID:               uuid.MustParse("00000000-0000-0000-0000-000000000000"),
		Name:             "Padaria Central",
		Status:           StatusNew,
		PreferredChannel: ChannelWhatsApp,
	}
}

func apply(t *testing.T, lead Lead, macro Macro, opts MacroOptions, now time.Time) Transition {
	t.Helper()
	tr, err := BuildTransition(lead, macro, opts, now, testPolicy)
	if err != nil {
		t.Fatalf("BuildTransition(%s): %v", macro, err)
	}
	return tr
}

func TestBuildTransition_FullCadenceToBreakup(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	lead := newTestLead()

	// Opening message: sticky template resolved from the lead ID.
	tr := apply(t, lead, MacroSendMessage1, MacroOptions{}, now)
	lead = tr.Updated
	if lead.Status != StatusMessage1Sent {
		t.Fatalf("after M1: status %s", lead.Status)
	}
	if lead.AttemptCount != 1 {
		t.Fatalf("after M1: attemptCount %d", lead.AttemptCount)
	}
	if lead.CurrentTemplate == nil || *lead.CurrentTemplate != TemplateM1A {
		t.Fatalf("after M1: template %v", lead.CurrentTemplate)
	}
	if lead.NextAction == nil || *lead.NextAction != ActionFollowUp1 {
		t.Fatalf("after M1: nextAction %v", lead.NextAction)
	}
	wantDue := now.Add(24 * time.Hour)
	if lead.NextActionDueAt == nil || !lead.NextActionDueAt.Equal(wantDue) {
		t.Fatalf("after M1: due %v, want %v", lead.NextActionDueAt, wantDue)
	}
	if lead.FirstMessageAt == nil || !lead.FirstMessageAt.Equal(now) {
		t.Fatalf("after M1: firstMessageAt %v", lead.FirstMessageAt)
	}
	if tr.Interaction.Kind != KindMessage1 || tr.Interaction.Direction == nil || *tr.Interaction.Direction != DirectionOutbound {
		t.Fatalf("after M1: interaction %+v", tr.Interaction)
	}

	// Follow-up 1 the next day.
	now = now.Add(25 * time.Hour)
	tr = apply(t, lead, MacroSendFollowup1, MacroOptions{}, now)
	lead = tr.Updated
	if lead.Status != StatusMessage1Sent {
		t.Fatalf("after FU1: status %s", lead.Status)
	}
	if lead.AttemptCount != 2 {
		t.Fatalf("after FU1: attemptCount %d", lead.AttemptCount)
	}
	if lead.CurrentTemplate == nil || *lead.CurrentTemplate != TemplateFU1 {
		t.Fatalf("after FU1: template %v", lead.CurrentTemplate)
	}
	if lead.NextAction == nil || *lead.NextAction != ActionFollowUp2 {
		t.Fatalf("after FU1: nextAction %v", lead.NextAction)
	}
	wantDue = StartOfDay(now).AddDate(0, 0, 3)
	if lead.NextActionDueAt == nil || !lead.NextActionDueAt.Equal(wantDue) {
		t.Fatalf("after FU1: due %v, want %v", lead.NextActionDueAt, wantDue)
	}

	// Follow-up 2 three days later.
	now = StartOfDay(now).AddDate(0, 0, 3).Add(9 * time.Hour)
	tr = apply(t, lead, MacroSendFollowup2, MacroOptions{}, now)
	lead = tr.Updated
	if lead.AttemptCount != 3 {
		t.Fatalf("after FU2: attemptCount %d", lead.AttemptCount)
	}
	if lead.NextAction == nil || *lead.NextAction != ActionBreakup {
		t.Fatalf("after FU2: nextAction %v", lead.NextAction)
	}
	wantDue = StartOfDay(now).AddDate(0, 0, 7)
	if lead.NextActionDueAt == nil || !lead.NextActionDueAt.Equal(wantDue) {
		t.Fatalf("after FU2: due %v, want %v", lead.NextActionDueAt, wantDue)
	}

	// Break-up: suspend and open a 30-day cooldown from local midnight.
	now = StartOfDay(now).AddDate(0, 0, 7).Add(11 * time.Hour)
	tr = apply(t, lead, MacroSendBreakup, MacroOptions{}, now)
	lead = tr.Updated
	if lead.Status != StatusSuspendedNoResponse {
		t.Fatalf("after breakup: status %s", lead.Status)
	}
	if lead.AttemptCount != 4 {
		t.Fatalf("after breakup: attemptCount %d", lead.AttemptCount)
	}
	if lead.NextAction != nil || lead.NextActionDueAt != nil {
		t.Fatalf("after breakup: action not cleared: %v %v", lead.NextAction, lead.NextActionDueAt)
	}
	wantUntil := StartOfDay(now).AddDate(0, 0, 30)
	if lead.NoResponseUntil == nil || !lead.NoResponseUntil.Equal(wantUntil) {
		t.Fatalf("after breakup: noResponseUntil %v, want %v", lead.NoResponseUntil, wantUntil)
	}
	if !lead.UnderCooldown(now) {
		t.Fatal("lead should be under cooldown right after the break-up")
	}
	if lead.UnderCooldown(wantUntil) {
		t.Fatal("cooldown should have expired at its own boundary")
	}
}

func TestBuildTransition_OpeningTemplateOverride(t *testing.T) {
	now := time.Now()

	tr := apply(t, newTestLead(), MacroSendMessage1, MacroOptions{OpeningTemplate: templatePtr(TemplateM1B)}, now)
	if tr.Updated.CurrentTemplate == nil || *tr.Updated.CurrentTemplate != TemplateM1B {
		t.Fatalf("override ignored: %v", tr.Updated.CurrentTemplate)
	}

	// Non-opening overrides fall back to the sticky assignment.
	tr = apply(t, newTestLead(), MacroSendMessage1, MacroOptions{OpeningTemplate: templatePtr(TemplateFU2)}, now)
	if tr.Updated.CurrentTemplate == nil || *tr.Updated.CurrentTemplate != TemplateM1A {
		t.Fatalf("invalid override not rejected: %v", tr.Updated.CurrentTemplate)
	}
}

func TestBuildTransition_ReplyInterruptsCadence(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	lead := newTestLead()
	lead = apply(t, lead, MacroSendMessage1, MacroOptions{}, now).Updated
	lead = apply(t, lead, MacroSendFollowup1, MacroOptions{}, now.Add(25*time.Hour)).Updated

	replyAt := now.Add(30 * time.Hour)
	tr := apply(t, lead, MacroMarkReplied, MacroOptions{OccurredAt: &replyAt}, replyAt)
	updated := tr.Updated

	if updated.Status != StatusResponded {
		t.Fatalf("status %s", updated.Status)
	}
	if updated.AttemptCount != 2 {
		t.Fatalf("reply must not count as an attempt: %d", updated.AttemptCount)
	}
	if updated.NextAction != nil || updated.NextActionDueAt != nil {
		t.Fatalf("reply must cancel the pending follow-up: %v %v", updated.NextAction, updated.NextActionDueAt)
	}
	if updated.NoResponseUntil != nil {
		t.Fatalf("reply must lift the cooldown: %v", updated.NoResponseUntil)
	}
	if updated.LastInboundAt == nil || !updated.LastInboundAt.Equal(replyAt) {
		t.Fatalf("lastInboundAt %v", updated.LastInboundAt)
	}

	// The reply is attributed to the template that earned it.
	if tr.Interaction.TemplateID == nil || *tr.Interaction.TemplateID != TemplateFU1 {
		t.Fatalf("reply attribution %v", tr.Interaction.TemplateID)
	}
	if tr.Interaction.Direction == nil || *tr.Interaction.Direction != DirectionInbound {
		t.Fatalf("reply direction %v", tr.Interaction.Direction)
	}
	if tr.Interaction.Outcome == nil || *tr.Interaction.Outcome != OutcomeReplied {
		t.Fatalf("reply outcome %v", tr.Interaction.Outcome)
	}
}

func TestBuildTransition_MeetingFlow(t *testing.T) {
	now := time.Date(2024, 3, 6, 16, 0, 0, 0, time.UTC)
	meeting := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	lead := newTestLead()
	lead.Status = StatusInConversation

	tr := apply(t, lead, MacroScheduleMeeting, MacroOptions{OccurredAt: &meeting}, now)
	lead = tr.Updated
	if lead.Status != StatusMeetingScheduled {
		t.Fatalf("status %s", lead.Status)
	}
	if lead.MeetingAt == nil || !lead.MeetingAt.Equal(meeting) {
		t.Fatalf("meetingAt %v", lead.MeetingAt)
	}
	if lead.NextAction == nil || *lead.NextAction != ActionHoldMeeting {
		t.Fatalf("nextAction %v", lead.NextAction)
	}
	if lead.NextActionDueAt == nil || !lead.NextActionDueAt.Equal(meeting) {
		t.Fatalf("hold-meeting due must be the meeting date, got %v", lead.NextActionDueAt)
	}
	if lead.AttemptCount != 0 {
		t.Fatalf("scheduling a meeting is not a cadence attempt: %d", lead.AttemptCount)
	}

	now = meeting.Add(time.Hour)
	lead = apply(t, lead, MacroHoldMeeting, MacroOptions{}, now).Updated
	if lead.Status != StatusMeetingHeld {
		t.Fatalf("status %s", lead.Status)
	}
	if lead.NextAction == nil || *lead.NextAction != ActionSendProposal {
		t.Fatalf("nextAction %v", lead.NextAction)
	}
	want := StartOfDay(now).AddDate(0, 0, 1)
	if lead.NextActionDueAt == nil || !lead.NextActionDueAt.Equal(want) {
		t.Fatalf("proposal due %v, want %v", lead.NextActionDueAt, want)
	}

	lead = apply(t, lead, MacroSendProposal, MacroOptions{}, now).Updated
	if lead.Status != StatusProposalSent {
		t.Fatalf("status %s", lead.Status)
	}
	if lead.NextAction == nil || *lead.NextAction != ActionFollowUp1 {
		t.Fatalf("nextAction %v", lead.NextAction)
	}
}

func TestBuildTransition_ConversationStartedClearsAction(t *testing.T) {
	lead := newTestLead()
	lead.Status = StatusMessage1Sent
	action := ActionFollowUp1
	due := time.Now()
	lead.NextAction = &action
	lead.NextActionDueAt = &due

	tr := apply(t, lead, MacroConversationStarted, MacroOptions{}, time.Now())
	if tr.Updated.Status != StatusInConversation {
		t.Fatalf("status %s", tr.Updated.Status)
	}
	if tr.Updated.NextAction != nil || tr.Updated.NextActionDueAt != nil {
		t.Fatalf("action not cleared: %v %v", tr.Updated.NextAction, tr.Updated.NextActionDueAt)
	}
	if tr.Interaction.Kind != KindFollowupConversation {
		t.Fatalf("kind %s", tr.Interaction.Kind)
	}
}

func TestBuildTransition_ChannelAndNote(t *testing.T) {
	now := time.Now()
	lead := newTestLead()
	channel := ChannelInstagramDM

	tr := apply(t, lead, MacroSendMessage1, MacroOptions{Channel: &channel, Note: "asked for the owner"}, now)
	if tr.Interaction.Channel != ChannelInstagramDM {
		t.Fatalf("channel %s", tr.Interaction.Channel)
	}
	if !strings.Contains(tr.Interaction.Description, "(M1A)") {
		t.Fatalf("description missing template tag: %q", tr.Interaction.Description)
	}
	if !strings.Contains(tr.Interaction.Description, "asked for the owner") {
		t.Fatalf("description missing note: %q", tr.Interaction.Description)
	}

	// Without an explicit channel the lead's preferred one is used.
	tr = apply(t, lead, MacroSendMessage1, MacroOptions{}, now)
	if tr.Interaction.Channel != ChannelWhatsApp {
		t.Fatalf("default channel %s", tr.Interaction.Channel)
	}
}

func TestBuildTransition_MarkLost(t *testing.T) {
	tr := apply(t, newTestLead(), MacroMarkLost, MacroOptions{}, time.Now())
	if tr.Updated.Status != StatusLost {
		t.Fatalf("status %s", tr.Updated.Status)
	}
	if tr.Updated.NextAction != nil {
		t.Fatalf("action not cleared: %v", tr.Updated.NextAction)
	}
}

func TestBuildTransition_UnknownMacro(t *testing.T) {
	_, err := BuildTransition(newTestLead(), Macro("EXPLODE"), MacroOptions{}, time.Now(), testPolicy)
	if err == nil {
		t.Fatal("expected an error for an unknown macro")
	}
}
