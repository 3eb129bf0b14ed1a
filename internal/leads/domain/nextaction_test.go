package domain

import (
	"testing"
	"time"
)

var suggestionNow = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

func TestSuggestNextAction_Message1SentGetsFollowup1In24h(t *testing.T) {
	got := SuggestNextAction(SuggestionContext{Status: StatusMessage1Sent}, suggestionNow)
	if got.Action != ActionFollowUp1 {
		t.Fatalf("expected FOLLOW_UP_1, got %q", got.Action)
	}
	want := suggestionNow.Add(24 * time.Hour)
	if got.DueAt == nil || !got.DueAt.Equal(want) {
		t.Fatalf("expected due %v, got %v", want, got.DueAt)
	}
}

func TestSuggestNextAction_PendingFollowup1EscalatesToFollowup2(t *testing.T) {
	action := ActionFollowUp1
	got := SuggestNextAction(SuggestionContext{Status: StatusInConversation, NextAction: &action}, suggestionNow)
	if got.Action != ActionFollowUp2 {
		t.Fatalf("expected FOLLOW_UP_2, got %q", got.Action)
	}
	want := StartOfDay(suggestionNow).AddDate(0, 0, 3)
	if got.DueAt == nil || !got.DueAt.Equal(want) {
		t.Fatalf("expected due %v, got %v", want, got.DueAt)
	}
}

func TestSuggestNextAction_RespondedEscalatesToFollowup2(t *testing.T) {
	got := SuggestNextAction(SuggestionContext{Status: StatusResponded}, suggestionNow)
	if got.Action != ActionFollowUp2 {
		t.Fatalf("expected FOLLOW_UP_2, got %q", got.Action)
	}
}

func TestSuggestNextAction_InConversationKeepsExistingAction(t *testing.T) {
	action := ActionSendProposal
	due := suggestionNow.Add(48 * time.Hour)
	got := SuggestNextAction(SuggestionContext{
		Status:          StatusInConversation,
		NextAction:      &action,
		NextActionDueAt: &due,
	}, suggestionNow)
	if got.Action != ActionSendProposal {
		t.Fatalf("expected existing action kept, got %q", got.Action)
	}
	if got.DueAt == nil || !got.DueAt.Equal(due) {
		t.Fatalf("expected existing due kept, got %v", got.DueAt)
	}
}

func TestSuggestNextAction_InConversationWithoutActionSuggestsShortFollowup(t *testing.T) {
	got := SuggestNextAction(SuggestionContext{Status: StatusInConversation}, suggestionNow)
	if got.Action != ActionFollowUp1 {
		t.Fatalf("expected FOLLOW_UP_1, got %q", got.Action)
	}
	want := StartOfDay(suggestionNow).AddDate(0, 0, 2)
	if got.DueAt == nil || !got.DueAt.Equal(want) {
		t.Fatalf("expected due %v, got %v", want, got.DueAt)
	}
}

func TestSuggestNextAction_MeetingScheduledUsesMeetingDate(t *testing.T) {
	meeting := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	got := SuggestNextAction(SuggestionContext{Status: StatusMeetingScheduled, MeetingAt: &meeting}, suggestionNow)
	if got.Action != ActionHoldMeeting {
		t.Fatalf("expected HOLD_MEETING, got %q", got.Action)
	}
	if got.DueAt == nil || !got.DueAt.Equal(meeting) {
		t.Fatalf("expected due at meeting date, got %v", got.DueAt)
	}
}

func TestSuggestNextAction_MeetingScheduledWithoutDateFallsBackToToday(t *testing.T) {
	got := SuggestNextAction(SuggestionContext{Status: StatusMeetingScheduled}, suggestionNow)
	if got.DueAt == nil || !got.DueAt.Equal(StartOfDay(suggestionNow)) {
		t.Fatalf("expected due today, got %v", got.DueAt)
	}
}

func TestSuggestNextAction_TerminalStatusesSuggestNothing(t *testing.T) {
	terminal := []Status{
		StatusClosed, StatusLost, StatusLongFollowup, StatusSuspendedNoResponse,
		StatusNurture, StatusObjectionTrust, StatusGatekeeper, StatusPreviewSent,
	}
	for _, status := range terminal {
		got := SuggestNextAction(SuggestionContext{Status: status}, suggestionNow)
		if got.Action != "" || got.DueAt != nil {
			t.Fatalf("status %s: expected no suggestion, got %q at %v", status, got.Action, got.DueAt)
		}
	}
}

func TestSuggestNextAction_UnknownStatusKeepsCurrentAction(t *testing.T) {
	action := ActionBreakup
	due := suggestionNow.Add(time.Hour)
	got := SuggestNextAction(SuggestionContext{Status: StatusNew, NextAction: &action, NextActionDueAt: &due}, suggestionNow)
	if got.Action != ActionBreakup {
		t.Fatalf("expected current action kept, got %q", got.Action)
	}
	if got.DueAt == nil || !got.DueAt.Equal(due) {
		t.Fatalf("expected current due kept, got %v", got.DueAt)
	}
}
