package domain

import "time"

// Suggestion is the advisory next-action pair derived from funnel state.
// An empty Action means no action is suggested.
type Suggestion struct {
	Action NextAction
	DueAt  *time.Time
}

// SuggestionContext is the slice of lead state the suggestion rules read.
type SuggestionContext struct {
	Status          Status
	MeetingAt       *time.Time
	NextAction      *NextAction
	NextActionDueAt *time.Time
}

// SuggestNextAction maps funnel state to a suggested next action and due
// time. Rules are evaluated in order, first match wins. The result is
// advisory: macro transitions consult it as a default, but macro-specific
// offsets take precedence.
func SuggestNextAction(ctx SuggestionContext, now time.Time) Suggestion {
	today := StartOfDay(now)

	if ctx.Status == StatusMessage1Sent {
		// Follow-up 1 exactly 24h after the opening message.
		return Suggestion{Action: ActionFollowUp1, DueAt: timePtr(now.Add(24 * time.Hour))}
	}

	if (ctx.NextAction != nil && *ctx.NextAction == ActionFollowUp1) || ctx.Status == StatusResponded {
		return Suggestion{Action: ActionFollowUp2, DueAt: timePtr(today.AddDate(0, 0, 3))}
	}

	if ctx.Status == StatusInConversation {
		// Keep the current action when one exists, otherwise nudge with a
		// short follow-up.
		if ctx.NextAction != nil {
			due := ctx.NextActionDueAt
			if due == nil {
				due = timePtr(today.AddDate(0, 0, 2))
			}
			return Suggestion{Action: *ctx.NextAction, DueAt: due}
		}
		return Suggestion{Action: ActionFollowUp1, DueAt: timePtr(today.AddDate(0, 0, 2))}
	}

	if ctx.Status == StatusMeetingScheduled {
		due := ctx.MeetingAt
		if due == nil {
			due = timePtr(today)
		}
		return Suggestion{Action: ActionHoldMeeting, DueAt: due}
	}

	if ctx.Status == StatusMeetingHeld {
		return Suggestion{Action: ActionSendProposal, DueAt: timePtr(today.AddDate(0, 0, 1))}
	}

	if ctx.Status == StatusProposalSent {
		return Suggestion{Action: ActionFollowUp1, DueAt: timePtr(today.AddDate(0, 0, 2))}
	}

	switch ctx.Status {
	case StatusClosed, StatusLost, StatusLongFollowup, StatusSuspendedNoResponse,
		StatusNurture, StatusObjectionTrust, StatusGatekeeper, StatusPreviewSent:
		return Suggestion{}
	}

	return Suggestion{Action: derefAction(ctx.NextAction), DueAt: ctx.NextActionDueAt}
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func timePtr(t time.Time) *time.Time { return &t }

func derefAction(a *NextAction) NextAction {
	if a == nil {
		return ""
	}
	return *a
}
