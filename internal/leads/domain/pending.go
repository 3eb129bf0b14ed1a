package domain

import "time"

// FollowupWindow is how long a lead may sit untouched before it counts as
// overdue for a follow-up.
const FollowupWindow = 24 * time.Hour

// Followup1Pending reports whether the lead is overdue for follow-up 1: it
// sits in MESSAGE_1_SENT, its most recent interaction is the opening message,
// that message is at least 24h old (boundary inclusive), and no next action
// is scheduled. Any newer interaction of any kind, or a scheduled action,
// clears the flag so prompts never overlap.
func Followup1Pending(lead Lead, latest *Interaction, now time.Time) bool {
	if lead.Status != StatusMessage1Sent || lead.NextAction != nil {
		return false
	}
	if latest == nil || latest.Kind != KindMessage1 {
		return false
	}
	return !latest.OccurredAt.After(now.Add(-FollowupWindow))
}

// EligibleForNoResponseStop reports whether the nightly stop sweep should
// suspend the lead: the attempt budget is exhausted, nothing inbound was
// ever recorded, and the lead is not already closed, lost or suspended.
// A freshly suspended lead fails the check, so re-running the sweep
// changes nothing.
func EligibleForNoResponseStop(lead Lead, policy CadencePolicy) bool {
	if lead.AttemptCount < policy.MaxAttempts || lead.LastInboundAt != nil {
		return false
	}
	switch lead.Status {
	case StatusClosed, StatusLost, StatusSuspendedNoResponse:
		return false
	}
	return true
}

// ConversationPending reports whether a lead in conversation has stalled:
// no meeting booked, no next action scheduled, and its most recent
// interaction of any kind is at least 24h old (boundary inclusive).
func ConversationPending(lead Lead, latest *Interaction, now time.Time) bool {
	if lead.Status != StatusInConversation || lead.NextAction != nil || lead.MeetingAt != nil {
		return false
	}
	if latest == nil {
		return false
	}
	return !latest.OccurredAt.After(now.Add(-FollowupWindow))
}
