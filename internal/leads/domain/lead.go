// Package domain holds the cadence engine: the funnel model, the message
// template catalog, and the pure transition logic that maps operator macros
// to new lead state. Nothing in this package touches storage or HTTP.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lead's position in the outreach funnel.
type Status string

const (
	StatusNew                 Status = "NEW"
	StatusMessage1Sent        Status = "MESSAGE_1_SENT"
	StatusResponded           Status = "RESPONDED"
	StatusObjectionTrust      Status = "OBJECTION_TRUST"
	StatusGatekeeper          Status = "GATEKEEPER"
	StatusPreviewSent         Status = "PREVIEW_SENT"
	StatusInConversation      Status = "IN_CONVERSATION"
	StatusMeetingScheduled    Status = "MEETING_SCHEDULED"
	StatusMeetingHeld         Status = "MEETING_HELD"
	StatusProposalSent        Status = "PROPOSAL_SENT"
	StatusSuspendedNoResponse Status = "SUSPENDED_NO_RESPONSE"
	StatusNurture             Status = "NURTURE"
	StatusClosed              Status = "CLOSED"
	StatusLost                Status = "LOST"
	StatusLongFollowup        Status = "LONG_FOLLOWUP"
)

// AllStatuses lists every funnel status, in funnel order.
var AllStatuses = []Status{
	StatusNew,
	StatusMessage1Sent,
	StatusResponded,
	StatusObjectionTrust,
	StatusGatekeeper,
	StatusPreviewSent,
	StatusInConversation,
	StatusMeetingScheduled,
	StatusMeetingHeld,
	StatusProposalSent,
	StatusSuspendedNoResponse,
	StatusNurture,
	StatusClosed,
	StatusLost,
	StatusLongFollowup,
}

// IsValidStatus reports whether s names a known funnel status.
func IsValidStatus(s Status) bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// NextAction is the engine's recommendation tag for what to do next on a lead.
type NextAction string

const (
	ActionFollowUp1                 NextAction = "FOLLOW_UP_1"
	ActionFollowUp2                 NextAction = "FOLLOW_UP_2"
	ActionBreakup                   NextAction = "BREAKUP"
	ActionHoldMeeting               NextAction = "HOLD_MEETING"
	ActionSendProposal              NextAction = "SEND_PROPOSAL"
	ActionFollowUpConversation      NextAction = "FOLLOW_UP_CONVERSATION"
	ActionAwaitingConversationReply NextAction = "AWAITING_CONVERSATION_REPLY"
	// ActionFollowUpLong only exists on rows written by an older cadence
	// revision; the consistency sweep retires it.
	ActionFollowUpLong NextAction = "FOLLOW_UP_LONG"
)

// InteractionKind classifies a logged touch on a lead.
type InteractionKind string

const (
	KindMessage1             InteractionKind = "MESSAGE_1"
	KindFollowup1            InteractionKind = "FOLLOWUP_1"
	KindFollowup2            InteractionKind = "FOLLOWUP_2"
	KindFollowupConversation InteractionKind = "FOLLOWUP_CONVERSATION"
	KindWhatsAppMessage      InteractionKind = "WHATSAPP_MESSAGE"
	KindInstagramMessage     InteractionKind = "INSTAGRAM_MESSAGE"
	KindCall                 InteractionKind = "CALL"
	KindMeeting              InteractionKind = "MEETING"
	KindBreakup              InteractionKind = "BREAKUP"
	KindOther                InteractionKind = "OTHER"
)

// Channel is the medium an interaction happened on.
type Channel string

const (
	ChannelWhatsApp    Channel = "WHATSAPP"
	ChannelInstagramDM Channel = "INSTAGRAM_DM"
	ChannelCall        Channel = "CALL"
	ChannelEmail       Channel = "EMAIL"
)

// Direction marks outbound cadence messages and inbound replies.
type Direction string

const (
	DirectionOutbound Direction = "OUTBOUND"
	DirectionInbound  Direction = "INBOUND"
)

// Outcome is the result recorded on a directed interaction.
type Outcome string

const (
	OutcomeNeutral Outcome = "NEUTRAL"
	OutcomeReplied Outcome = "REPLIED"
)

// Lead is a prospecting target moving through the funnel.
type Lead struct {
	ID uuid.UUID

	// Profile fields, read-only context for message personalization.
	Name             string
	City             string
	Address          string
	Phone            string
	WhatsApp         string
	Website          string
	Instagram        string
	SiteQuality      string
	LeadSource       string
	PreferredChannel Channel
	Notes            string

	// Funnel state.
	Status          Status
	NextAction      *NextAction
	NextActionDueAt *time.Time

	// Cadence bookkeeping.
	AttemptCount       int
	CurrentTemplate    *TemplateID
	CurrentCadenceStep *CadenceStep
	LastOutboundAt     *time.Time
	LastInboundAt      *time.Time
	NoResponseUntil    *time.Time

	// Milestones, each owned by one macro.
	FirstMessageAt *time.Time
	Followup1At    *time.Time
	Followup2At    *time.Time
	MeetingAt      *time.Time
	ClosedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UnderCooldown reports whether the lead is inside a no-response cooldown
// window at the given instant.
func (l Lead) UnderCooldown(now time.Time) bool {
	return l.NoResponseUntil != nil && l.NoResponseUntil.After(now)
}

// Interaction is one append-only log entry on a lead. Immutable once created.
type Interaction struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	Kind        InteractionKind
	Channel     Channel
	OccurredAt  time.Time
	Description string
	Direction   *Direction
	TemplateID  *TemplateID
	Outcome     *Outcome
	CreatedAt   time.Time
}
