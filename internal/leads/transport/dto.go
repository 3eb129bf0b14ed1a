package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	City        string `json:"city,omitempty" validate:"max=100"`
	Address     string `json:"address,omitempty" validate:"max=300"`
	Phone       string `json:"phone,omitempty" validate:"max=30"`
	WhatsApp    string `json:"whatsapp,omitempty" validate:"max=30"`
	Website     string `json:"website,omitempty" validate:"max=300"`
	Instagram   string `json:"instagram,omitempty" validate:"max=100"`
	SiteQuality string `json:"siteQuality,omitempty" validate:"max=50"`
	LeadSource  string `json:"leadSource,omitempty" validate:"max=100"`
	Channel     string `json:"channel,omitempty" validate:"omitempty,oneof=WHATSAPP INSTAGRAM_DM CALL EMAIL"`
	Notes       string `json:"notes,omitempty" validate:"max=2000"`
}

type UpdateLeadRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	WhatsApp    *string `json:"whatsapp,omitempty" validate:"omitempty,max=30"`
	Website     *string `json:"website,omitempty" validate:"omitempty,max=300"`
	Instagram   *string `json:"instagram,omitempty" validate:"omitempty,max=100"`
	SiteQuality *string `json:"siteQuality,omitempty" validate:"omitempty,max=50"`
	LeadSource  *string `json:"leadSource,omitempty" validate:"omitempty,max=100"`
	Channel     *string `json:"channel,omitempty" validate:"omitempty,oneof=WHATSAPP INSTAGRAM_DM CALL EMAIL"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=2000"`

	// Funnel-state corrections, the manual mutation path alongside macros.
	// An empty nextAction clears the recommendation.
	Status          *string    `json:"status,omitempty" validate:"omitempty,max=40"`
	NextAction      *string    `json:"nextAction,omitempty" validate:"omitempty,oneof=FOLLOW_UP_1 FOLLOW_UP_2 BREAKUP HOLD_MEETING SEND_PROPOSAL FOLLOW_UP_CONVERSATION AWAITING_CONVERSATION_REPLY"`
	NextActionDueAt *time.Time `json:"nextActionDueAt,omitempty"`
	MeetingAt       *time.Time `json:"meetingAt,omitempty"`
	FirstMessageAt  *time.Time `json:"firstMessageAt,omitempty"`
	Followup1At     *time.Time `json:"followup1At,omitempty"`
	Followup2At     *time.Time `json:"followup2At,omitempty"`
	ClosedAt        *time.Time `json:"closedAt,omitempty"`
}

type ListLeadsRequest struct {
	Status     *string `form:"status" validate:"omitempty,max=40"`
	Search     string  `form:"search" validate:"max=100"`
	City       *string `form:"city" validate:"omitempty,max=100"`
	LeadSource *string `form:"leadSource" validate:"omitempty,max=100"`
	DueOnly    bool    `form:"dueOnly"`
	Page       int     `form:"page" validate:"min=0"`
	PageSize   int     `form:"pageSize" validate:"min=0,max=100"`
	SortBy     string  `form:"sortBy" validate:"omitempty,oneof=createdAt name city status nextActionDueAt lastOutboundAt"`
	SortOrder  string  `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type ApplyMacroRequest struct {
	Macro      string     `json:"macro" validate:"required,oneof=SEND_MESSAGE_1 SEND_FOLLOWUP_1 SEND_FOLLOWUP_2 SEND_BREAKUP SCHEDULE_MEETING HOLD_MEETING SEND_PROPOSAL CONVERSATION_STARTED MARK_REPLIED MARK_LOST"`
	Channel    *string    `json:"channel,omitempty" validate:"omitempty,oneof=WHATSAPP INSTAGRAM_DM CALL EMAIL"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
	Template   *string    `json:"template,omitempty" validate:"omitempty,oneof=M1A M1B"`
	Note       string     `json:"note,omitempty" validate:"max=500"`
}

type LogInteractionRequest struct {
	Kind        string     `json:"kind" validate:"required,oneof=MESSAGE_1 FOLLOWUP_1 FOLLOWUP_2 FOLLOWUP_CONVERSATION WHATSAPP_MESSAGE INSTAGRAM_MESSAGE CALL MEETING BREAKUP OTHER"`
	Channel     string     `json:"channel,omitempty" validate:"omitempty,oneof=WHATSAPP INSTAGRAM_DM CALL EMAIL"`
	OccurredAt  *time.Time `json:"occurredAt,omitempty"`
	Description string     `json:"description,omitempty" validate:"max=1000"`
}

// Response DTOs

type LeadResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city,omitempty"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	WhatsApp    string    `json:"whatsapp,omitempty"`
	Website     string    `json:"website,omitempty"`
	Instagram   string    `json:"instagram,omitempty"`
	SiteQuality string    `json:"siteQuality,omitempty"`
	LeadSource  string    `json:"leadSource,omitempty"`
	Channel     string    `json:"channel,omitempty"`
	Notes       string    `json:"notes,omitempty"`

	Status          string     `json:"status"`
	NextAction      *string    `json:"nextAction,omitempty"`
	NextActionDueAt *time.Time `json:"nextActionDueAt,omitempty"`

	AttemptCount       int        `json:"attemptCount"`
	CurrentTemplate    *string    `json:"currentTemplate,omitempty"`
	CurrentCadenceStep *string    `json:"currentCadenceStep,omitempty"`
	LastOutboundAt     *time.Time `json:"lastOutboundAt,omitempty"`
	LastInboundAt      *time.Time `json:"lastInboundAt,omitempty"`
	NoResponseUntil    *time.Time `json:"noResponseUntil,omitempty"`

	FirstMessageAt *time.Time `json:"firstMessageAt,omitempty"`
	Followup1At    *time.Time `json:"followup1At,omitempty"`
	Followup2At    *time.Time `json:"followup2At,omitempty"`
	MeetingAt      *time.Time `json:"meetingAt,omitempty"`
	ClosedAt       *time.Time `json:"closedAt,omitempty"`

	// Derived, never stored.
	WhatsAppLink             string     `json:"whatsappLink,omitempty"`
	SuggestedAction          *string    `json:"suggestedAction,omitempty"`
	SuggestedActionDueAt     *time.Time `json:"suggestedActionDueAt,omitempty"`
	PendingFollowup1         bool       `json:"pendingFollowup1"`
	PendingConversationNudge bool       `json:"pendingConversationNudge"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type InteractionResponse struct {
	ID          uuid.UUID `json:"id"`
	LeadID      uuid.UUID `json:"leadId"`
	Kind        string    `json:"kind"`
	Channel     string    `json:"channel"`
	OccurredAt  time.Time `json:"occurredAt"`
	Description string    `json:"description,omitempty"`
	Direction   *string   `json:"direction,omitempty"`
	TemplateID  *string   `json:"templateId,omitempty"`
	Outcome     *string   `json:"outcome,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type LeadDetailResponse struct {
	Lead         LeadResponse          `json:"lead"`
	Interactions []InteractionResponse `json:"interactions"`
}

type LeadListResponse struct {
	Items    []LeadResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

type TemplateResponse struct {
	ID               string  `json:"id"`
	Step             string  `json:"step"`
	Title            string  `json:"title"`
	Body             string  `json:"body"`
	NextTemplate     *string `json:"nextTemplate,omitempty"`
	AlternateVariant *string `json:"alternateVariant,omitempty"`
}

type SweepStepResult struct {
	Updated int64  `json:"updated"`
	Error   string `json:"error,omitempty"`
}

type SweepResponse struct {
	OK             bool            `json:"ok"`
	Fixups         SweepStepResult `json:"fixups"`
	ScheduledToday SweepStepResult `json:"scheduledToday"`
	AutoAfter24h   SweepStepResult `json:"autoAfter24h"`
	Conversation   SweepStepResult `json:"conversation"`
}

type StopUnresponsiveResponse struct {
	Updated int64 `json:"updated"`
}
