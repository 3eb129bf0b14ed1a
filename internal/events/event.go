// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/ivanjorgee/maxconnect/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus re-exports the platform bus constructor.
var NewInMemoryBus = events.NewInMemoryBus

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadFunnelUpdated is published after any macro transition or batch sweep
// changes a lead's funnel state. Aggregate consumers (dashboard) use it to
// invalidate derived views.
type LeadFunnelUpdated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Macro  string    `json:"macro,omitempty"`
	Status string    `json:"status"`
}

func (e LeadFunnelUpdated) EventName() string { return "leads.funnel.updated" }

// LeadReplied is published when an inbound reply is recorded on a lead.
type LeadReplied struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (e LeadReplied) EventName() string { return "leads.replied" }
