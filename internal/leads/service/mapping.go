package service

import (
	"github.com/ivanjorgee/maxconnect/internal/leads/domain"
	"github.com/ivanjorgee/maxconnect/internal/leads/transport"
	"github.com/ivanjorgee/maxconnect/platform/phone"
)

// toLeadResponse maps a lead plus its latest interaction (nil when unknown)
// to the API shape, computing the advisory fields on the way out.
func (s *Service) toLeadResponse(lead domain.Lead, latest *domain.Interaction) transport.LeadResponse {
	now := s.now()

	resp := transport.LeadResponse{
		ID:          lead.ID,
		Name:        lead.Name,
		City:        lead.City,
		Address:     lead.Address,
		Phone:       lead.Phone,
		WhatsApp:    lead.WhatsApp,
		Website:     lead.Website,
		Instagram:   lead.Instagram,
		SiteQuality: lead.SiteQuality,
		LeadSource:  lead.LeadSource,
		Channel:     string(lead.PreferredChannel),
		Notes:       lead.Notes,

		Status:          string(lead.Status),
		NextActionDueAt: lead.NextActionDueAt,

		AttemptCount:    lead.AttemptCount,
		LastOutboundAt:  lead.LastOutboundAt,
		LastInboundAt:   lead.LastInboundAt,
		NoResponseUntil: lead.NoResponseUntil,

		FirstMessageAt: lead.FirstMessageAt,
		Followup1At:    lead.Followup1At,
		Followup2At:    lead.Followup2At,
		MeetingAt:      lead.MeetingAt,
		ClosedAt:       lead.ClosedAt,

		CreatedAt: lead.CreatedAt,
		UpdatedAt: lead.UpdatedAt,
	}

	if lead.NextAction != nil {
		value := string(*lead.NextAction)
		resp.NextAction = &value
	}
	if lead.CurrentTemplate != nil {
		value := string(*lead.CurrentTemplate)
		resp.CurrentTemplate = &value
	}
	if lead.CurrentCadenceStep != nil {
		value := string(*lead.CurrentCadenceStep)
		resp.CurrentCadenceStep = &value
	}

	if lead.WhatsApp != "" {
		resp.WhatsAppLink = phone.WhatsAppLink(lead.WhatsApp)
	} else if lead.Phone != "" {
		resp.WhatsAppLink = phone.WhatsAppLink(lead.Phone)
	}

	suggestion := domain.SuggestNextAction(domain.SuggestionContext{
		Status:          lead.Status,
		MeetingAt:       lead.MeetingAt,
		NextAction:      lead.NextAction,
		NextActionDueAt: lead.NextActionDueAt,
	}, now)
	if suggestion.Action != "" {
		value := string(suggestion.Action)
		resp.SuggestedAction = &value
		resp.SuggestedActionDueAt = suggestion.DueAt
	}

	resp.PendingFollowup1 = domain.Followup1Pending(lead, latest, now)
	resp.PendingConversationNudge = domain.ConversationPending(lead, latest, now)

	return resp
}

func toInteractionResponse(interaction domain.Interaction) transport.InteractionResponse {
	resp := transport.InteractionResponse{
		ID:          interaction.ID,
		LeadID:      interaction.LeadID,
		Kind:        string(interaction.Kind),
		Channel:     string(interaction.Channel),
		OccurredAt:  interaction.OccurredAt,
		Description: interaction.Description,
		CreatedAt:   interaction.CreatedAt,
	}
	if interaction.Direction != nil {
		value := string(*interaction.Direction)
		resp.Direction = &value
	}
	if interaction.TemplateID != nil {
		value := string(*interaction.TemplateID)
		resp.TemplateID = &value
	}
	if interaction.Outcome != nil {
		value := string(*interaction.Outcome)
		resp.Outcome = &value
	}
	return resp
}

func toInteractionResponses(interactions []domain.Interaction) []transport.InteractionResponse {
	items := make([]transport.InteractionResponse, len(interactions))
	for i, interaction := range interactions {
		items[i] = toInteractionResponse(interaction)
	}
	return items
}
