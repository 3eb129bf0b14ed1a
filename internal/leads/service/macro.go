package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ivanjorgee/maxconnect/internal/events"
	"github.com/ivanjorgee/maxconnect/internal/leads/domain"
	"github.com/ivanjorgee/maxconnect/internal/leads/repository"
	"github.com/ivanjorgee/maxconnect/internal/leads/transport"
	"github.com/ivanjorgee/maxconnect/platform/apperr"
	"github.com/ivanjorgee/maxconnect/platform/sanitize"
)

// ApplyMacro runs one operator macro against a lead: the domain layer
// computes the transition, the repository persists it atomically, and the
// funnel-update event goes out after the commit.
func (s *Service) ApplyMacro(ctx context.Context, leadID uuid.UUID, req transport.ApplyMacroRequest) (transport.LeadDetailResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadDetailResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	macro := domain.Macro(req.Macro)
	opts := domain.MacroOptions{
		OccurredAt: req.OccurredAt,
		Note:       sanitize.Text(req.Note),
	}
	if req.Channel != nil {
		channel := domain.Channel(*req.Channel)
		opts.Channel = &channel
	}
	if req.Template != nil {
		template := domain.TemplateID(*req.Template)
		opts.OpeningTemplate = &template
	}

	now := s.now()
	tr, err := domain.BuildTransition(lead, macro, opts, now, s.policy)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	updated, _, err := s.repo.ApplyTransition(ctx, tr)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadDetailResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	s.log.MacroApplied(leadID.String(), string(macro), string(updated.Status), updated.AttemptCount)

	s.bus.Publish(ctx, events.LeadFunnelUpdated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		Macro:     string(macro),
		Status:    string(updated.Status),
	})
	if macro == domain.MacroMarkReplied {
		s.bus.Publish(ctx, events.LeadReplied{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    leadID,
		})
	}

	recent, err := s.repo.ListInteractions(ctx, leadID, recentInteractionLimit)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	var latest *domain.Interaction
	if len(recent) > 0 {
		latest = &recent[0]
	}

	return transport.LeadDetailResponse{
		Lead:         s.toLeadResponse(updated, latest),
		Interactions: toInteractionResponses(recent),
	}, nil
}

// RegisterConversationFollowup logs the manual nudge on a stalled
// conversation and parks the lead waiting for a reply for 48h.
func (s *Service) RegisterConversationFollowup(ctx context.Context, leadID uuid.UUID) (transport.LeadDetailResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadDetailResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	tr := domain.BuildConversationFollowup(lead, s.now())

	updated, _, err := s.repo.ApplyTransition(ctx, tr)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadDetailResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadFunnelUpdated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		Status:    string(updated.Status),
	})

	recent, err := s.repo.ListInteractions(ctx, leadID, recentInteractionLimit)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	var latest *domain.Interaction
	if len(recent) > 0 {
		latest = &recent[0]
	}

	return transport.LeadDetailResponse{
		Lead:         s.toLeadResponse(updated, latest),
		Interactions: toInteractionResponses(recent),
	}, nil
}
