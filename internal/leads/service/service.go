// Package service holds the leads application layer: lead CRUD, macro
// application and the batch follow-up sweeps, on top of the pure domain
// transition logic.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ivanjorgee/maxconnect/internal/events"
	"github.com/ivanjorgee/maxconnect/internal/leads/domain"
	"github.com/ivanjorgee/maxconnect/internal/leads/repository"
	"github.com/ivanjorgee/maxconnect/internal/leads/transport"
	"github.com/ivanjorgee/maxconnect/platform/apperr"
	"github.com/ivanjorgee/maxconnect/platform/logger"
	"github.com/ivanjorgee/maxconnect/platform/phone"
	"github.com/ivanjorgee/maxconnect/platform/sanitize"
)

// Store is the persistence surface the service needs. *repository.Repository
// satisfies it; tests plug in fakes.
type Store interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (domain.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams) (domain.Lead, error)
	List(ctx context.Context, params repository.ListParams) ([]domain.Lead, int, error)
	Delete(ctx context.Context, id uuid.UUID) error

	InsertInteraction(ctx context.Context, interaction domain.Interaction) (domain.Interaction, error)
	ListInteractions(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Interaction, error)
	LatestInteractions(ctx context.Context, leadIDs []uuid.UUID) (map[uuid.UUID]domain.Interaction, error)

	ApplyTransition(ctx context.Context, tr domain.Transition) (domain.Lead, domain.Interaction, error)

	ReclassifyLongFollowups(ctx context.Context) (int64, error)
	ScheduleFollowup1ForToday(ctx context.Context, now time.Time) (int64, error)
	ScheduleOverdueFollowup1(ctx context.Context, now time.Time) (int64, error)
	MarkConversationFollowupsPending(ctx context.Context, now time.Time) (int64, error)
	StopUnresponsiveCadence(ctx context.Context, now time.Time, policy domain.CadencePolicy) (int64, error)
}

// CadenceConfig is the config slice the service reads.
type CadenceConfig interface {
	GetCadenceMaxAttempts() int
	GetCadenceNoResponseDays() int
}

type Service struct {
	repo   Store
	bus    events.Bus
	log    *logger.Logger
	policy domain.CadencePolicy

	// now is swapped in tests for a fixed clock.
	now func() time.Time
}

func New(repo Store, bus events.Bus, log *logger.Logger, cfg CadenceConfig) *Service {
	return &Service{
		repo: repo,
		bus:  bus,
		log:  log,
		policy: domain.CadencePolicy{
			MaxAttempts:    cfg.GetCadenceMaxAttempts(),
			NoResponseDays: cfg.GetCadenceNoResponseDays(),
		},
		now: time.Now,
	}
}

const recentInteractionLimit = 5

func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	params := repository.CreateLeadParams{
		Name:             req.Name,
		City:             req.City,
		Address:          req.Address,
		Phone:            phone.NormalizeE164(req.Phone),
		WhatsApp:         phone.NormalizeE164(req.WhatsApp),
		Website:          req.Website,
		Instagram:        req.Instagram,
		SiteQuality:      req.SiteQuality,
		LeadSource:       req.LeadSource,
		PreferredChannel: domain.ChannelWhatsApp,
		Notes:            sanitize.Text(req.Notes),
	}
	if req.Channel != "" {
		params.PreferredChannel = domain.Channel(req.Channel)
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	return s.toLeadResponse(lead, nil), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	params := repository.UpdateLeadParams{
		Name:        req.Name,
		City:        req.City,
		Address:     req.Address,
		Website:     req.Website,
		Instagram:   req.Instagram,
		SiteQuality: req.SiteQuality,
		LeadSource:  req.LeadSource,
		Notes:       sanitize.TextPtr(req.Notes),
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}
	if req.WhatsApp != nil {
		normalized := phone.NormalizeE164(*req.WhatsApp)
		params.WhatsApp = &normalized
	}
	if req.Channel != nil {
		channel := domain.Channel(*req.Channel)
		params.Channel = &channel
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if !domain.IsValidStatus(status) {
			return transport.LeadResponse{}, apperr.Validation("unknown status: " + *req.Status)
		}
		params.Status = &status
	}
	params.NextAction = req.NextAction
	params.NextActionDueAt = req.NextActionDueAt
	params.MeetingAt = req.MeetingAt
	params.FirstMessageAt = req.FirstMessageAt
	params.Followup1At = req.Followup1At
	params.Followup2At = req.Followup2At
	params.ClosedAt = req.ClosedAt

	lead, err := s.repo.Update(ctx, id, params)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadResponse{}, err
	}

	return s.toLeadResponse(lead, nil), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadDetailResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadDetailResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	interactions, err := s.repo.ListInteractions(ctx, id, 0)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	var latest *domain.Interaction
	if len(interactions) > 0 {
		latest = &interactions[0]
	}

	return transport.LeadDetailResponse{
		Lead:         s.toLeadResponse(lead, latest),
		Interactions: toInteractionResponses(interactions),
	}, nil
}

func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	params := repository.ListParams{
		Search:     req.Search,
		City:       req.City,
		LeadSource: req.LeadSource,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if !domain.IsValidStatus(status) {
			return transport.LeadListResponse{}, apperr.Validation("unknown status filter: " + *req.Status)
		}
		params.Status = &status
	}
	if req.DueOnly {
		now := s.now()
		params.DueBefore = &now
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	ids := make([]uuid.UUID, len(leads))
	for i, lead := range leads {
		ids[i] = lead.ID
	}
	latest, err := s.repo.LatestInteractions(ctx, ids)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		var last *domain.Interaction
		if interaction, ok := latest[lead.ID]; ok {
			last = &interaction
		}
		items[i] = s.toLeadResponse(lead, last)
	}

	return transport.LeadListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

// LogInteraction appends a manually recorded touch. It never moves the
// funnel; macros do that.
func (s *Service) LogInteraction(ctx context.Context, leadID uuid.UUID, req transport.LogInteractionRequest) (transport.InteractionResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.InteractionResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.InteractionResponse{}, err
	}

	occurredAt := s.now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}
	channel := lead.PreferredChannel
	if req.Channel != "" {
		channel = domain.Channel(req.Channel)
	}

	interaction, err := s.repo.InsertInteraction(ctx, domain.Interaction{
		LeadID:      leadID,
		Kind:        domain.InteractionKind(req.Kind),
		Channel:     channel,
		OccurredAt:  occurredAt,
		Description: sanitize.Text(req.Description),
	})
	if err != nil {
		return transport.InteractionResponse{}, err
	}

	return toInteractionResponse(interaction), nil
}

func (s *Service) ListInteractions(ctx context.Context, leadID uuid.UUID, limit int) ([]transport.InteractionResponse, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, err
	}

	interactions, err := s.repo.ListInteractions(ctx, leadID, limit)
	if err != nil {
		return nil, err
	}
	return toInteractionResponses(interactions), nil
}

// templateOrder fixes the catalog presentation: openings first, then the
// follow-ups in cadence order.
var templateOrder = []domain.TemplateID{
	domain.TemplateM1A, domain.TemplateM1B,
	domain.TemplateFU1, domain.TemplateFU2, domain.TemplateBreakup,
}

// Templates returns the cadence catalog: each template with its step, its
// successor in the cadence, and for openings the alternate A/B variant.
func (s *Service) Templates() []transport.TemplateResponse {
	items := make([]transport.TemplateResponse, 0, len(templateOrder))
	for _, id := range templateOrder {
		tmpl := domain.CadenceTemplates[id]
		step := domain.StepForTemplate(id)
		item := transport.TemplateResponse{
			ID:    string(tmpl.ID),
			Step:  string(step),
			Title: tmpl.Title,
			Body:  tmpl.Body,
		}
		if next, ok := cadenceSuccessor(step); ok {
			value := string(next)
			item.NextTemplate = &value
		}
		if step == domain.StepOpening {
			value := string(domain.NextDefaultAfter(id))
			item.AlternateVariant = &value
		}
		items = append(items, item)
	}
	return items
}

func cadenceSuccessor(step domain.CadenceStep) (domain.TemplateID, bool) {
	switch step {
	case domain.StepOpening:
		return domain.TemplateFU1, true
	case domain.StepFollowup1:
		return domain.TemplateFU2, true
	case domain.StepFollowup2:
		return domain.TemplateBreakup, true
	default:
		return "", false
	}
}
