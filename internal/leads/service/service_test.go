package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ivanjorgee/maxconnect/internal/events"
	"github.com/ivanjorgee/maxconnect/internal/leads/domain"
	"github.com/ivanjorgee/maxconnect/internal/leads/repository"
	"github.com/ivanjorgee/maxconnect/internal/leads/transport"
	"github.com/ivanjorgee/maxconnect/platform/apperr"
	"github.com/ivanjorgee/maxconnect/platform/logger"
)

// fakeStore is an in-memory Store with per-method hooks for failure
// injection.
type fakeStore struct {
	mu           sync.Mutex
	leads        map[uuid.UUID]domain.Lead
	interactions map[uuid.UUID][]domain.Interaction

	sweepCalls []string
	sweepErr   map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:        make(map[uuid.UUID]domain.Lead),
		interactions: make(map[uuid.UUID][]domain.Interaction),
		sweepErr:     make(map[string]error),
	}
}

func (f *fakeStore) put(lead domain.Lead) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads[lead.ID] = lead
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (domain.Lead, error) {
	lead := domain.Lead{
		ID:               uuid.New(),
		Name:             params.Name,
		City:             params.City,
		Phone:            params.Phone,
		WhatsApp:         params.WhatsApp,
		PreferredChannel: params.PreferredChannel,
		Status:           domain.StatusNew,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	f.put(lead)
	return lead, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateLeadParams) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	if params.Name != nil {
		lead.Name = *params.Name
	}
	if params.Notes != nil {
		lead.Notes = *params.Notes
	}
	if params.Status != nil {
		lead.Status = *params.Status
	}
	if params.NextAction != nil {
		if *params.NextAction == "" {
			lead.NextAction = nil
			if params.NextActionDueAt == nil {
				lead.NextActionDueAt = nil
			}
		} else {
			action := domain.NextAction(*params.NextAction)
			lead.NextAction = &action
		}
	}
	if params.NextActionDueAt != nil {
		lead.NextActionDueAt = params.NextActionDueAt
	}
	if params.MeetingAt != nil {
		lead.MeetingAt = params.MeetingAt
	}
	if params.ClosedAt != nil {
		lead.ClosedAt = params.ClosedAt
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) List(_ context.Context, _ repository.ListParams) ([]domain.Lead, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]domain.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		items = append(items, lead)
	}
	return items, len(items), nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeStore) InsertInteraction(_ context.Context, interaction domain.Interaction) (domain.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	interaction.ID = uuid.New()
	interaction.CreatedAt = time.Now()
	f.interactions[interaction.LeadID] = append(f.interactions[interaction.LeadID], interaction)
	return interaction, nil
}

func (f *fakeStore) ListInteractions(_ context.Context, leadID uuid.UUID, limit int) ([]domain.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.interactions[leadID]
	// Newest first.
	items := make([]domain.Interaction, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		items = append(items, all[i])
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items, nil
}

func (f *fakeStore) LatestInteractions(_ context.Context, leadIDs []uuid.UUID) (map[uuid.UUID]domain.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := make(map[uuid.UUID]domain.Interaction)
	for _, id := range leadIDs {
		if all := f.interactions[id]; len(all) > 0 {
			latest[id] = all[len(all)-1]
		}
	}
	return latest, nil
}

func (f *fakeStore) ApplyTransition(_ context.Context, tr domain.Transition) (domain.Lead, domain.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leads[tr.Updated.ID]; !ok {
		return domain.Lead{}, domain.Interaction{}, repository.ErrNotFound
	}
	f.leads[tr.Updated.ID] = tr.Updated
	interaction := tr.Interaction
	interaction.ID = uuid.New()
	interaction.CreatedAt = time.Now()
	f.interactions[interaction.LeadID] = append(f.interactions[interaction.LeadID], interaction)
	return tr.Updated, interaction, nil
}

func (f *fakeStore) sweep(name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweepCalls = append(f.sweepCalls, name)
	if err := f.sweepErr[name]; err != nil {
		return 0, err
	}
	return 1, nil
}

func (f *fakeStore) ReclassifyLongFollowups(context.Context) (int64, error) {
	return f.sweep("fixups")
}

func (f *fakeStore) ScheduleFollowup1ForToday(context.Context, time.Time) (int64, error) {
	return f.sweep("today")
}

func (f *fakeStore) ScheduleOverdueFollowup1(context.Context, time.Time) (int64, error) {
	return f.sweep("overdue")
}

func (f *fakeStore) MarkConversationFollowupsPending(context.Context, time.Time) (int64, error) {
	return f.sweep("conversation")
}

func (f *fakeStore) StopUnresponsiveCadence(_ context.Context, now time.Time, policy domain.CadencePolicy) (int64, error) {
	if _, err := f.sweep("stop"); err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	until := domain.StartOfDay(now).AddDate(0, 0, policy.NoResponseDays)
	var updated int64
	for id, lead := range f.leads {
		if !domain.EligibleForNoResponseStop(lead, policy) {
			continue
		}
		lead.Status = domain.StatusSuspendedNoResponse
		lead.NoResponseUntil = &until
		lead.NextAction = nil
		lead.NextActionDueAt = nil
		f.leads[id] = lead
		updated++
	}
	return updated, nil
}

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.events))
	for i, event := range b.events {
		names[i] = event.EventName()
	}
	return names
}

type fakeCadenceConfig struct{}

func (fakeCadenceConfig) GetCadenceMaxAttempts() int    { return 4 }
func (fakeCadenceConfig) GetCadenceNoResponseDays() int { return 30 }

func newTestService(store *fakeStore, bus *recordingBus) *Service {
	svc := New(store, bus, logger.New("test"), fakeCadenceConfig{})
	svc.now = func() time.Time {
		return time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	}
	return svc
}

func seedLead(store *fakeStore) domain.Lead {
	lead := domain.Lead{
		ID:               uuid.New(),
		Name:             "Studio Foto Luz",
		Status:           domain.StatusNew,
		WhatsApp:         "+5511999990000",
		PreferredChannel: domain.ChannelWhatsApp,
	}
	store.put(lead)
	return lead
}

func TestApplyMacro_PersistsAndPublishes(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := newTestService(store, bus)
	lead := seedLead(store)

	detail, err := svc.ApplyMacro(context.Background(), lead.ID, transport.ApplyMacroRequest{Macro: "SEND_MESSAGE_1"})
	if err != nil {
		t.Fatalf("ApplyMacro: %v", err)
	}

	if detail.Lead.Status != string(domain.StatusMessage1Sent) {
		t.Fatalf("status %s", detail.Lead.Status)
	}
	if detail.Lead.AttemptCount != 1 {
		t.Fatalf("attemptCount %d", detail.Lead.AttemptCount)
	}
	if len(detail.Interactions) != 1 {
		t.Fatalf("interactions %d", len(detail.Interactions))
	}

	stored, _ := store.GetByID(context.Background(), lead.ID)
	if stored.Status != domain.StatusMessage1Sent {
		t.Fatalf("stored status %s", stored.Status)
	}

	names := bus.names()
	if len(names) != 1 || names[0] != "leads.funnel.updated" {
		t.Fatalf("events %v", names)
	}
}

func TestApplyMacro_MarkRepliedPublishesReplyEvent(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := newTestService(store, bus)
	lead := seedLead(store)

	if _, err := svc.ApplyMacro(context.Background(), lead.ID, transport.ApplyMacroRequest{Macro: "SEND_MESSAGE_1"}); err != nil {
		t.Fatalf("ApplyMacro: %v", err)
	}
	if _, err := svc.ApplyMacro(context.Background(), lead.ID, transport.ApplyMacroRequest{Macro: "MARK_REPLIED"}); err != nil {
		t.Fatalf("ApplyMacro: %v", err)
	}

	names := bus.names()
	want := []string{"leads.funnel.updated", "leads.funnel.updated", "leads.replied"}
	if len(names) != len(want) {
		t.Fatalf("events %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("events %v, want %v", names, want)
		}
	}
}

func TestApplyMacro_ReturnsAtMostFiveRecentInteractions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingBus{})
	lead := seedLead(store)

	for i := 0; i < 7; i++ {
		if _, err := svc.LogInteraction(context.Background(), lead.ID, transport.LogInteractionRequest{Kind: "CALL"}); err != nil {
			t.Fatalf("LogInteraction: %v", err)
		}
	}

	detail, err := svc.ApplyMacro(context.Background(), lead.ID, transport.ApplyMacroRequest{Macro: "SEND_MESSAGE_1"})
	if err != nil {
		t.Fatalf("ApplyMacro: %v", err)
	}
	if len(detail.Interactions) != 5 {
		t.Fatalf("expected 5 recent interactions, got %d", len(detail.Interactions))
	}
}

func TestApplyMacro_UnknownLead(t *testing.T) {
	svc := newTestService(newFakeStore(), &recordingBus{})

	_, err := svc.ApplyMacro(context.Background(), uuid.New(), transport.ApplyMacroRequest{Macro: "SEND_MESSAGE_1"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestRegisterConversationFollowup(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingBus{})
	lead := seedLead(store)
	lead.Status = domain.StatusInConversation
	store.put(lead)

	detail, err := svc.RegisterConversationFollowup(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("RegisterConversationFollowup: %v", err)
	}

	if detail.Lead.Status != string(domain.StatusInConversation) {
		t.Fatalf("status %s", detail.Lead.Status)
	}
	if detail.Lead.NextAction == nil || *detail.Lead.NextAction != string(domain.ActionAwaitingConversationReply) {
		t.Fatalf("nextAction %v", detail.Lead.NextAction)
	}
	wantDue := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC).Add(48 * time.Hour)
	if detail.Lead.NextActionDueAt == nil || !detail.Lead.NextActionDueAt.Equal(wantDue) {
		t.Fatalf("due %v", detail.Lead.NextActionDueAt)
	}
	if detail.Lead.AttemptCount != 0 {
		t.Fatalf("nudge must not count as an attempt: %d", detail.Lead.AttemptCount)
	}
	if len(detail.Interactions) != 1 || detail.Interactions[0].Kind != string(domain.KindFollowupConversation) {
		t.Fatalf("interactions %+v", detail.Interactions)
	}
}

func TestRunFollowupSweep_OrderAndErrorIsolation(t *testing.T) {
	store := newFakeStore()
	store.sweepErr["today"] = context.DeadlineExceeded
	svc := newTestService(store, &recordingBus{})

	result := svc.RunFollowupSweep(context.Background())

	want := []string{"fixups", "today", "overdue", "conversation"}
	if len(store.sweepCalls) != len(want) {
		t.Fatalf("calls %v", store.sweepCalls)
	}
	for i := range want {
		if store.sweepCalls[i] != want[i] {
			t.Fatalf("calls %v, want %v", store.sweepCalls, want)
		}
	}

	if result.OK {
		t.Fatal("a failing step must mark the sweep as not ok")
	}
	if result.ScheduledToday.Error == "" {
		t.Fatal("failing step must carry its error")
	}
	if result.AutoAfter24h.Updated != 1 || result.Conversation.Updated != 1 {
		t.Fatalf("later steps must still run: %+v", result)
	}
}

func TestStopUnresponsive(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingBus{})

	exhausted := domain.Lead{
		ID:           uuid.New(),
		Name:         "Padaria Central",
		Status:       domain.StatusMessage1Sent,
		AttemptCount: 4,
	}
	store.put(exhausted)

	replied := time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC)
	responsive := domain.Lead{
		ID:            uuid.New(),
		Name:          "Oficina Roda Viva",
		Status:        domain.StatusMessage1Sent,
		AttemptCount:  4,
		LastInboundAt: &replied,
	}
	store.put(responsive)

	result, err := svc.StopUnresponsive(context.Background())
	if err != nil {
		t.Fatalf("StopUnresponsive: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("updated %d, want only the exhausted silent lead", result.Updated)
	}
	if len(store.sweepCalls) != 1 || store.sweepCalls[0] != "stop" {
		t.Fatalf("calls %v", store.sweepCalls)
	}

	suspended, _ := store.GetByID(context.Background(), exhausted.ID)
	if suspended.Status != domain.StatusSuspendedNoResponse {
		t.Fatalf("status %s", suspended.Status)
	}
	wantUntil := time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC)
	if suspended.NoResponseUntil == nil || !suspended.NoResponseUntil.Equal(wantUntil) {
		t.Fatalf("noResponseUntil %v, want %v", suspended.NoResponseUntil, wantUntil)
	}

	untouched, _ := store.GetByID(context.Background(), responsive.ID)
	if untouched.Status != domain.StatusMessage1Sent {
		t.Fatalf("replied lead must not be suspended, got %s", untouched.Status)
	}

	// A second run finds nothing left to suspend.
	again, err := svc.StopUnresponsive(context.Background())
	if err != nil {
		t.Fatalf("StopUnresponsive again: %v", err)
	}
	if again.Updated != 0 {
		t.Fatalf("second run updated %d, want 0", again.Updated)
	}
}

func TestGetByID_ComputesDerivedFields(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingBus{})
	lead := seedLead(store)

	if _, err := svc.ApplyMacro(context.Background(), lead.ID, transport.ApplyMacroRequest{Macro: "SEND_MESSAGE_1"}); err != nil {
		t.Fatalf("ApplyMacro: %v", err)
	}

	detail, err := svc.GetByID(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if detail.Lead.WhatsAppLink != "https://wa.me/5511999990000" {
		t.Fatalf("whatsapp link %q", detail.Lead.WhatsAppLink)
	}
	if detail.Lead.SuggestedAction == nil || *detail.Lead.SuggestedAction != string(domain.ActionFollowUp1) {
		t.Fatalf("suggested action %v", detail.Lead.SuggestedAction)
	}
	// Follow-up 1 is scheduled by the macro itself, so nothing is pending.
	if detail.Lead.PendingFollowup1 {
		t.Fatal("pendingFollowup1 must be false while a next action is set")
	}
}

func TestUpdate_ManualFunnelEdits(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingBus{})
	lead := seedLead(store)

	status := string(domain.StatusMeetingScheduled)
	action := string(domain.ActionHoldMeeting)
	meeting := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	resp, err := svc.Update(context.Background(), lead.ID, transport.UpdateLeadRequest{
		Status:          &status,
		NextAction:      &action,
		NextActionDueAt: &meeting,
		MeetingAt:       &meeting,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if resp.Status != status {
		t.Fatalf("status %s", resp.Status)
	}
	if resp.NextAction == nil || *resp.NextAction != action {
		t.Fatalf("nextAction %v", resp.NextAction)
	}
	if resp.MeetingAt == nil || !resp.MeetingAt.Equal(meeting) {
		t.Fatalf("meetingAt %v", resp.MeetingAt)
	}

	// Clearing the recommendation drops its due date too.
	clear := ""
	resp, err = svc.Update(context.Background(), lead.ID, transport.UpdateLeadRequest{NextAction: &clear})
	if err != nil {
		t.Fatalf("Update clear: %v", err)
	}
	if resp.NextAction != nil || resp.NextActionDueAt != nil {
		t.Fatalf("recommendation not cleared: %v %v", resp.NextAction, resp.NextActionDueAt)
	}
}

func TestUpdate_RejectsUnknownStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingBus{})
	lead := seedLead(store)

	status := "SOMETHING_ELSE"
	_, err := svc.Update(context.Background(), lead.ID, transport.UpdateLeadRequest{Status: &status})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestList_RejectsUnknownStatusFilter(t *testing.T) {
	svc := newTestService(newFakeStore(), &recordingBus{})

	status := "SOMETHING_ELSE"
	_, err := svc.List(context.Background(), transport.ListLeadsRequest{Status: &status})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTemplates_CatalogShape(t *testing.T) {
	svc := newTestService(newFakeStore(), &recordingBus{})

	items := svc.Templates()
	if len(items) != 5 {
		t.Fatalf("catalog size %d", len(items))
	}
	if items[0].ID != "M1A" || items[0].AlternateVariant == nil || *items[0].AlternateVariant != "M1B" {
		t.Fatalf("opening entry %+v", items[0])
	}
	if items[2].ID != "FU1" || items[2].NextTemplate == nil || *items[2].NextTemplate != "FU2" {
		t.Fatalf("FU1 entry %+v", items[2])
	}
	last := items[4]
	if last.ID != "BREAKUP" || last.NextTemplate != nil {
		t.Fatalf("breakup entry %+v", last)
	}
}
