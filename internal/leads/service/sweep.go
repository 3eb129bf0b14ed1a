package service

import (
	"context"

	"github.com/ivanjorgee/maxconnect/internal/leads/transport"
)

// RunFollowupSweep executes the cadence housekeeping batch in its fixed
// order: consistency fix-up, schedule today's follow-up 1 for tomorrow
// morning, mark overdue follow-up 1 as due now, then flag stalled
// conversations. A failing step is reported but never aborts the later ones.
func (s *Service) RunFollowupSweep(ctx context.Context) transport.SweepResponse {
	now := s.now()
	response := transport.SweepResponse{OK: true}

	run := func(step string, result *transport.SweepStepResult, fn func() (int64, error)) {
		updated, err := fn()
		s.log.CronSweep(step, updated, err)
		result.Updated = updated
		if err != nil {
			result.Error = err.Error()
			response.OK = false
		}
	}

	run("reclassify_long_followups", &response.Fixups, func() (int64, error) {
		return s.repo.ReclassifyLongFollowups(ctx)
	})
	run("schedule_followup1_today", &response.ScheduledToday, func() (int64, error) {
		return s.repo.ScheduleFollowup1ForToday(ctx, now)
	})
	run("schedule_followup1_overdue", &response.AutoAfter24h, func() (int64, error) {
		return s.repo.ScheduleOverdueFollowup1(ctx, now)
	})
	run("mark_conversation_followups", &response.Conversation, func() (int64, error) {
		return s.repo.MarkConversationFollowupsPending(ctx, now)
	})

	return response
}

// StopUnresponsive suspends every lead that burned through the attempt
// budget without a single reply.
func (s *Service) StopUnresponsive(ctx context.Context) (transport.StopUnresponsiveResponse, error) {
	updated, err := s.repo.StopUnresponsiveCadence(ctx, s.now(), s.policy)
	s.log.CronSweep("stop_unresponsive", updated, err)
	if err != nil {
		return transport.StopUnresponsiveResponse{}, err
	}
	return transport.StopUnresponsiveResponse{Updated: updated}, nil
}
