package repository

import (
	"context"
	"time"

	"github.com/ivanjorgee/maxconnect/internal/leads/domain"
)

// Batch cadence statements used by the follow-up sweep. Each is a single
// guarded UPDATE so re-runs are idempotent: rows already carrying a next
// action, or sitting inside a cooldown, never match twice.

// ReclassifyLongFollowups repairs rows written by an older cadence revision
// that left leads in conversation with a long-follow-up action.
func (r *Repository) ReclassifyLongFollowups(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $1, updated_at = now()
		WHERE status = $2 AND next_action = $3
	`,
		string(domain.StatusLongFollowup),
		string(domain.StatusInConversation),
		string(domain.ActionFollowUpLong),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// ScheduleFollowup1ForToday schedules follow-up 1 for tomorrow 09:00 local on
// leads whose opening message went out today and that have no next action.
func (r *Repository) ScheduleFollowup1ForToday(ctx context.Context, now time.Time) (int64, error) {
	dayStart := domain.StartOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)
	dueAt := dayStart.AddDate(0, 0, 1).Add(9 * time.Hour)

	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET next_action = $1, next_action_due_at = $2, updated_at = now()
		WHERE status = $3
		  AND (next_action IS NULL OR next_action = '')
		  AND (no_response_until IS NULL OR no_response_until <= $4)
		  AND EXISTS (
			SELECT 1 FROM interactions i
			WHERE i.lead_id = leads.id AND i.kind = $5
			  AND i.occurred_at >= $6 AND i.occurred_at < $7
		  )
	`,
		string(domain.ActionFollowUp1), dueAt,
		string(domain.StatusMessage1Sent),
		now,
		string(domain.KindMessage1), dayStart, dayEnd,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// ScheduleOverdueFollowup1 marks follow-up 1 as due now on leads whose
// opening message is at least 24h old and that still have no next action.
func (r *Repository) ScheduleOverdueFollowup1(ctx context.Context, now time.Time) (int64, error) {
	limit := now.Add(-domain.FollowupWindow)

	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET next_action = $1, next_action_due_at = $2, updated_at = now()
		WHERE status = $3
		  AND (next_action IS NULL OR next_action = '')
		  AND (no_response_until IS NULL OR no_response_until <= $2)
		  AND (
			first_message_at <= $4
			OR EXISTS (
				SELECT 1 FROM interactions i
				WHERE i.lead_id = leads.id AND i.kind = $5 AND i.occurred_at <= $4
			)
		  )
	`,
		string(domain.ActionFollowUp1), now,
		string(domain.StatusMessage1Sent),
		limit,
		string(domain.KindMessage1),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// MarkConversationFollowupsPending marks a conversation follow-up as due now
// on stalled conversations: no meeting, no next action, and no interaction of
// any kind in the last 24h.
func (r *Repository) MarkConversationFollowupsPending(ctx context.Context, now time.Time) (int64, error) {
	limit := now.Add(-domain.FollowupWindow)

	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET next_action = $1, next_action_due_at = $2, updated_at = now()
		WHERE status = $3
		  AND meeting_at IS NULL
		  AND (next_action IS NULL OR next_action = '')
		  AND (no_response_until IS NULL OR no_response_until <= $2)
		  AND EXISTS (
			SELECT 1 FROM interactions i
			WHERE i.lead_id = leads.id AND i.occurred_at <= $4
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM interactions i
			WHERE i.lead_id = leads.id AND i.occurred_at > $4
		  )
	`,
		string(domain.ActionFollowUpConversation), now,
		string(domain.StatusInConversation),
		limit,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// StopUnresponsiveCadence suspends leads that exhausted the attempt budget
// without ever replying, opening a no-response cooldown window. Closed, lost
// and already suspended leads are left alone.
func (r *Repository) StopUnresponsiveCadence(ctx context.Context, now time.Time, policy domain.CadencePolicy) (int64, error) {
	until := domain.StartOfDay(now).AddDate(0, 0, policy.NoResponseDays)

	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			status = $1,
			no_response_until = $2,
			next_action = NULL,
			next_action_due_at = NULL,
			updated_at = now()
		WHERE attempt_count >= $3
		  AND last_inbound_at IS NULL
		  AND status NOT IN ($4, $5, $6)
	`,
		string(domain.StatusSuspendedNoResponse), until,
		policy.MaxAttempts,
		string(domain.StatusClosed), string(domain.StatusLost), string(domain.StatusSuspendedNoResponse),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
