package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ivanjorgee/maxconnect/internal/leads/domain"
)

// ApplyTransition persists a computed macro transition: the full funnel-state
// update and the interaction row, in one transaction. Either both land or
// neither does.
func (r *Repository) ApplyTransition(ctx context.Context, tr domain.Transition) (domain.Lead, domain.Interaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Lead{}, domain.Interaction{}, err
	}
	defer tx.Rollback(ctx)

	updated := tr.Updated
	row := tx.QueryRow(ctx, fmt.Sprintf(`
		UPDATE leads SET
			status = $2,
			next_action = $3,
			next_action_due_at = $4,
			attempt_count = $5,
			current_template = $6,
			current_cadence_step = $7,
			last_outbound_at = $8,
			last_inbound_at = $9,
			no_response_until = $10,
			first_message_at = $11,
			followup1_at = $12,
			followup2_at = $13,
			meeting_at = $14,
			closed_at = $15,
			updated_at = now()
		WHERE id = $1
		RETURNING %s
	`, leadColumns),
		updated.ID,
		string(updated.Status),
		actionString(updated.NextAction),
		updated.NextActionDueAt,
		updated.AttemptCount,
		templateString(updated.CurrentTemplate),
		stepString(updated.CurrentCadenceStep),
		updated.LastOutboundAt,
		updated.LastInboundAt,
		updated.NoResponseUntil,
		updated.FirstMessageAt,
		updated.Followup1At,
		updated.Followup2At,
		updated.MeetingAt,
		updated.ClosedAt,
	)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, domain.Interaction{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, domain.Interaction{}, err
	}

	interaction, err := insertInteraction(ctx, tx, tr.Interaction)
	if err != nil {
		return domain.Lead{}, domain.Interaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Lead{}, domain.Interaction{}, err
	}

	return lead, interaction, nil
}
