package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ivanjorgee/maxconnect/internal/leads/domain"
)

const interactionColumns = `id, lead_id, kind, channel, occurred_at, description,
	direction, template_id, outcome, created_at`

func scanInteraction(row rowScanner) (domain.Interaction, error) {
	var interaction domain.Interaction
	var kind, channel string
	var direction, template, outcome *string

	err := row.Scan(
		&interaction.ID, &interaction.LeadID, &kind, &channel,
		&interaction.OccurredAt, &interaction.Description,
		&direction, &template, &outcome, &interaction.CreatedAt,
	)
	if err != nil {
		return domain.Interaction{}, err
	}

	interaction.Kind = domain.InteractionKind(kind)
	interaction.Channel = domain.Channel(channel)
	if direction != nil {
		d := domain.Direction(*direction)
		interaction.Direction = &d
	}
	if template != nil {
		id := domain.TemplateID(*template)
		interaction.TemplateID = &id
	}
	if outcome != nil {
		o := domain.Outcome(*outcome)
		interaction.Outcome = &o
	}
	return interaction, nil
}

func insertInteraction(ctx context.Context, tx executor, interaction domain.Interaction) (domain.Interaction, error) {
	var direction, outcome *string
	if interaction.Direction != nil {
		value := string(*interaction.Direction)
		direction = &value
	}
	if interaction.Outcome != nil {
		value := string(*interaction.Outcome)
		outcome = &value
	}

	row := tx.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO interactions (lead_id, kind, channel, occurred_at, description, direction, template_id, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, interactionColumns),
		interaction.LeadID, string(interaction.Kind), string(interaction.Channel),
		interaction.OccurredAt, interaction.Description,
		direction, templateString(interaction.TemplateID), outcome,
	)
	return scanInteraction(row)
}

// executor is satisfied by both *pgxpool.Pool and pgx.Tx.
type executor interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// InsertInteraction appends a manually logged interaction, outside any macro.
func (r *Repository) InsertInteraction(ctx context.Context, interaction domain.Interaction) (domain.Interaction, error) {
	return insertInteraction(ctx, r.pool, interaction)
}

// ListInteractions returns a lead's interactions newest first. limit <= 0
// means no limit.
func (r *Repository) ListInteractions(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Interaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM interactions
		WHERE lead_id = $1
		ORDER BY occurred_at DESC, created_at DESC
	`, interactionColumns)
	args := []any{leadID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Interaction, 0)
	for rows.Next() {
		interaction, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, interaction)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// LatestInteractions returns the most recent interaction of each given lead.
// Leads with no interactions are absent from the map.
func (r *Repository) LatestInteractions(ctx context.Context, leadIDs []uuid.UUID) (map[uuid.UUID]domain.Interaction, error) {
	if len(leadIDs) == 0 {
		return map[uuid.UUID]domain.Interaction{}, nil
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT DISTINCT ON (lead_id) %s
		FROM interactions
		WHERE lead_id = ANY($1)
		ORDER BY lead_id, occurred_at DESC, created_at DESC
	`, interactionColumns), leadIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	latest := make(map[uuid.UUID]domain.Interaction, len(leadIDs))
	for rows.Next() {
		interaction, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		latest[interaction.LeadID] = interaction
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return latest, nil
}
