// Package dashboard aggregates funnel statistics behind a short-lived cache.
package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivanjorgee/maxconnect/internal/leads/domain"
)

// TemplateStats is the per-template outbound/reply breakdown backing the A/B
// comparison.
type TemplateStats struct {
	TemplateID string  `json:"templateId"`
	Sent       int     `json:"sent"`
	Replies    int     `json:"replies"`
	ReplyRate  float64 `json:"replyRate"`
}

// Stats is the dashboard aggregate.
type Stats struct {
	StatusCounts      map[string]int  `json:"statusCounts"`
	TotalLeads        int             `json:"totalLeads"`
	Message1SentToday int             `json:"message1SentToday"`
	RepliesTotal      int             `json:"repliesTotal"`
	Templates         []TemplateStats `json:"templates"`
	GeneratedAt       time.Time       `json:"generatedAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Collect(ctx context.Context, now time.Time) (Stats, error) {
	stats := Stats{
		StatusCounts: make(map[string]int),
		GeneratedAt:  now,
	}

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM leads GROUP BY status
	`)
	if err != nil {
		return Stats{}, err
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return Stats{}, err
		}
		stats.StatusCounts[status] = count
		stats.TotalLeads += count
	}
	rows.Close()
	if rows.Err() != nil {
		return Stats{}, rows.Err()
	}

	dayStart := domain.StartOfDay(now)
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM interactions
		WHERE kind = $1 AND occurred_at >= $2 AND occurred_at < $3
	`, string(domain.KindMessage1), dayStart, dayStart.AddDate(0, 0, 1)).Scan(&stats.Message1SentToday)
	if err != nil {
		return Stats{}, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM interactions WHERE outcome = $1
	`, string(domain.OutcomeReplied)).Scan(&stats.RepliesTotal)
	if err != nil {
		return Stats{}, err
	}

	// Replies are attributed to the template active when the lead answered,
	// so an inbound row's template credits that variant.
	rows, err = r.pool.Query(ctx, `
		SELECT template_id,
			COUNT(*) FILTER (WHERE direction = $1) AS sent,
			COUNT(*) FILTER (WHERE direction = $2) AS replies
		FROM interactions
		WHERE template_id IS NOT NULL
		GROUP BY template_id
		ORDER BY template_id
	`, string(domain.DirectionOutbound), string(domain.DirectionInbound))
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item TemplateStats
		if err := rows.Scan(&item.TemplateID, &item.Sent, &item.Replies); err != nil {
			return Stats{}, err
		}
		if item.Sent > 0 {
			item.ReplyRate = float64(item.Replies) / float64(item.Sent)
		}
		stats.Templates = append(stats.Templates, item)
	}
	if rows.Err() != nil {
		return Stats{}, rows.Err()
	}

	return stats, nil
}
