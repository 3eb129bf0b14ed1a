// Package repository is the PostgreSQL persistence layer of the leads module.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivanjorgee/maxconnect/internal/leads/domain"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, name, city, address, phone, whatsapp, website, instagram,
	site_quality, lead_source, preferred_channel, notes,
	status, next_action, next_action_due_at,
	attempt_count, current_template, current_cadence_step,
	last_outbound_at, last_inbound_at, no_response_until,
	first_message_at, followup1_at, followup2_at, meeting_at, closed_at,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (domain.Lead, error) {
	var lead domain.Lead
	var status, channel string
	var nextAction, template, step *string

	err := row.Scan(
		&lead.ID, &lead.Name, &lead.City, &lead.Address, &lead.Phone, &lead.WhatsApp,
		&lead.Website, &lead.Instagram,
		&lead.SiteQuality, &lead.LeadSource, &channel, &lead.Notes,
		&status, &nextAction, &lead.NextActionDueAt,
		&lead.AttemptCount, &template, &step,
		&lead.LastOutboundAt, &lead.LastInboundAt, &lead.NoResponseUntil,
		&lead.FirstMessageAt, &lead.Followup1At, &lead.Followup2At, &lead.MeetingAt, &lead.ClosedAt,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}

	lead.Status = domain.Status(status)
	lead.PreferredChannel = domain.Channel(channel)
	if nextAction != nil && *nextAction != "" {
		action := domain.NextAction(*nextAction)
		lead.NextAction = &action
	}
	if template != nil {
		id := domain.TemplateID(*template)
		lead.CurrentTemplate = &id
	}
	if step != nil {
		s := domain.CadenceStep(*step)
		lead.CurrentCadenceStep = &s
	}
	return lead, nil
}

func actionString(action *domain.NextAction) *string {
	if action == nil {
		return nil
	}
	value := string(*action)
	return &value
}

func templateString(id *domain.TemplateID) *string {
	if id == nil {
		return nil
	}
	value := string(*id)
	return &value
}

func stepString(step *domain.CadenceStep) *string {
	if step == nil {
		return nil
	}
	value := string(*step)
	return &value
}

type CreateLeadParams struct {
	Name             string
	City             string
	Address          string
	Phone            string
	WhatsApp         string
	Website          string
	Instagram        string
	SiteQuality      string
	LeadSource       string
	PreferredChannel domain.Channel
	Notes            string
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO leads (
			name, city, address, phone, whatsapp, website, instagram,
			site_quality, lead_source, preferred_channel, notes, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s
	`, leadColumns),
		params.Name, params.City, params.Address, params.Phone, params.WhatsApp,
		params.Website, params.Instagram,
		params.SiteQuality, params.LeadSource, string(params.PreferredChannel), params.Notes,
		string(domain.StatusNew),
	)
	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM leads WHERE id = $1`, leadColumns), id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

type UpdateLeadParams struct {
	Name        *string
	City        *string
	Address     *string
	Phone       *string
	WhatsApp    *string
	Website     *string
	Instagram   *string
	SiteQuality *string
	LeadSource  *string
	Channel     *domain.Channel
	Notes       *string

	// Manual funnel-state corrections. An empty NextAction clears the
	// recommendation and, unless a due time is also given, its due date.
	Status          *domain.Status
	NextAction      *string
	NextActionDueAt *time.Time
	MeetingAt       *time.Time
	FirstMessageAt  *time.Time
	Followup1At     *time.Time
	Followup2At     *time.Time
	ClosedAt        *time.Time
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (domain.Lead, error) {
	setClauses := []string{}
	args := []any{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   any
	}{
		{params.Name != nil, "name", derefString(params.Name)},
		{params.City != nil, "city", derefString(params.City)},
		{params.Address != nil, "address", derefString(params.Address)},
		{params.Phone != nil, "phone", derefString(params.Phone)},
		{params.WhatsApp != nil, "whatsapp", derefString(params.WhatsApp)},
		{params.Website != nil, "website", derefString(params.Website)},
		{params.Instagram != nil, "instagram", derefString(params.Instagram)},
		{params.SiteQuality != nil, "site_quality", derefString(params.SiteQuality)},
		{params.LeadSource != nil, "lead_source", derefString(params.LeadSource)},
		{params.Channel != nil, "preferred_channel", derefChannel(params.Channel)},
		{params.Notes != nil, "notes", derefString(params.Notes)},
		{params.Status != nil, "status", derefStatus(params.Status)},
		{params.NextAction != nil, "next_action", nullableString(params.NextAction)},
		{params.NextActionDueAt != nil, "next_action_due_at", derefTime(params.NextActionDueAt)},
		{clearsNextAction(params), "next_action_due_at", nil},
		{params.MeetingAt != nil, "meeting_at", derefTime(params.MeetingAt)},
		{params.FirstMessageAt != nil, "first_message_at", derefTime(params.FirstMessageAt)},
		{params.Followup1At != nil, "followup1_at", derefTime(params.Followup1At)},
		{params.Followup2At != nil, "followup2_at", derefTime(params.Followup2At)},
		{params.ClosedAt != nil, "closed_at", derefTime(params.ClosedAt)},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argIdx, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func clearsNextAction(params UpdateLeadParams) bool {
	return params.NextAction != nil && *params.NextAction == "" && params.NextActionDueAt == nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefStatus(value *domain.Status) string {
	if value == nil {
		return ""
	}
	return string(*value)
}

// nullableString maps an empty override to SQL NULL so cleared fields
// satisfy the sweep guards the same way never-set ones do.
func nullableString(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

func derefTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}

func derefChannel(value *domain.Channel) string {
	if value == nil {
		return ""
	}
	return string(*value)
}

type ListParams struct {
	Status     *domain.Status
	Search     string
	City       *string
	LeadSource *string
	DueBefore  *time.Time
	Offset     int
	Limit      int
	SortBy     string
	SortOrder  string
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn := mapLeadSortColumn(params.SortBy)
	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leads
		WHERE %s
		ORDER BY %s %s NULLS LAST
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

func buildLeadListWhere(params ListParams) (string, []any, int) {
	whereClauses := []string{"true"}
	args := []any{}
	argIdx := 1

	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(*params.Status))
		argIdx++
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(name ILIKE $%d OR city ILIKE $%d OR phone ILIKE $%d OR instagram ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, pattern)
		argIdx++
	}
	if params.City != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("city ILIKE $%d", argIdx))
		args = append(args, "%"+*params.City+"%")
		argIdx++
	}
	if params.LeadSource != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("lead_source = $%d", argIdx))
		args = append(args, *params.LeadSource)
		argIdx++
	}
	if params.DueBefore != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("next_action IS NOT NULL AND next_action_due_at <= $%d", argIdx))
		args = append(args, *params.DueBefore)
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func mapLeadSortColumn(sortBy string) string {
	switch sortBy {
	case "name":
		return "name"
	case "city":
		return "city"
	case "status":
		return "status"
	case "nextActionDueAt":
		return "next_action_due_at"
	case "lastOutboundAt":
		return "last_outbound_at"
	default:
		return "created_at"
	}
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM leads WHERE id = $1", id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
