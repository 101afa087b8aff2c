package pgx

import (
	"context"

	"github.com/nvraman/suraksha/core"
)

// collectionFor maps an incident kind to its live-view collection key.
func collectionFor(kind core.IncidentKind) string {
	if kind == core.KindHelpRequest {
		return core.CollectionHelpRequests
	}
	return core.CollectionSOSAlerts
}

func (a *Adapter) CreateIncident(ctx context.Context, rec *core.IncidentRecord) error {
	query := `INSERT INTO public.incidents (submitter_id, submitter_name, contact_info, lat, lng, status, severity, kind)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, submitted_at`

	var lat, lng *float64
	if rec.Location != nil {
		lat, lng = &rec.Location.Lat, &rec.Location.Lng
	}

	err := a.pool.QueryRow(ctx, query,
		rec.SubmitterID, rec.SubmitterName, rec.ContactInfo, lat, lng, rec.Status, rec.Severity, rec.Kind,
	).Scan(&rec.ID, &rec.SubmittedAt)

	if err != nil {
		return mapError(err, nil)
	}

	a.notifyChange(ctx, collectionFor(rec.Kind))
	return nil
}

func (a *Adapter) ListIncidents(ctx context.Context, kind core.IncidentKind) ([]*core.IncidentRecord, error) {
	query := `SELECT id, submitter_id, submitter_name, contact_info, lat, lng, submitted_at, status, severity, kind
	          FROM public.incidents WHERE kind = $1
	          ORDER BY submitted_at DESC`

	rows, err := a.pool.Query(ctx, query, kind)
	if err != nil {
		return nil, mapError(err, nil)
	}
	defer rows.Close()

	var incidents []*core.IncidentRecord
	for rows.Next() {
		rec := &core.IncidentRecord{}
		var lat, lng *float64
		err := rows.Scan(
			&rec.ID, &rec.SubmitterID, &rec.SubmitterName, &rec.ContactInfo, &lat, &lng, &rec.SubmittedAt, &rec.Status, &rec.Severity, &rec.Kind,
		)
		if err != nil {
			return nil, err
		}
		if lat != nil && lng != nil {
			rec.Location = &core.Location{Lat: *lat, Lng: *lng}
		}
		incidents = append(incidents, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, mapError(err, nil)
	}

	return incidents, nil
}

func (a *Adapter) UpdateIncidentStatus(ctx context.Context, id string, status core.IncidentStatus) error {
	query := `UPDATE public.incidents SET status = $2 WHERE id = $1`

	tag, err := a.pool.Exec(ctx, query, id, status)
	if err != nil {
		return mapError(err, nil)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrIncidentNotFound
	}

	var kind core.IncidentKind
	if err := a.pool.QueryRow(ctx, `SELECT kind FROM public.incidents WHERE id = $1`, id).Scan(&kind); err == nil {
		a.notifyChange(ctx, collectionFor(kind))
	}
	return nil
}
