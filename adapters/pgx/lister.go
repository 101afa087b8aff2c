package pgx

import (
	"context"
	"fmt"

	"github.com/nvraman/suraksha/core"
)

// ListCollection reads the full current membership of a live-view
// collection. Snapshot sources call this on every change signal, so each
// emission reflects the authoritative store rather than an applied diff.
func (a *Adapter) ListCollection(ctx context.Context, collection string) ([]core.Document, error) {
	switch collection {
	case core.CollectionSOSAlerts:
		return a.listIncidentDocs(ctx, core.KindSOS)
	case core.CollectionHelpRequests:
		return a.listIncidentDocs(ctx, core.KindHelpRequest)
	case core.CollectionUsers:
		return a.listProfileDocs(ctx)
	}
	return nil, fmt.Errorf("unknown collection %q", collection)
}

func (a *Adapter) listIncidentDocs(ctx context.Context, kind core.IncidentKind) ([]core.Document, error) {
	incidents, err := a.ListIncidents(ctx, kind)
	if err != nil {
		return nil, err
	}

	docs := make([]core.Document, 0, len(incidents))
	for _, rec := range incidents {
		fields := map[string]any{
			"submitterId":   rec.SubmitterID,
			"submitterName": rec.SubmitterName,
			"contactInfo":   rec.ContactInfo,
			"submittedAt":   rec.SubmittedAt,
			"status":        string(rec.Status),
			"severity":      string(rec.Severity),
			"kind":          string(rec.Kind),
		}
		if rec.Location != nil {
			fields["location"] = map[string]any{"lat": rec.Location.Lat, "lng": rec.Location.Lng}
		}
		docs = append(docs, core.Document{ID: rec.ID, Fields: fields})
	}
	return docs, nil
}

func (a *Adapter) listProfileDocs(ctx context.Context) ([]core.Document, error) {
	query := `SELECT id, email, display_name, role, created_at
	          FROM public.profiles ORDER BY created_at`

	rows, err := a.pool.Query(ctx, query)
	if err != nil {
		return nil, mapError(err, nil)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		p := core.UserProfile{}
		if err := rows.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Role, &p.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, core.Document{ID: p.ID, Fields: map[string]any{
			"email":       p.Email,
			"displayName": p.DisplayName,
			"role":        string(p.Role),
			"createdAt":   p.CreatedAt,
		}})
	}

	if err = rows.Err(); err != nil {
		return nil, mapError(err, nil)
	}

	return docs, nil
}
