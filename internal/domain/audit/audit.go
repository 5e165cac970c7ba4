package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rrhh/internal/platform/querier"
	"rrhh/internal/requestctx"
)

const (
	ModulePayroll    = "payroll"
	ModuleAttendance = "attendance"
	ModuleLeave      = "leave"
	ModuleVacation   = "vacation"
	ModuleEmployees  = "employees"
	ModuleReports    = "reports"
)

// Entry is one line of the audit log. Actor and request ID are taken from
// the context when left empty.
type Entry struct {
	ActorID    string
	Action     string
	Module     string
	EntityType string
	EntityID   string
	RequestID  string
	Detail     any
}

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	Module     string          `json:"module"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	CreatedAt  time.Time       `json:"createdAt"`
	Detail     json.RawMessage `json:"detail,omitempty"`
}

type Filter struct {
	Action     string
	Module     string
	EntityType string
	ActorID    string
}

type Service struct {
	DB querier.Querier
}

func New(db querier.Querier) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, entry Entry) error {
	if entry.ActorID == "" {
		entry.ActorID = requestctx.GetActor(ctx)
	}
	if entry.RequestID == "" {
		entry.RequestID = requestctx.GetRequestID(ctx)
	}
	var detailJSON []byte
	if entry.Detail != nil {
		payload, err := json.Marshal(entry.Detail)
		if err != nil {
			return err
		}
		detailJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_id, action, module, entity_type, entity_id, detail_json, request_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, entry.ActorID, entry.Action, entry.Module, entry.EntityType, entry.EntityID, detailJSON, entry.RequestID)
	return err
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	query, args := buildQuery("SELECT id, actor_id, action, module, entity_type, entity_id, request_id, created_at, detail_json", filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.Module, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.CreatedAt, &evt.Detail); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE 1=1"
	var args []any
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.Module != "" {
		args = append(args, filter.Module)
		query += fmt.Sprintf(" AND module = $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		query += fmt.Sprintf(" AND actor_id = $%d", len(args))
	}
	return query, args
}
