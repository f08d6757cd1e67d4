package store

import (
	"context"
	"encoding/json"
	"time"
)

// AuditLog is one recorded administrative action.
type AuditLog struct {
	ID           string          `json:"id"`
	ActorKind    string          `json:"actor_kind"`
	ActorUserID  *string         `json:"actor_user_id,omitempty"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   *string         `json:"resource_id,omitempty"`
	Method       string          `json:"method"`
	Path         string          `json:"path"`
	Status       int32           `json:"status"`
	IP           *string         `json:"ip,omitempty"`
	RequestID    *string         `json:"request_id,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

const auditColumns = `id, actor_kind, actor_user_id, action, resource_type, resource_id,
	method, path, status, ip, request_id, metadata, created_at`

func scanAuditLog(row interface{ Scan(...any) error }) (AuditLog, error) {
	var a AuditLog
	err := row.Scan(&a.ID, &a.ActorKind, &a.ActorUserID, &a.Action, &a.ResourceType,
		&a.ResourceID, &a.Method, &a.Path, &a.Status, &a.IP, &a.RequestID,
		&a.Metadata, &a.CreatedAt)
	return a, err
}

// InsertAuditLogParams carries one audit entry.
type InsertAuditLogParams struct {
	ActorKind    string
	ActorUserID  *string
	Action       string
	ResourceType string
	ResourceID   *string
	Method       string
	Path         string
	Status       int32
	IP           *string
	RequestID    *string
	Metadata     []byte
}

// InsertAuditLog appends one audit entry.
func (s *Store) InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) (AuditLog, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO audit_logs (actor_kind, actor_user_id, action, resource_type, resource_id,
			method, path, status, ip, request_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+auditColumns,
		arg.ActorKind, arg.ActorUserID, arg.Action, arg.ResourceType, arg.ResourceID,
		arg.Method, arg.Path, arg.Status, arg.IP, arg.RequestID, arg.Metadata)
	return scanAuditLog(row)
}

// ListAuditLogs returns audit entries newest first.
func (s *Store) ListAuditLogs(ctx context.Context, limit, offset int32) ([]AuditLog, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+auditColumns+` FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []AuditLog
	for rows.Next() {
		a, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, a)
	}
	return logs, rows.Err()
}
