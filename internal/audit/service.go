package audit

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ngocvh/backend-cho/internal/common"
	"github.com/ngocvh/backend-cho/internal/obs"
	"github.com/ngocvh/backend-cho/internal/store"
)

// ActorKind identifies the source of an audited action.
type ActorKind string

const (
	ActorKindUser      ActorKind = "user"
	ActorKindSystem    ActorKind = "system"
	ActorKindAnonymous ActorKind = "anonymous"
)

// Actor describes who performed the action.
type Actor struct {
	Kind   ActorKind
	UserID *string
}

// Store defines the persistence required for auditing.
type Store interface {
	InsertAuditLog(ctx context.Context, arg store.InsertAuditLogParams) (store.AuditLog, error)
	ListAuditLogs(ctx context.Context, limit, offset int32) ([]store.AuditLog, error)
}

// Service records administrative actions. Entries are written after the
// handler runs and never block the response.
type Service struct {
	Store   Store
	Enabled bool
}

// Record persists one audit entry.
func (s Service) Record(ctx context.Context, actor Actor, action, resourceType, resourceID string, req *http.Request, status int, metadata []byte) error {
	if !s.Enabled {
		return nil
	}
	if req == nil {
		return errors.New("audit: request is required")
	}
	if s.Store == nil {
		return errors.New("audit: store not configured")
	}

	route := obs.RoutePatternFromContext(req.Context())
	if route == "" {
		route = strings.TrimSpace(req.URL.Path)
	}
	if status == 0 {
		status = http.StatusOK
	}

	_, err := s.Store.InsertAuditLog(ctx, store.InsertAuditLogParams{
		ActorKind:    string(normalizeActorKind(actor.Kind)),
		ActorUserID:  trimmed(actor.UserID),
		Action:       buildAction(action, req.Method, route),
		ResourceType: buildResource(resourceType, route),
		ResourceID:   trimmed(&resourceID),
		Method:       req.Method,
		Path:         req.URL.Path,
		Status:       int32(status),
		IP:           trimmed(pointerOf(common.ClientIP(req))),
		RequestID:    trimmed(pointerOf(req.Header.Get("X-Request-ID"))),
		Metadata:     metadata,
	})
	return err
}

func buildAction(action, method, route string) string {
	if t := strings.TrimSpace(action); t != "" {
		return t
	}
	if route == "" {
		route = "/"
	}
	return strings.ToUpper(method) + " " + route
}

func buildResource(resourceType, route string) string {
	if t := strings.TrimSpace(resourceType); t != "" {
		return t
	}
	route = strings.Trim(route, "/ ")
	if route == "" {
		return "unknown"
	}
	segments := strings.Split(route, "/")
	if len(segments) >= 3 && segments[0] == "api" && segments[1] == "v1" {
		return strings.Join(segments[2:], ".")
	}
	return strings.ReplaceAll(route, "/", ".")
}

func normalizeActorKind(kind ActorKind) ActorKind {
	switch kind {
	case ActorKindUser, ActorKindSystem:
		return kind
	default:
		return ActorKindAnonymous
	}
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	t := strings.TrimSpace(*value)
	if t == "" {
		return nil
	}
	return &t
}

func pointerOf(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
