package store

import (
	"context"
	"encoding/json"
)

// InsertDomainEvent persists a platform event for later inspection.
func (s *Store) InsertDomainEvent(ctx context.Context, topic, aggregateID string, payload json.RawMessage) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO domain_events (topic, aggregate_id, payload)
		VALUES ($1, $2, $3)`,
		topic, aggregateID, payload)
	return err
}

// ListDomainEvents returns recent events for a topic, newest first.
func (s *Store) ListDomainEvents(ctx context.Context, topic string, limit, offset int32) ([]DomainEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, topic, aggregate_id, payload, occurred_at
		FROM domain_events
		WHERE topic = $1
		ORDER BY occurred_at DESC
		LIMIT $2 OFFSET $3`, topic, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []DomainEvent
	for rows.Next() {
		var e DomainEvent
		if err := rows.Scan(&e.ID, &e.Topic, &e.AggregateID, &e.Payload, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
