package events

// Topic constants for domain events emitted by the platform.
const (
	TopicOrderCreated   = "order.created"
	TopicOrderAssigned  = "order.assigned"
	TopicOrderInTransit = "order.in_transit"
	TopicOrderCompleted = "order.completed"
	TopicOrderCancelled = "order.cancelled"
	TopicLedgerAccrued  = "ledger.accrued"
	TopicLedgerSettled  = "ledger.settled"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicOrderAssigned,
		TopicOrderInTransit,
		TopicOrderCompleted,
		TopicOrderCancelled,
		TopicLedgerAccrued,
		TopicLedgerSettled,
	}
}
