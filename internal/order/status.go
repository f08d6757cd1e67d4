package order

import (
	"fmt"
	"strings"
)

// Status is the order lifecycle state. The set is closed and every change
// is checked against the transition table at the write boundary.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusInTransit Status = "in_transit"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var validStatuses = []Status{StatusPending, StatusAssigned, StatusInTransit, StatusCompleted, StatusCancelled}

// transitions lists which states each state may move to.
var transitions = map[Status][]Status{
	StatusPending:   {StatusAssigned, StatusCancelled},
	StatusAssigned:  {StatusInTransit, StatusCompleted, StatusCancelled},
	StatusInTransit: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// String returns the wire label of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether the value is a known status.
func (s Status) IsValid() bool {
	for _, candidate := range validStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether an order may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseStatus converts raw input into a Status. Legacy labels used by older
// mobile clients are mapped onto the closed set.
func ParseStatus(value string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "processing", "confirmed":
		return StatusAssigned, nil
	case "shipping":
		return StatusInTransit, nil
	}
	s := Status(normalized)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid order status %q", value)
	}
	return s, nil
}
