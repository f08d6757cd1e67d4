package order

import "testing"

func TestTransitionTable(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusAssigned},
		{StatusPending, StatusCancelled},
		{StatusAssigned, StatusInTransit},
		{StatusAssigned, StatusCompleted},
		{StatusAssigned, StatusCancelled},
		{StatusInTransit, StatusCompleted},
		{StatusInTransit, StatusCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to Status }{
		{StatusPending, StatusInTransit},
		{StatusPending, StatusCompleted},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusInTransit, StatusAssigned},
		{StatusAssigned, StatusPending},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransition(tc.to) {
			t.Fatalf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Fatal("completed and cancelled must be terminal")
	}
	if StatusPending.Terminal() || StatusAssigned.Terminal() {
		t.Fatal("pending and assigned must not be terminal")
	}
}

func TestParseStatusLegacyLabels(t *testing.T) {
	cases := map[string]Status{
		"pending":    StatusPending,
		"Processing": StatusAssigned,
		"confirmed":  StatusAssigned,
		"shipping":   StatusInTransit,
		"completed":  StatusCompleted,
		"CANCELLED":  StatusCancelled,
	}
	for raw, want := range cases {
		got, err := ParseStatus(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", raw, want, got)
		}
	}
	if _, err := ParseStatus("unknown"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}
