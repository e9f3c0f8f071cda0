package ride

import "testing"

func TestStatusTransitions(t *testing.T) {
	all := []Status{
		StatusSearching, StatusAccepted, StatusDriverArriving,
		StatusArrived, StatusInProgress, StatusCompleted, StatusCancelled,
	}

	allowed := map[Status][]Status{
		StatusSearching:      {StatusAccepted, StatusCancelled},
		StatusAccepted:       {StatusDriverArriving, StatusCancelled},
		StatusDriverArriving: {StatusInProgress, StatusCancelled},
		StatusInProgress:     {StatusCompleted, StatusCancelled},
		StatusArrived:        {},
		StatusCompleted:      {},
		StatusCancelled:      {},
	}

	for from, nexts := range allowed {
		ok := map[Status]bool{}
		for _, n := range nexts {
			ok[n] = true
		}
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != ok[to] {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, ok[to])
			}
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Error("completed and cancelled must be terminal")
	}
	for _, s := range []Status{StatusSearching, StatusAccepted, StatusDriverArriving, StatusInProgress} {
		if s.Terminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestStatusActiveSets(t *testing.T) {
	if !StatusSearching.Active() {
		t.Error("searching counts as active for riders")
	}
	if StatusSearching.ActiveForDriver() {
		t.Error("searching has no driver, must not count for drivers")
	}
	for _, s := range []Status{StatusAccepted, StatusDriverArriving, StatusInProgress} {
		if !s.Active() || !s.ActiveForDriver() {
			t.Errorf("%s must count as active for both parties", s)
		}
	}
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		if s.Active() || s.ActiveForDriver() {
			t.Errorf("%s must not count as active", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus("  In_Progress "); err != nil || s != StatusInProgress {
		t.Errorf("ParseStatus normalization failed: %v %v", s, err)
	}
	if _, err := ParseStatus("teleporting"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestPassengerStatusTransitions(t *testing.T) {
	if !PassengerWaiting.CanTransitionTo(PassengerPickedUp) {
		t.Error("waiting -> picked_up must be allowed")
	}
	if !PassengerPickedUp.CanTransitionTo(PassengerDroppedOff) {
		t.Error("picked_up -> dropped_off must be allowed")
	}
	if PassengerWaiting.CanTransitionTo(PassengerDroppedOff) {
		t.Error("waiting must not skip to dropped_off")
	}
	if PassengerDroppedOff.CanTransitionTo(PassengerPickedUp) {
		t.Error("dropped_off is final")
	}
}
