package rules

import "testing"

func TestTurnManagerInitialState(t *testing.T) {
	tm := NewTurnManager([]string{"alice", "bob"})

	if tm.CurrentPhase() != PhaseAction {
		t.Fatalf("expected initial phase ACTION, got %s", tm.CurrentPhase())
	}
	if tm.TurnNumber() != 1 {
		t.Fatalf("expected turn 1, got %d", tm.TurnNumber())
	}
	if tm.ActivePlayer() != "alice" {
		t.Fatalf("expected alice active, got %s", tm.ActivePlayer())
	}
}

func TestTurnManagerPhaseSequence(t *testing.T) {
	tm := NewTurnManager([]string{"alice"})

	if phase := tm.AdvancePhase(); phase != PhaseBuy {
		t.Fatalf("expected BUY after ACTION, got %s", phase)
	}
	if phase := tm.AdvancePhase(); phase != PhaseCleanup {
		t.Fatalf("expected CLEANUP after BUY, got %s", phase)
	}
	// Advancing past CLEANUP stays put; only EndTurn resets the phase.
	if phase := tm.AdvancePhase(); phase != PhaseCleanup {
		t.Fatalf("expected CLEANUP to be terminal within a turn, got %s", phase)
	}
}

func TestTurnManagerEndTurnRotates(t *testing.T) {
	tm := NewTurnManager([]string{"alice", "bob"})
	tm.AdvancePhase()
	tm.AdvancePhase()

	next, turn := tm.EndTurn()
	if next != "bob" {
		t.Fatalf("expected bob after alice, got %s", next)
	}
	if turn != 1 {
		t.Fatalf("expected to remain on turn 1 mid-round, got %d", turn)
	}
	if tm.CurrentPhase() != PhaseAction {
		t.Fatalf("expected new turn to start in ACTION, got %s", tm.CurrentPhase())
	}

	next, turn = tm.EndTurn()
	if next != "alice" {
		t.Fatalf("expected wrap back to alice, got %s", next)
	}
	if turn != 2 {
		t.Fatalf("expected turn 2 after wrap to index 0, got %d", turn)
	}
}

func TestTurnManagerSinglePlayerWrap(t *testing.T) {
	tm := NewTurnManager([]string{"solo"})

	next, turn := tm.EndTurn()
	if next != "solo" {
		t.Fatalf("expected solo to keep the turn, got %s", next)
	}
	if turn != 2 {
		t.Fatalf("expected turn 2 immediately after a single-player turn, got %d", turn)
	}
}
