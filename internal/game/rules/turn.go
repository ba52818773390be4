package rules

import "fmt"

// Phase represents the phases of a deck-building turn.
type Phase int

const (
	PhaseAction Phase = iota
	PhaseBuy
	PhaseCleanup
)

var phaseNames = map[Phase]string{
	PhaseAction:  "ACTION",
	PhaseBuy:     "BUY",
	PhaseCleanup: "CLEANUP",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// turnSequence is the fixed phase structure of a single player's turn.
var turnSequence = []Phase{PhaseAction, PhaseBuy, PhaseCleanup}

// TurnManager tracks the active player, the current phase, and turn
// progression. It holds no card state and performs no legality checks;
// guards (actions remaining, buys remaining) live in the engine.
type TurnManager struct {
	order       []string
	activeIndex int
	phaseIndex  int
	turnNumber  int
}

// NewTurnManager creates a turn manager initialized at turn 1 with the
// first player in ACTION phase. The player order is fixed for the life
// of the session.
func NewTurnManager(order []string) *TurnManager {
	players := make([]string, len(order))
	copy(players, order)
	return &TurnManager{
		order:      players,
		turnNumber: 1,
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return turnSequence[tm.phaseIndex]
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActivePlayer returns the player who currently has the turn.
func (tm *TurnManager) ActivePlayer() string {
	return tm.order[tm.activeIndex]
}

// ActiveIndex returns the index of the active player in the join order.
func (tm *TurnManager) ActiveIndex() int {
	return tm.activeIndex
}

// PlayerOrder returns a copy of the fixed player order.
func (tm *TurnManager) PlayerOrder() []string {
	players := make([]string, len(tm.order))
	copy(players, tm.order)
	return players
}

// AdvancePhase moves to the next phase of the current turn. Advancing
// past CLEANUP is a no-op; the engine ends the turn via EndTurn after
// running the cleanup step.
func (tm *TurnManager) AdvancePhase() Phase {
	if tm.phaseIndex < len(turnSequence)-1 {
		tm.phaseIndex++
	}
	return tm.CurrentPhase()
}

// EndTurn rotates the turn to the next player and resets the phase to
// ACTION. The turn number increments when the active index wraps back
// to 0, so a single-player session increments every turn. Returns the
// new active player and turn number.
func (tm *TurnManager) EndTurn() (string, int) {
	tm.phaseIndex = 0
	tm.activeIndex++
	if tm.activeIndex >= len(tm.order) {
		tm.activeIndex = 0
		tm.turnNumber++
	}
	return tm.order[tm.activeIndex], tm.turnNumber
}
