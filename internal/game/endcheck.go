package game

import "time"

// EndReason identifies which trigger ended a session.
type EndReason string

const (
	EndReasonEmptyPiles EndReason = "EMPTY_PILES"
	EndReasonMaxTurns   EndReason = "MAX_TURNS"
	EndReasonTimeLimit  EndReason = "TIME_LIMIT"
)

// EndCheckResult reports the outcome of an end-condition evaluation.
// Reason is the first satisfied trigger in priority order; Satisfied
// lists every trigger that held at evaluation time, for transparency.
type EndCheckResult struct {
	IsGameEnd bool
	Reason    EndReason
	Satisfied []EndReason
}

// evaluateEndConditions checks the three termination triggers in fixed
// priority order: empty piles (including the top-tier victory pile),
// turn cap, wall-clock limit. Callers hold the room lock.
func evaluateEndConditions(s *gameSession, now time.Time) EndCheckResult {
	var satisfied []EndReason

	if emptyPilesTriggered(s) {
		satisfied = append(satisfied, EndReasonEmptyPiles)
	}
	if s.settings.MaxTurns > 0 && s.turns.TurnNumber() >= s.settings.MaxTurns {
		satisfied = append(satisfied, EndReasonMaxTurns)
	}
	if s.settings.TimeLimit > 0 && now.Sub(s.startTime) >= s.settings.TimeLimit {
		satisfied = append(satisfied, EndReasonTimeLimit)
	}

	if len(satisfied) == 0 {
		return EndCheckResult{}
	}
	return EndCheckResult{
		IsGameEnd: true,
		Reason:    satisfied[0],
		Satisfied: satisfied,
	}
}

// emptyPilesTriggered reports whether enough non-infinite piles are
// exhausted, or the top-tier victory pile is gone. Infinite piles never
// count toward the threshold.
func emptyPilesTriggered(s *gameSession) bool {
	if topTierVictoryEmpty(s) {
		return true
	}
	empty := 0
	for _, pile := range s.supply {
		if !pile.infinite && pile.remaining == 0 {
			empty++
		}
	}
	return s.settings.EmptyPilesThreshold > 0 && empty >= s.settings.EmptyPilesThreshold
}

// topTierVictoryEmpty reports whether the most expensive finite victory
// pile has been bought out. Sessions without a finite victory pile have
// no top-tier trigger.
func topTierVictoryEmpty(s *gameSession) bool {
	var top *supplyPile
	for _, pile := range s.supply {
		if pile.infinite || pile.card.Type != TypeVictory {
			continue
		}
		if top == nil || pile.card.Cost > top.card.Cost {
			top = pile
		}
	}
	return top != nil && top.remaining == 0
}
