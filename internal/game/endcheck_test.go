package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func endcheckRoom(t *testing.T, settings Settings) (*Engine, *gameSession, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	e := newTestEngine(t, settings, WithClock(clock.Now))
	defs := []CardDefinition{
		{ID: "moat", Name: "Moat", Cost: 2, Type: TypeAction, Supply: 10,
			Effects: []EffectSpec{{Kind: EffectKindDraw, Value: 2}}},
	}
	s := initRoom(t, e, "room-1", defs, "alice", "bob")
	return e, s, clock
}

func TestNoEndConditionsAtStart(t *testing.T) {
	e, _, _ := endcheckRoom(t, DefaultSettings())

	result, err := e.CheckEndConditions("room-1")
	require.NoError(t, err)
	assert.False(t, result.IsGameEnd)
	assert.Empty(t, result.Satisfied)
}

func TestInfinitePilesNeverCountAsEmpty(t *testing.T) {
	_, s, _ := endcheckRoom(t, DefaultSettings())

	// Infinite piles carry no stock at all; they still must not trip
	// the empty-pile threshold.
	for _, id := range []string{CardCopper, CardSilver, CardGold, CardEstate} {
		require.True(t, s.supply[id].infinite)
		require.Equal(t, 0, s.supply[id].remaining)
	}

	result := evaluateEndConditions(s, s.startTime)
	assert.False(t, result.IsGameEnd)
}

func TestEmptyPileThreshold(t *testing.T) {
	_, s, _ := endcheckRoom(t, DefaultSettings())

	s.supply[CardDuchy].remaining = 0
	s.supply[CardCurse].remaining = 0
	result := evaluateEndConditions(s, s.startTime)
	assert.False(t, result.IsGameEnd, "two empty piles are below the threshold")

	s.supply["moat"].remaining = 0
	result = evaluateEndConditions(s, s.startTime)
	assert.True(t, result.IsGameEnd)
	assert.Equal(t, EndReasonEmptyPiles, result.Reason)
	assert.Equal(t, []EndReason{EndReasonEmptyPiles}, result.Satisfied)
}

func TestTopTierVictoryPileEndsGameAlone(t *testing.T) {
	_, s, _ := endcheckRoom(t, DefaultSettings())

	s.supply[CardProvince].remaining = 0

	result := evaluateEndConditions(s, s.startTime)
	assert.True(t, result.IsGameEnd)
	assert.Equal(t, EndReasonEmptyPiles, result.Reason)
}

func TestLesserVictoryPileDoesNotEndAlone(t *testing.T) {
	_, s, _ := endcheckRoom(t, DefaultSettings())

	s.supply[CardDuchy].remaining = 0

	result := evaluateEndConditions(s, s.startTime)
	assert.False(t, result.IsGameEnd, "only the top-tier victory pile ends the game by itself")
}

func TestEmptyPilesTakePriorityOverOtherTriggers(t *testing.T) {
	settings := DefaultSettings()
	settings.MaxTurns = 1
	_, s, clock := endcheckRoom(t, settings)

	s.supply[CardProvince].remaining = 0
	clock.Advance(time.Hour)

	result := evaluateEndConditions(s, clock.Now())
	assert.True(t, result.IsGameEnd)
	assert.Equal(t, EndReasonEmptyPiles, result.Reason)
	assert.Equal(t, []EndReason{EndReasonEmptyPiles, EndReasonMaxTurns, EndReasonTimeLimit}, result.Satisfied)
}

func TestMaxTurnsBeforeTimeLimit(t *testing.T) {
	settings := DefaultSettings()
	settings.MaxTurns = 1
	_, s, clock := endcheckRoom(t, settings)

	clock.Advance(time.Hour)

	result := evaluateEndConditions(s, clock.Now())
	assert.Equal(t, EndReasonMaxTurns, result.Reason)
	assert.Equal(t, []EndReason{EndReasonMaxTurns, EndReasonTimeLimit}, result.Satisfied)
}

func TestDisabledTriggers(t *testing.T) {
	settings := DefaultSettings()
	settings.MaxTurns = 0
	settings.TimeLimit = 0
	settings.EmptyPilesThreshold = 0
	_, s, clock := endcheckRoom(t, settings)

	s.supply[CardDuchy].remaining = 0
	s.supply[CardCurse].remaining = 0
	s.supply["moat"].remaining = 0
	clock.Advance(24 * time.Hour)

	result := evaluateEndConditions(s, clock.Now())
	assert.False(t, result.IsGameEnd, "zeroed settings disable their triggers")

	// The top-tier pile check does not depend on the threshold.
	s.supply[CardProvince].remaining = 0
	result = evaluateEndConditions(s, clock.Now())
	assert.True(t, result.IsGameEnd)
}

func TestBuyingOutProvincesEndsTheGame(t *testing.T) {
	e, s, _ := endcheckRoom(t, DefaultSettings())

	s.supply[CardProvince].remaining = 1
	require.NoError(t, e.AdvanceTurn("room-1", "alice"))
	s.players["alice"].coins = 8
	require.NoError(t, e.BuyCard("room-1", "alice", CardProvince))
	require.NoError(t, e.AdvanceTurn("room-1", "alice"))

	stats, err := e.GetGameStats("room-1")
	require.NoError(t, err)
	assert.True(t, stats.Ended)
	assert.Equal(t, EndReasonEmptyPiles, stats.EndReason)
}
