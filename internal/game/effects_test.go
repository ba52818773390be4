package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var effectTestDefs = []CardDefinition{
	{ID: "village", Name: "Village", Cost: 3, Type: TypeAction,
		Effects: []EffectSpec{
			{Kind: EffectKindDraw, Value: 1},
			{Kind: EffectKindGainAction, Value: 2},
		}},
	{ID: "market", Name: "Market", Cost: 5, Type: TypeAction,
		Effects: []EffectSpec{
			{Kind: EffectKindDraw, Value: 1},
			{Kind: EffectKindGainAction, Value: 1},
			{Kind: EffectKindGainBuy, Value: 1},
			{Kind: EffectKindGainCoin, Value: 1},
		}},
	{ID: "militia", Name: "Militia", Cost: 4, Type: TypeAction,
		Effects: []EffectSpec{
			{Kind: EffectKindGainCoin, Value: 2},
			{Kind: EffectKindAttack, Subtype: AttackDiscard, Value: 3},
		}},
	{ID: "witch", Name: "Witch", Cost: 5, Type: TypeAction,
		Effects: []EffectSpec{
			{Kind: EffectKindDraw, Value: 2},
			{Kind: EffectKindAttack, Subtype: AttackCurse},
		}},
	{ID: "relic", Name: "Relic", Cost: 2, Type: TypeCustom, CreatedBy: "alice",
		Effects: []EffectSpec{
			{Kind: "teleport", Value: 2, Subtype: "swap"},
			{Kind: EffectKindGainCoin, Value: 2},
		}},
}

func effectRoom(t *testing.T) (*Engine, *gameSession) {
	t.Helper()
	e := newTestEngine(t, DefaultSettings())
	s := initRoom(t, e, "room-1", effectTestDefs, "alice", "bob")
	return e, s
}

func TestPlayActionResolvesEffects(t *testing.T) {
	e, s := effectRoom(t)
	putInHand(t, s, "alice", "village")
	deck := s.players["alice"]
	handBefore := len(deck.hand)

	require.NoError(t, e.PlayCard("room-1", "alice", "village"))

	assert.Equal(t, 2, deck.actions, "1 base - 1 played + 2 granted")
	assert.Equal(t, handBefore, len(deck.hand), "played one, drew one")
	require.Len(t, deck.playArea, 1)
	assert.Equal(t, "village", deck.playArea[0].card.ID)
}

func TestMarketGrantsBuyAndCoin(t *testing.T) {
	e, s := effectRoom(t)
	putInHand(t, s, "alice", "market")
	deck := s.players["alice"]

	require.NoError(t, e.PlayCard("room-1", "alice", "market"))

	assert.Equal(t, 1, deck.actions)
	assert.Equal(t, 2, deck.buys)
	assert.Equal(t, 1, deck.coins)
}

func TestActionCardNeedsActionPhase(t *testing.T) {
	e, s := effectRoom(t)
	putInHand(t, s, "alice", "village")
	require.NoError(t, e.AdvanceTurn("room-1", "alice")) // now BUY

	assert.ErrorIs(t, e.PlayCard("room-1", "alice", "village"), ErrInvalidPhaseForAction)
}

func TestActionCardNeedsActionsRemaining(t *testing.T) {
	e, s := effectRoom(t)
	putInHand(t, s, "alice", "village")
	s.players["alice"].actions = 0

	assert.ErrorIs(t, e.PlayCard("room-1", "alice", "village"), ErrNoActionsRemaining)
}

func TestTreasurePlayableInBuyPhase(t *testing.T) {
	e, s := effectRoom(t)
	putInHand(t, s, "alice", CardGold)
	require.NoError(t, e.AdvanceTurn("room-1", "alice"))

	require.NoError(t, e.PlayCard("room-1", "alice", CardGold))
	assert.Equal(t, 3, s.players["alice"].coins)
}

func TestPlayCardNotInHand(t *testing.T) {
	e, _ := effectRoom(t)
	assert.ErrorIs(t, e.PlayCard("room-1", "alice", "witch"), ErrCardNotInHand)
}

func TestDiscardAttackForcesOpponentsDown(t *testing.T) {
	e, s := effectRoom(t)
	putInHand(t, s, "alice", "militia")
	alice := s.players["alice"]
	bob := s.players["bob"]
	require.Len(t, bob.hand, 5)

	require.NoError(t, e.PlayCard("room-1", "alice", "militia"))

	assert.Len(t, bob.hand, 3, "opponent forced down to the attack limit")
	assert.Len(t, bob.discard, 2)
	assert.Equal(t, 2, alice.coins)
	assert.Len(t, alice.hand, 5, "attacker keeps their own hand")
	assert.Equal(t, bob.gained-bob.trashed, bob.totalCards())
}

func TestDiscardAttackSkipsSmallHands(t *testing.T) {
	e, s := effectRoom(t)
	putInHand(t, s, "alice", "militia")
	bob := s.players["bob"]
	_, err := bob.discardCards([]string{bob.hand[0].card.ID, bob.hand[1].card.ID, bob.hand[2].card.ID})
	require.NoError(t, err)
	require.Len(t, bob.hand, 2)

	require.NoError(t, e.PlayCard("room-1", "alice", "militia"))

	assert.Len(t, bob.hand, 2, "hands at or below the limit are untouched")
}

func TestCurseAttackDealsFromSupply(t *testing.T) {
	e, s := effectRoom(t)
	putInHand(t, s, "alice", "witch")
	bob := s.players["bob"]
	pileBefore := s.supply[CardCurse].remaining
	vpBefore := bob.victoryPoints()

	require.NoError(t, e.PlayCard("room-1", "alice", "witch"))

	assert.Equal(t, pileBefore-1, s.supply[CardCurse].remaining)
	require.NotEmpty(t, bob.discard)
	assert.Equal(t, CardCurse, bob.discard[len(bob.discard)-1].card.ID)
	assert.Equal(t, vpBefore-1, bob.victoryPoints(), "curse costs a point")
}

func TestCurseAttackStopsAtEmptyPile(t *testing.T) {
	e, s := effectRoom(t)
	putInHand(t, s, "alice", "witch")
	s.supply[CardCurse].remaining = 0
	bob := s.players["bob"]
	discardBefore := len(bob.discard)

	require.NoError(t, e.PlayCard("room-1", "alice", "witch"))

	assert.Len(t, bob.discard, discardBefore, "no curses left to deal")
}

func TestUnknownEffectKindIsSkipped(t *testing.T) {
	e, s := effectRoom(t)
	putInHand(t, s, "alice", "relic")
	deck := s.players["alice"]

	require.NoError(t, e.PlayCard("room-1", "alice", "relic"))

	assert.Equal(t, 2, deck.coins, "known riders still resolve")
	assert.Len(t, deck.playArea, 1)
}
