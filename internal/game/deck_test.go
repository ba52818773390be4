package game

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCopper = buildCard(CardDefinition{ID: CardCopper, Name: "Copper", Type: TypeTreasure,
		Effects: []EffectSpec{{Kind: EffectKindGainCoin, Value: 1}}})
	testEstate = buildCard(CardDefinition{ID: CardEstate, Name: "Estate", Cost: 2, Type: TypeVictory, VictoryPoints: 1})
	testDuchy  = buildCard(CardDefinition{ID: CardDuchy, Name: "Duchy", Cost: 5, Type: TypeVictory, VictoryPoints: 3})
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestDrawReshufflesDiscard(t *testing.T) {
	deck := newPlayerDeck("alice")
	for i := 0; i < 3; i++ {
		deck.gainToDeck(testCopper)
	}
	for i := 0; i < 4; i++ {
		deck.gain(testEstate)
	}

	drawn := deck.draw(5, testRNG())

	assert.Len(t, drawn, 5)
	assert.Len(t, deck.hand, 5)
	assert.Empty(t, deck.discard, "discard should have been shuffled in")
	assert.Len(t, deck.deck, 2)
	assert.Equal(t, deck.gained-deck.trashed, deck.totalCards())
}

func TestDrawShortWhenExhausted(t *testing.T) {
	deck := newPlayerDeck("alice")
	deck.gainToDeck(testCopper)
	deck.gainToDeck(testCopper)

	drawn := deck.draw(5, testRNG())

	assert.Len(t, drawn, 2)
	assert.Empty(t, deck.deck)
	assert.Empty(t, deck.discard)
}

func TestDrawZero(t *testing.T) {
	deck := newPlayerDeck("alice")
	deck.gainToDeck(testCopper)
	assert.Empty(t, deck.draw(0, testRNG()))
	assert.Len(t, deck.deck, 1)
}

func TestDiscardCardsValidatesBeforeMoving(t *testing.T) {
	deck := newPlayerDeck("alice")
	deck.gainToDeck(testCopper)
	deck.gainToDeck(testEstate)
	deck.draw(2, testRNG())

	_, err := deck.discardCards([]string{CardCopper, "missing"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCardNotInHand))
	assert.Len(t, deck.hand, 2, "failed discard must not move anything")
	assert.Empty(t, deck.discard)
}

func TestDiscardCardsEmptyListDiscardsHand(t *testing.T) {
	deck := newPlayerDeck("alice")
	for i := 0; i < 3; i++ {
		deck.gainToDeck(testCopper)
	}
	deck.draw(3, testRNG())

	discarded, err := deck.discardCards(nil)

	require.NoError(t, err)
	assert.Len(t, discarded, 3)
	assert.Empty(t, deck.hand)
	assert.Len(t, deck.discard, 3)
}

func TestDiscardCardsDuplicateDefinitionIDs(t *testing.T) {
	deck := newPlayerDeck("alice")
	deck.gainToDeck(testCopper)
	deck.gainToDeck(testCopper)
	deck.gainToDeck(testEstate)
	deck.draw(3, testRNG())

	discarded, err := deck.discardCards([]string{CardCopper, CardCopper})

	require.NoError(t, err)
	assert.Len(t, discarded, 2)
	assert.Len(t, deck.hand, 1)
	assert.Equal(t, CardEstate, deck.hand[0].card.ID)
}

func TestCleanupResetsTurnResources(t *testing.T) {
	deck := newPlayerDeck("alice")
	for i := 0; i < 10; i++ {
		deck.gainToDeck(testCopper)
	}
	rng := testRNG()
	deck.draw(5, rng)
	played, err := deck.play(CardCopper)
	require.NoError(t, err)
	require.NotNil(t, played)
	deck.actions = 0
	deck.buys = 0
	deck.coins = 7

	deck.cleanup(5, rng)

	assert.Len(t, deck.hand, 5)
	assert.Empty(t, deck.playArea)
	assert.Equal(t, 1, deck.actions)
	assert.Equal(t, 1, deck.buys)
	assert.Equal(t, 0, deck.coins)
	assert.Equal(t, deck.gained-deck.trashed, deck.totalCards())
}

func TestVictoryPointsAcrossZones(t *testing.T) {
	deck := newPlayerDeck("alice")
	deck.gainToDeck(testEstate) // 1 in deck
	deck.gain(testDuchy)        // 3 in discard
	deck.gainToDeck(buildCard(CardDefinition{
		ID: "gardens", Name: "Gardens", Type: TypeVictory,
		Effects: []EffectSpec{{Kind: EffectKindVictoryPoints, Value: 2}},
	}))
	deck.draw(1, testRNG())

	assert.Equal(t, 6, deck.victoryPoints())
}

func TestFindInHandByInstanceAndDefinitionID(t *testing.T) {
	deck := newPlayerDeck("alice")
	deck.gainToDeck(testCopper)
	deck.draw(1, testRNG())

	inst := deck.hand[0]
	assert.Equal(t, 0, deck.findInHand(inst.id))
	assert.Equal(t, 0, deck.findInHand(CardCopper))
	assert.Equal(t, -1, deck.findInHand("nope"))
}
