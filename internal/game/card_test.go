package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEffectKinds(t *testing.T) {
	tests := []struct {
		name string
		spec EffectSpec
		want CardEffect
	}{
		{"draw", EffectSpec{Kind: EffectKindDraw, Value: 2}, DrawEffect{Count: 2}},
		{"gain action", EffectSpec{Kind: EffectKindGainAction, Value: 1}, GainActionEffect{Count: 1}},
		{"gain buy", EffectSpec{Kind: EffectKindGainBuy, Value: 1}, GainBuyEffect{Count: 1}},
		{"gain coin", EffectSpec{Kind: EffectKindGainCoin, Value: 3}, GainCoinEffect{Amount: 3}},
		{"attack", EffectSpec{Kind: EffectKindAttack, Value: 3, Subtype: AttackDiscard}, AttackEffect{Subtype: AttackDiscard, Amount: 3}},
		{"victory points", EffectSpec{Kind: EffectKindVictoryPoints, Value: 2}, VictoryPointsEffect{Points: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeEffect(tt.spec))
		})
	}
}

func TestDecodeEffectUnknownKind(t *testing.T) {
	effect := DecodeEffect(EffectSpec{Kind: "teleport", Value: 2, Subtype: "swap"})
	unknown, ok := effect.(UnknownEffect)
	require.True(t, ok)
	assert.Equal(t, "teleport", unknown.Kind())
	assert.Equal(t, 2, unknown.Value)
	assert.Equal(t, "swap", unknown.Subtype)
}

func TestValidateDefinition(t *testing.T) {
	valid := CardDefinition{ID: "fireball", Name: "Fireball", Cost: 4, Type: TypeAction}
	require.NoError(t, ValidateDefinition(valid))

	tests := []struct {
		name   string
		mutate func(*CardDefinition)
	}{
		{"missing id", func(d *CardDefinition) { d.ID = "" }},
		{"missing name", func(d *CardDefinition) { d.Name = "" }},
		{"negative cost", func(d *CardDefinition) { d.Cost = -1 }},
		{"missing type", func(d *CardDefinition) { d.Type = "" }},
		{"negative supply", func(d *CardDefinition) { d.Supply = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid
			tt.mutate(&def)
			err := ValidateDefinition(def)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestValidateDefinitionInfiniteIgnoresSupply(t *testing.T) {
	def := CardDefinition{ID: "copper", Name: "Copper", Type: TypeTreasure, Infinite: true, Supply: -1}
	assert.NoError(t, ValidateDefinition(def))
}

func TestEffectPoints(t *testing.T) {
	card := buildCard(CardDefinition{
		ID: "gardens", Name: "Gardens", Type: TypeVictory,
		Effects: []EffectSpec{
			{Kind: EffectKindVictoryPoints, Value: 2},
			{Kind: EffectKindGainCoin, Value: 1},
			{Kind: EffectKindVictoryPoints, Value: 1},
		},
	})
	assert.Equal(t, 3, effectPoints(card))
}

func TestBasicSupplyComposition(t *testing.T) {
	supply := BasicSupply(2)
	byID := make(map[string]CardDefinition, len(supply))
	for _, def := range supply {
		byID[def.ID] = def
	}

	for _, id := range []string{CardCopper, CardSilver, CardGold, CardEstate} {
		assert.True(t, byID[id].Infinite, "%s should be infinite", id)
	}
	assert.False(t, byID[CardDuchy].Infinite)
	assert.False(t, byID[CardProvince].Infinite)
	assert.Equal(t, 8, byID[CardProvince].Supply)
	assert.Equal(t, 10, byID[CardCurse].Supply)
	assert.Equal(t, -1, byID[CardCurse].VictoryPoints)

	bigger := BasicSupply(4)
	for _, def := range bigger {
		switch def.ID {
		case CardProvince:
			assert.Equal(t, 12, def.Supply)
		case CardCurse:
			assert.Equal(t, 30, def.Supply)
		}
	}
}
