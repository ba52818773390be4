package game

import "fmt"

// CardType classifies a card. Custom covers community-authored cards
// whose behavior is entirely data-driven.
type CardType string

const (
	TypeTreasure CardType = "TREASURE"
	TypeVictory  CardType = "VICTORY"
	TypeAction   CardType = "ACTION"
	TypeCurse    CardType = "CURSE"
	TypeCustom   CardType = "CUSTOM"
)

// Effect kind strings as they appear in external card definitions.
const (
	EffectKindDraw          = "draw"
	EffectKindGainAction    = "gain_action"
	EffectKindGainBuy       = "gain_buy"
	EffectKindGainCoin      = "gain_coin"
	EffectKindAttack        = "attack"
	EffectKindVictoryPoints = "victory_points"
)

// Attack subtypes the resolver understands. Anything else is skipped.
const (
	AttackDiscard = "discard"
	AttackCurse   = "curse"
)

// CardEffect is a closed union over the effect kinds the resolver knows.
// One variant per kind keeps the resolution switch exhaustive; kinds the
// engine has never heard of decode into UnknownEffect and are skipped at
// resolution time rather than rejected.
type CardEffect interface {
	Kind() string
}

// DrawEffect draws n cards for the actor.
type DrawEffect struct {
	Count int
}

// GainActionEffect grants n additional actions this turn.
type GainActionEffect struct {
	Count int
}

// GainBuyEffect grants n additional buys this turn.
type GainBuyEffect struct {
	Count int
}

// GainCoinEffect grants n coins this turn.
type GainCoinEffect struct {
	Amount int
}

// AttackEffect mutates each opponent, atomically with the triggering
// play. The discard subtype forces opponents down to Amount cards in
// hand (3 when Amount is unset); the curse subtype deals each opponent
// a curse card from the supply while any remain.
type AttackEffect struct {
	Subtype string
	Amount  int
}

// VictoryPointsEffect contributes points to victory-point counting.
// It is inert during resolution.
type VictoryPointsEffect struct {
	Points int
}

// UnknownEffect preserves an effect kind this engine does not recognize.
// Community-authored cards may carry kinds added after this build.
type UnknownEffect struct {
	RawKind string
	Value   int
	Subtype string
}

func (DrawEffect) Kind() string          { return EffectKindDraw }
func (GainActionEffect) Kind() string    { return EffectKindGainAction }
func (GainBuyEffect) Kind() string       { return EffectKindGainBuy }
func (GainCoinEffect) Kind() string      { return EffectKindGainCoin }
func (AttackEffect) Kind() string        { return EffectKindAttack }
func (VictoryPointsEffect) Kind() string { return EffectKindVictoryPoints }
func (e UnknownEffect) Kind() string     { return e.RawKind }

// EffectSpec is the plain-data effect form consumed from the external
// card catalog.
type EffectSpec struct {
	Kind    string `json:"kind"`
	Value   int    `json:"value"`
	Subtype string `json:"subtype,omitempty"`
}

// DecodeEffect converts a plain-data effect into the tagged union.
func DecodeEffect(spec EffectSpec) CardEffect {
	switch spec.Kind {
	case EffectKindDraw:
		return DrawEffect{Count: spec.Value}
	case EffectKindGainAction:
		return GainActionEffect{Count: spec.Value}
	case EffectKindGainBuy:
		return GainBuyEffect{Count: spec.Value}
	case EffectKindGainCoin:
		return GainCoinEffect{Amount: spec.Value}
	case EffectKindAttack:
		return AttackEffect{Subtype: spec.Subtype, Amount: spec.Value}
	case EffectKindVictoryPoints:
		return VictoryPointsEffect{Points: spec.Value}
	default:
		return UnknownEffect{RawKind: spec.Kind, Value: spec.Value, Subtype: spec.Subtype}
	}
}

// Card is an immutable card definition shared by every instance of the
// card in play.
type Card struct {
	ID            string
	Name          string
	Cost          int
	Type          CardType
	Effects       []CardEffect
	VictoryPoints int
	CreatedBy     string // Author player ID for community cards; empty for stock cards
}

// CardDefinition is the plain-data form of a card plus its supply pile,
// as delivered by the external card catalog.
type CardDefinition struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Cost          int          `json:"cost"`
	Type          CardType     `json:"type"`
	Effects       []EffectSpec `json:"effects,omitempty"`
	VictoryPoints int          `json:"victoryPoints,omitempty"`
	CreatedBy     string       `json:"createdBy,omitempty"`
	Supply        int          `json:"supply,omitempty"`
	Infinite      bool         `json:"infinite,omitempty"`
}

// ValidateDefinition checks the structural requirements of a card
// definition. Game balance is deliberately not validated: any cost and
// effect combination the catalog accepted is accepted here too.
func ValidateDefinition(def CardDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("card id is required: %w", ErrValidation)
	}
	if def.Name == "" {
		return fmt.Errorf("card %s: name is required: %w", def.ID, ErrValidation)
	}
	if def.Cost < 0 {
		return fmt.Errorf("card %s: cost must be >= 0: %w", def.ID, ErrValidation)
	}
	if def.Type == "" {
		return fmt.Errorf("card %s: type is required: %w", def.ID, ErrValidation)
	}
	if !def.Infinite && def.Supply < 0 {
		return fmt.Errorf("card %s: supply must be >= 0: %w", def.ID, ErrValidation)
	}
	return nil
}

// buildCard converts a validated definition into the immutable card model.
func buildCard(def CardDefinition) *Card {
	effects := make([]CardEffect, 0, len(def.Effects))
	for _, spec := range def.Effects {
		effects = append(effects, DecodeEffect(spec))
	}
	return &Card{
		ID:            def.ID,
		Name:          def.Name,
		Cost:          def.Cost,
		Type:          def.Type,
		Effects:       effects,
		VictoryPoints: def.VictoryPoints,
		CreatedBy:     def.CreatedBy,
	}
}

// effectPoints returns the victory_points contribution of a card's
// effect list.
func effectPoints(card *Card) int {
	points := 0
	for _, effect := range card.Effects {
		if vp, ok := effect.(VictoryPointsEffect); ok {
			points += vp.Points
		}
	}
	return points
}

// Basic card IDs used for starting decks and the default supply.
const (
	CardCopper   = "copper"
	CardSilver   = "silver"
	CardGold     = "gold"
	CardEstate   = "estate"
	CardDuchy    = "duchy"
	CardProvince = "province"
	CardCurse    = "curse"
)

// BasicSupply returns the stock piles every session carries. Currency
// and the starting victory card are infinite: they never deplete and
// never count toward the empty-pile end condition. Duchies, provinces,
// and curses are finite; the province pile is the top-tier victory pile
// whose depletion ends the game outright.
func BasicSupply(playerCount int) []CardDefinition {
	if playerCount < 1 {
		playerCount = 1
	}
	victoryCount := 8
	if playerCount > 2 {
		victoryCount = 12
	}
	curseCount := 10 * (playerCount - 1)
	if curseCount < 10 {
		curseCount = 10
	}
	return []CardDefinition{
		{ID: CardCopper, Name: "Copper", Cost: 0, Type: TypeTreasure, Infinite: true,
			Effects: []EffectSpec{{Kind: EffectKindGainCoin, Value: 1}}},
		{ID: CardSilver, Name: "Silver", Cost: 3, Type: TypeTreasure, Infinite: true,
			Effects: []EffectSpec{{Kind: EffectKindGainCoin, Value: 2}}},
		{ID: CardGold, Name: "Gold", Cost: 6, Type: TypeTreasure, Infinite: true,
			Effects: []EffectSpec{{Kind: EffectKindGainCoin, Value: 3}}},
		{ID: CardEstate, Name: "Estate", Cost: 2, Type: TypeVictory, Infinite: true, VictoryPoints: 1},
		{ID: CardDuchy, Name: "Duchy", Cost: 5, Type: TypeVictory, Supply: victoryCount, VictoryPoints: 3},
		{ID: CardProvince, Name: "Province", Cost: 8, Type: TypeVictory, Supply: victoryCount, VictoryPoints: 6},
		{ID: CardCurse, Name: "Curse", Cost: 0, Type: TypeCurse, Supply: curseCount, VictoryPoints: -1},
	}
}
