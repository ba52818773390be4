package game

import "time"

// CardInstanceView is the public shape of one card copy.
type CardInstanceView struct {
	InstanceID string   `json:"instanceId"`
	CardID     string   `json:"cardId"`
	Name       string   `json:"name"`
	Cost       int      `json:"cost"`
	Type       CardType `json:"type"`
}

// PlayerDeckView projects one player's deck state. Zone counts are
// always present; Hand and PlayArea contents are populated only when
// the requesting player is looking at their own state. Opponents see
// sizes, never contents.
type PlayerDeckView struct {
	PlayerID      string             `json:"playerId"`
	DeckCount     int                `json:"deckCount"`
	HandCount     int                `json:"handCount"`
	DiscardCount  int                `json:"discardCount"`
	PlayAreaCount int                `json:"playAreaCount"`
	Actions       int                `json:"actions"`
	Buys          int                `json:"buys"`
	Coins         int                `json:"coins"`
	Hand          []CardInstanceView `json:"hand,omitempty"`
	PlayArea      []CardInstanceView `json:"playArea,omitempty"`
}

// SupplyPileView projects one supply pile. Supply state is public.
type SupplyPileView struct {
	CardID        string   `json:"cardId"`
	Name          string   `json:"name"`
	Cost          int      `json:"cost"`
	Type          CardType `json:"type"`
	Remaining     int      `json:"remaining"`
	Infinite      bool     `json:"infinite"`
	VictoryPoints int      `json:"victoryPoints,omitempty"`
}

// PlayerStatsView is the per-player slice of the session stats.
type PlayerStatsView struct {
	PlayerID      string `json:"playerId"`
	VictoryPoints int    `json:"victoryPoints"`
	TotalCards    int    `json:"totalCards"`
}

// GameStatsView is the public session summary.
type GameStatsView struct {
	RoomID       string            `json:"roomId"`
	TurnNumber   int               `json:"turnNumber"`
	Phase        string            `json:"phase"`
	ActivePlayer string            `json:"activePlayer"`
	Players      []PlayerStatsView `json:"players"`
	StartedAt    time.Time         `json:"startedAt"`
	Duration     time.Duration     `json:"duration"`
	Ended        bool              `json:"ended"`
	EndReason    EndReason         `json:"endReason,omitempty"`
	EndStatus    []EndReason       `json:"endStatus,omitempty"`
	TopCards     []CardUsageStat   `json:"topCards,omitempty"`
	TotalActions int               `json:"totalActions"`
}

func buildInstanceViews(instances []*cardInstance) []CardInstanceView {
	views := make([]CardInstanceView, len(instances))
	for i, inst := range instances {
		views[i] = CardInstanceView{
			InstanceID: inst.id,
			CardID:     inst.card.ID,
			Name:       inst.card.Name,
			Cost:       inst.card.Cost,
			Type:       inst.card.Type,
		}
	}
	return views
}

// buildDeckView projects target's deck state for requester. Only the
// owner gets hand and play-area contents.
func buildDeckView(deck *playerDeck, requesterID string) PlayerDeckView {
	view := PlayerDeckView{
		PlayerID:      deck.playerID,
		DeckCount:     len(deck.deck),
		HandCount:     len(deck.hand),
		DiscardCount:  len(deck.discard),
		PlayAreaCount: len(deck.playArea),
		Actions:       deck.actions,
		Buys:          deck.buys,
		Coins:         deck.coins,
	}
	if deck.playerID == requesterID {
		view.Hand = buildInstanceViews(deck.hand)
		view.PlayArea = buildInstanceViews(deck.playArea)
	}
	return view
}

func buildSupplyView(s *gameSession) []SupplyPileView {
	views := make([]SupplyPileView, 0, len(s.supplyOrder))
	for _, cardID := range s.supplyOrder {
		pile := s.supply[cardID]
		views = append(views, SupplyPileView{
			CardID:        pile.card.ID,
			Name:          pile.card.Name,
			Cost:          pile.card.Cost,
			Type:          pile.card.Type,
			Remaining:     pile.remaining,
			Infinite:      pile.infinite,
			VictoryPoints: pile.card.VictoryPoints,
		})
	}
	return views
}
