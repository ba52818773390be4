package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/deckforge/deckforge-server/internal/game/rules"
)

// Settings are the per-session rule knobs. Zero values for MaxTurns and
// TimeLimit disable the respective end conditions.
type Settings struct {
	HandSize             int
	StartingTreasure     int
	StartingVictory      int
	MaxTurns             int
	TimeLimit            time.Duration
	EmptyPilesThreshold  int
	BaseMultiplier       float64
	CustomCardMultiplier float64
}

// DefaultSettings returns the stock rule set: 5-card hands, 7+3 starting
// decks, 50-turn cap, 30-minute limit, three empty piles to end.
func DefaultSettings() Settings {
	return Settings{
		HandSize:             5,
		StartingTreasure:     7,
		StartingVictory:      3,
		MaxTurns:             50,
		TimeLimit:            30 * time.Minute,
		EmptyPilesThreshold:  3,
		BaseMultiplier:       1.0,
		CustomCardMultiplier: 1.2,
	}
}

// supplyPile is one purchasable stack in the shared supply. Infinite
// piles never deplete and are exempt from empty-pile accounting.
type supplyPile struct {
	card      *Card
	remaining int
	infinite  bool
}

// gameSession is the complete state of one room. Every mutating engine
// operation locks mu for its whole duration, so the check-then-mutate
// sequences inside are never interleaved. Sessions in different rooms
// share nothing and run in parallel.
type gameSession struct {
	mu          sync.Mutex
	roomID      string
	turns       *rules.TurnManager
	players     map[string]*playerDeck
	order       []string
	catalog     map[string]*Card
	supply      map[string]*supplyPile
	supplyOrder []string
	trash       []*cardInstance
	settings    Settings
	multiplier  float64 // session-level score multiplier, fixed at init
	startTime   time.Time
	rng         *rand.Rand

	ended       bool
	endReason   EndReason
	endStatus   []EndReason
	endedAt     time.Time
	finalTurns  int
	finalScores []ScoreEntry

	// done is closed when the session ends, so in-flight simulated
	// delays (CPU opponents) can abandon their results.
	done chan struct{}
}

// activeDeck returns the deck of the player whose turn it is.
func (s *gameSession) activeDeck() *playerDeck {
	return s.players[s.turns.ActivePlayer()]
}

// opponentsOf returns the decks of every player except playerID, in
// join order.
func (s *gameSession) opponentsOf(playerID string) []*playerDeck {
	opponents := make([]*playerDeck, 0, len(s.order)-1)
	for _, id := range s.order {
		if id != playerID {
			opponents = append(opponents, s.players[id])
		}
	}
	return opponents
}

// hasCustomCards reports whether the catalog carries any community-
// authored card, which switches the session to the custom multiplier.
func (s *gameSession) hasCustomCards() bool {
	for _, card := range s.catalog {
		if card.Type == TypeCustom || card.CreatedBy != "" {
			return true
		}
	}
	return false
}

// trashInstance moves an instance out of the game into the room trash.
func (s *gameSession) trashInstance(owner *playerDeck, inst *cardInstance) {
	s.trash = append(s.trash, inst)
	owner.trashed++
}
