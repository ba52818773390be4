package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// cardInstance is one physical copy of a card. Instances are what move
// between zones; the definition they point at is shared and immutable.
type cardInstance struct {
	id   string
	card *Card
}

func newInstance(card *Card) *cardInstance {
	return &cardInstance{id: uuid.New().String(), card: card}
}

// playerDeck owns the four per-player zones plus the turn resources.
// The deck slice is ordered with the top of the deck at the end, so a
// draw is a pop. All mutation happens under the owning room's lock;
// playerDeck itself is not safe for concurrent use.
//
// Card instances are conserved: draws, plays, discards, and cleanup only
// move instances between zones. Only a buy adds an instance and only a
// trash removes one, and both bump the respective counters so the
// conservation invariant is checkable at any time.
type playerDeck struct {
	playerID string
	deck     []*cardInstance
	hand     []*cardInstance
	discard  []*cardInstance
	playArea []*cardInstance
	actions  int
	buys     int
	coins    int
	gained   int // total instances ever added (starting deck + buys + dealt curses)
	trashed  int // total instances removed to the room trash
}

func newPlayerDeck(playerID string) *playerDeck {
	return &playerDeck{
		playerID: playerID,
		actions:  1,
		buys:     1,
	}
}

// gain adds a freshly created instance to the discard pile, the normal
// landing zone for gained cards.
func (p *playerDeck) gain(card *Card) *cardInstance {
	inst := newInstance(card)
	p.discard = append(p.discard, inst)
	p.gained++
	return inst
}

// gainToDeck adds an instance directly to the deck, used only when
// building the starting deck before the opening shuffle.
func (p *playerDeck) gainToDeck(card *Card) *cardInstance {
	inst := newInstance(card)
	p.deck = append(p.deck, inst)
	p.gained++
	return inst
}

// shuffleDeck runs a Fisher-Yates shuffle over the deck using the
// injected source, so seeded sessions shuffle reproducibly.
func (p *playerDeck) shuffleDeck(rng *rand.Rand) {
	for i := len(p.deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p.deck[i], p.deck[j] = p.deck[j], p.deck[i]
	}
}

// draw moves up to count cards from the deck top into the hand. When the
// deck runs out mid-draw the discard pile is shuffled in and drawing
// continues. Exhausting both zones yields a short draw, which is a
// normal outcome, not an error.
func (p *playerDeck) draw(count int, rng *rand.Rand) []*cardInstance {
	drawn := make([]*cardInstance, 0, count)
	for len(drawn) < count {
		if len(p.deck) == 0 {
			if len(p.discard) == 0 {
				break
			}
			p.deck = p.discard
			p.discard = nil
			p.shuffleDeck(rng)
		}
		top := p.deck[len(p.deck)-1]
		p.deck = p.deck[:len(p.deck)-1]
		p.hand = append(p.hand, top)
		drawn = append(drawn, top)
	}
	return drawn
}

// findInHand locates a card in hand by instance ID or definition ID.
// Session callers pass definition IDs; the gateway may pass either.
func (p *playerDeck) findInHand(cardID string) int {
	for i, inst := range p.hand {
		if inst.id == cardID || inst.card.ID == cardID {
			return i
		}
	}
	return -1
}

// play moves a card from hand to the play area.
func (p *playerDeck) play(cardID string) (*cardInstance, error) {
	i := p.findInHand(cardID)
	if i < 0 {
		return nil, fmt.Errorf("player %s card %s: %w", p.playerID, cardID, ErrCardNotInHand)
	}
	inst := p.hand[i]
	p.hand = append(p.hand[:i], p.hand[i+1:]...)
	p.playArea = append(p.playArea, inst)
	return inst, nil
}

// removeFromHand extracts the named cards from the hand. The whole
// request is validated before anything moves, so a single bad ID leaves
// the hand untouched. Repeated IDs consume distinct copies.
func (p *playerDeck) removeFromHand(cardIDs []string) ([]*cardInstance, error) {
	taken := make(map[int]bool, len(cardIDs))
	for _, cardID := range cardIDs {
		found := -1
		for i, inst := range p.hand {
			if taken[i] {
				continue
			}
			if inst.id == cardID || inst.card.ID == cardID {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("player %s card %s: %w", p.playerID, cardID, ErrCardNotInHand)
		}
		taken[found] = true
	}

	removed := make([]*cardInstance, 0, len(taken))
	remaining := make([]*cardInstance, 0, len(p.hand)-len(taken))
	for i, inst := range p.hand {
		if taken[i] {
			removed = append(removed, inst)
		} else {
			remaining = append(remaining, inst)
		}
	}
	p.hand = remaining
	return removed, nil
}

// discardCards discards the named hand cards, or the entire hand when
// cardIDs is empty.
func (p *playerDeck) discardCards(cardIDs []string) ([]*cardInstance, error) {
	if len(cardIDs) == 0 {
		discarded := p.hand
		p.discard = append(p.discard, p.hand...)
		p.hand = nil
		return discarded, nil
	}
	discarded, err := p.removeFromHand(cardIDs)
	if err != nil {
		return nil, err
	}
	p.discard = append(p.discard, discarded...)
	return discarded, nil
}

// discardFromHand moves the instance at index i to the discard pile.
func (p *playerDeck) discardFromHand(i int) *cardInstance {
	inst := p.hand[i]
	p.hand = append(p.hand[:i], p.hand[i+1:]...)
	p.discard = append(p.discard, inst)
	return inst
}

// cleanup discards hand and play area, draws a fresh hand, and resets
// the turn resources.
func (p *playerDeck) cleanup(handSize int, rng *rand.Rand) {
	p.discard = append(p.discard, p.hand...)
	p.hand = nil
	p.discard = append(p.discard, p.playArea...)
	p.playArea = nil
	p.draw(handSize, rng)
	p.actions = 1
	p.buys = 1
	p.coins = 0
}

// victoryPoints sums the VictoryPoints field plus victory_points effects
// across every zone the player owns.
func (p *playerDeck) victoryPoints() int {
	total := 0
	for _, zone := range [][]*cardInstance{p.deck, p.hand, p.discard, p.playArea} {
		for _, inst := range zone {
			total += inst.card.VictoryPoints + effectPoints(inst.card)
		}
	}
	return total
}

// totalCards counts instances across all four zones. It always equals
// gained minus trashed.
func (p *playerDeck) totalCards() int {
	return len(p.deck) + len(p.hand) + len(p.discard) + len(p.playArea)
}
