package game

import (
	"go.uber.org/zap"

	"github.com/deckforge/deckforge-server/internal/game/rules"
)

// defaultAttackHandLimit is the hand size opponents are forced down to
// by a discard attack that does not specify its own limit.
const defaultAttackHandLimit = 3

// resolveEffects applies a card's effect list in order against the
// acting player, mutating opponents for attack effects within the same
// room-locked operation as the triggering play. Unrecognized effect
// kinds are skipped: community cards may carry kinds this build does
// not know yet, and an unknown rider must not invalidate the play.
func (e *Engine) resolveEffects(s *gameSession, actor *playerDeck, card *Card) {
	for _, effect := range card.Effects {
		switch v := effect.(type) {
		case DrawEffect:
			drawn := actor.draw(v.Count, s.rng)
			e.publish(rules.EventCardDrawn, s.roomID, actor.playerID, card.ID, len(drawn))
		case GainActionEffect:
			actor.actions += v.Count
		case GainBuyEffect:
			actor.buys += v.Count
		case GainCoinEffect:
			actor.coins += v.Amount
		case AttackEffect:
			e.resolveAttack(s, actor, card, v)
		case VictoryPointsEffect:
			// Counted by victory-point totals, nothing to do at play time.
		case UnknownEffect:
			e.logger.Debug("skipping unknown effect kind",
				zap.String("room_id", s.roomID),
				zap.String("card_id", card.ID),
				zap.String("kind", v.RawKind),
			)
		}
	}
}

// resolveAttack applies an attack effect to every opponent of the actor.
func (e *Engine) resolveAttack(s *gameSession, actor *playerDeck, card *Card, attack AttackEffect) {
	switch attack.Subtype {
	case AttackDiscard:
		limit := attack.Amount
		if limit <= 0 {
			limit = defaultAttackHandLimit
		}
		for _, opponent := range s.opponentsOf(actor.playerID) {
			for len(opponent.hand) > limit {
				inst := opponent.discardFromHand(len(opponent.hand) - 1)
				e.publish(rules.EventCardDiscarded, s.roomID, opponent.playerID, inst.card.ID, 1)
			}
		}
	case AttackCurse:
		pile, ok := s.supply[CardCurse]
		if !ok {
			return
		}
		for _, opponent := range s.opponentsOf(actor.playerID) {
			if !pile.infinite && pile.remaining <= 0 {
				break
			}
			if !pile.infinite {
				pile.remaining--
			}
			opponent.gain(pile.card)
		}
	default:
		e.logger.Debug("skipping unknown attack subtype",
			zap.String("room_id", s.roomID),
			zap.String("card_id", card.ID),
			zap.String("subtype", attack.Subtype),
		)
	}
}
