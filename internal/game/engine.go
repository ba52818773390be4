package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deckforge/deckforge-server/internal/game/rules"
)

// Engine is the synchronous core API consumed by the session layer. It
// owns the room registry: rooms are created by InitializeDeck, looked up
// per call, and destroyed explicitly. Nothing here is global; callers
// inject the engine wherever it is needed.
//
// Concurrency model: the engine-level lock guards only the registry map.
// Every room operation locks that room's session for its entire
// duration, so per-room mutations are fully serialized while distinct
// rooms proceed in parallel. Invalid actions are rejected synchronously,
// never queued.
type Engine struct {
	logger   *zap.Logger
	settings Settings
	usage    *UsageTracker
	bus      *rules.EventBus
	now      func() time.Time

	mu    sync.RWMutex
	rooms map[string]*gameSession

	seedMu  sync.Mutex
	seed    int64
	seeded  bool
	roomSeq int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSeed fixes the base seed for per-room shuffling, making shuffles
// reproducible. Each room derives its own stream from the base seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.seeded = true
	}
}

// NewEngine creates an engine with an empty registry. The usage tracker
// is wired to the event bus so every play and buy lands in the ledger.
func NewEngine(logger *zap.Logger, settings Settings, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:   logger,
		settings: settings,
		bus:      rules.NewEventBus(),
		rooms:    make(map[string]*gameSession),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.usage = NewUsageTracker(logger)
	e.usage.Observe(e.bus)
	return e
}

// Bus exposes the event bus so the session layer can subscribe for
// pushes. Listeners run synchronously under the room lock and must not
// call back into mutating engine operations.
func (e *Engine) Bus() *rules.EventBus {
	return e.bus
}

// Usage exposes the usage tracker for read-only queries.
func (e *Engine) Usage() *UsageTracker {
	return e.usage
}

// Settings returns the engine's default session settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

func (e *Engine) publish(eventType rules.EventType, roomID, playerID, cardID string, amount int) {
	event := rules.NewEvent(eventType, roomID, playerID, cardID)
	event.ID = uuid.New().String()
	event.Amount = amount
	event.Timestamp = e.now()
	e.bus.Publish(event)
}

// nextRNG derives a fresh random stream for a new room.
func (e *Engine) nextRNG() *rand.Rand {
	e.seedMu.Lock()
	defer e.seedMu.Unlock()
	e.roomSeq++
	if e.seeded {
		return rand.New(rand.NewSource(e.seed + e.roomSeq))
	}
	return rand.New(rand.NewSource(e.now().UnixNano() + e.roomSeq))
}

// InitializeDeck creates the session for roomID: merges the supplied
// card definitions over the basic supply, builds each player's starting
// deck (treasure + victory equivalents), shuffles, and deals the opening
// hand. Definitions are validated structurally only; any cost/effect
// combination the catalog accepted is accepted here.
func (e *Engine) InitializeDeck(roomID string, defs []CardDefinition, playerIDs []string) error {
	if roomID == "" {
		return fmt.Errorf("room id is required: %w", ErrValidation)
	}
	if len(playerIDs) == 0 {
		return fmt.Errorf("room %s: at least one player required: %w", roomID, ErrValidation)
	}
	seen := make(map[string]bool, len(playerIDs))
	for _, playerID := range playerIDs {
		if playerID == "" {
			return fmt.Errorf("room %s: empty player id: %w", roomID, ErrValidation)
		}
		if seen[playerID] {
			return fmt.Errorf("room %s: duplicate player %s: %w", roomID, playerID, ErrValidation)
		}
		seen[playerID] = true
	}
	for _, def := range defs {
		if err := ValidateDefinition(def); err != nil {
			return err
		}
	}

	// Basic piles first, so a definition with a basic ID overrides it.
	merged := make([]CardDefinition, 0, len(defs)+7)
	byID := make(map[string]int)
	for _, def := range BasicSupply(len(playerIDs)) {
		byID[def.ID] = len(merged)
		merged = append(merged, def)
	}
	for _, def := range defs {
		if i, ok := byID[def.ID]; ok {
			merged[i] = def
			continue
		}
		byID[def.ID] = len(merged)
		merged = append(merged, def)
	}

	s := &gameSession{
		roomID:      roomID,
		turns:       rules.NewTurnManager(playerIDs),
		players:     make(map[string]*playerDeck, len(playerIDs)),
		order:       append([]string(nil), playerIDs...),
		catalog:     make(map[string]*Card, len(merged)),
		supply:      make(map[string]*supplyPile, len(merged)),
		supplyOrder: make([]string, 0, len(merged)),
		settings:    e.settings,
		startTime:   e.now(),
		rng:         e.nextRNG(),
		done:        make(chan struct{}),
	}

	for _, def := range merged {
		card := buildCard(def)
		s.catalog[card.ID] = card
		remaining := def.Supply
		if !def.Infinite && remaining == 0 {
			remaining = 10
		}
		s.supply[card.ID] = &supplyPile{card: card, remaining: remaining, infinite: def.Infinite}
		s.supplyOrder = append(s.supplyOrder, card.ID)
	}

	s.multiplier = s.settings.BaseMultiplier
	if s.hasCustomCards() && s.settings.CustomCardMultiplier > 0 {
		s.multiplier = s.settings.CustomCardMultiplier
	}

	treasure := s.catalog[CardCopper]
	victory := s.catalog[CardEstate]
	for _, playerID := range playerIDs {
		deck := newPlayerDeck(playerID)
		for i := 0; i < s.settings.StartingTreasure; i++ {
			deck.gainToDeck(treasure)
		}
		for i := 0; i < s.settings.StartingVictory; i++ {
			deck.gainToDeck(victory)
		}
		deck.shuffleDeck(s.rng)
		deck.draw(s.settings.HandSize, s.rng)
		s.players[playerID] = deck
	}

	e.mu.Lock()
	if _, exists := e.rooms[roomID]; exists {
		e.mu.Unlock()
		return fmt.Errorf("room %s already exists: %w", roomID, ErrValidation)
	}
	e.rooms[roomID] = s
	e.mu.Unlock()

	e.publish(rules.EventRoomCreated, roomID, "", "", len(playerIDs))
	e.logger.Info("room initialized",
		zap.String("room_id", roomID),
		zap.Strings("players", playerIDs),
		zap.Int("supply_piles", len(s.supply)),
		zap.Float64("score_multiplier", s.multiplier),
	)
	return nil
}

// session looks up a room without locking it.
func (e *Engine) session(roomID string) (*gameSession, error) {
	e.mu.RLock()
	s, ok := e.rooms[roomID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrRoomNotFound)
	}
	return s, nil
}

// withRoom runs fn with the room's lock held for the whole operation.
func (e *Engine) withRoom(roomID string, fn func(*gameSession) error) error {
	s, err := e.session(roomID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// withLiveRoom is withRoom plus the frozen-session guard.
func (e *Engine) withLiveRoom(roomID string, fn func(*gameSession) error) error {
	return e.withRoom(roomID, func(s *gameSession) error {
		if s.ended {
			return fmt.Errorf("room %s: %w", roomID, ErrGameAlreadyEnded)
		}
		return fn(s)
	})
}

func requirePlayer(s *gameSession, playerID string) (*playerDeck, error) {
	deck, ok := s.players[playerID]
	if !ok {
		return nil, fmt.Errorf("room %s player %s: %w", s.roomID, playerID, ErrPlayerNotFound)
	}
	return deck, nil
}

func requireActivePlayer(s *gameSession, playerID string) (*playerDeck, error) {
	deck, err := requirePlayer(s, playerID)
	if err != nil {
		return nil, err
	}
	if s.turns.ActivePlayer() != playerID {
		return nil, fmt.Errorf("room %s: not %s's turn: %w", s.roomID, playerID, ErrInvalidPhaseForAction)
	}
	return deck, nil
}

// DrawCards moves up to count cards from the player's deck into their
// hand, reshuffling the discard pile in as needed. A short draw when
// both zones are exhausted is a normal result, not an error.
func (e *Engine) DrawCards(roomID, playerID string, count int) ([]CardInstanceView, error) {
	if count < 0 {
		return nil, fmt.Errorf("draw count must be >= 0: %w", ErrValidation)
	}
	var drawn []*cardInstance
	err := e.withLiveRoom(roomID, func(s *gameSession) error {
		deck, err := requirePlayer(s, playerID)
		if err != nil {
			return err
		}
		drawn = deck.draw(count, s.rng)
		if len(drawn) > 0 {
			e.publish(rules.EventCardDrawn, roomID, playerID, "", len(drawn))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildInstanceViews(drawn), nil
}

// PlayCard moves a card from the player's hand to their play area and
// resolves its effects. Action cards are legal only in the ACTION phase
// with an action remaining; other types may be played in ACTION or BUY.
func (e *Engine) PlayCard(roomID, playerID, cardID string) error {
	return e.withLiveRoom(roomID, func(s *gameSession) error {
		deck, err := requireActivePlayer(s, playerID)
		if err != nil {
			return err
		}
		i := deck.findInHand(cardID)
		if i < 0 {
			return fmt.Errorf("room %s player %s card %s: %w", roomID, playerID, cardID, ErrCardNotInHand)
		}
		card := deck.hand[i].card

		phase := s.turns.CurrentPhase()
		if card.Type == TypeAction {
			if phase != rules.PhaseAction {
				return fmt.Errorf("room %s: action card in %s phase: %w", roomID, phase, ErrInvalidPhaseForAction)
			}
			if deck.actions <= 0 {
				return fmt.Errorf("room %s player %s: %w", roomID, playerID, ErrNoActionsRemaining)
			}
		} else if phase == rules.PhaseCleanup {
			return fmt.Errorf("room %s: play during %s phase: %w", roomID, phase, ErrInvalidPhaseForAction)
		}

		inst, err := deck.play(cardID)
		if err != nil {
			return err
		}
		if card.Type == TypeAction {
			deck.actions--
		}
		e.resolveEffects(s, deck, inst.card)
		e.publish(rules.EventCardPlayed, roomID, playerID, inst.card.ID, 1)

		e.logger.Debug("card played",
			zap.String("room_id", roomID),
			zap.String("player_id", playerID),
			zap.String("card_id", inst.card.ID),
			zap.String("phase", phase.String()),
		)
		return nil
	})
}

// BuyCard purchases one copy of cardID from the supply: the pile must
// have stock (or be infinite), the card must be affordable, and the
// player must have a buy left. Validation completes before any state
// changes, so a failed buy mutates nothing. The purchased copy lands in
// the player's discard pile.
func (e *Engine) BuyCard(roomID, playerID, cardID string) error {
	return e.withLiveRoom(roomID, func(s *gameSession) error {
		deck, err := requireActivePlayer(s, playerID)
		if err != nil {
			return err
		}
		if phase := s.turns.CurrentPhase(); phase != rules.PhaseBuy {
			return fmt.Errorf("room %s: buy during %s phase: %w", roomID, phase, ErrInvalidPhaseForAction)
		}
		pile, ok := s.supply[cardID]
		if !ok || (!pile.infinite && pile.remaining <= 0) {
			return fmt.Errorf("room %s card %s: %w", roomID, cardID, ErrCardUnavailable)
		}
		if pile.card.Cost > deck.coins {
			return fmt.Errorf("room %s card %s costs %d, have %d: %w",
				roomID, cardID, pile.card.Cost, deck.coins, ErrInsufficientFunds)
		}
		if deck.buys <= 0 {
			return fmt.Errorf("room %s player %s: %w", roomID, playerID, ErrNoBuysRemaining)
		}

		if !pile.infinite {
			pile.remaining--
		}
		deck.buys--
		deck.coins -= pile.card.Cost
		deck.gain(pile.card)
		e.publish(rules.EventCardBought, roomID, playerID, cardID, 1)

		e.logger.Debug("card bought",
			zap.String("room_id", roomID),
			zap.String("player_id", playerID),
			zap.String("card_id", cardID),
			zap.Int("remaining", pile.remaining),
		)
		return nil
	})
}

// DiscardCards discards the named cards from the player's hand, or the
// entire hand when cardIDs is empty.
func (e *Engine) DiscardCards(roomID, playerID string, cardIDs []string) error {
	return e.withLiveRoom(roomID, func(s *gameSession) error {
		deck, err := requirePlayer(s, playerID)
		if err != nil {
			return err
		}
		discarded, err := deck.discardCards(cardIDs)
		if err != nil {
			return err
		}
		if len(discarded) > 0 {
			e.publish(rules.EventCardDiscarded, roomID, playerID, "", len(discarded))
		}
		return nil
	})
}

// TrashCards removes the named hand cards from the game entirely. They
// move to the room trash, not the discard pile, and never return to the
// owner's deck.
func (e *Engine) TrashCards(roomID, playerID string, cardIDs []string) error {
	if len(cardIDs) == 0 {
		return fmt.Errorf("room %s: no cards named to trash: %w", roomID, ErrValidation)
	}
	return e.withLiveRoom(roomID, func(s *gameSession) error {
		deck, err := requirePlayer(s, playerID)
		if err != nil {
			return err
		}
		removed, err := deck.removeFromHand(cardIDs)
		if err != nil {
			return err
		}
		for _, inst := range removed {
			s.trashInstance(deck, inst)
		}
		e.publish(rules.EventCardTrashed, roomID, playerID, "", len(removed))
		return nil
	})
}

// CleanupPhase runs the active player's cleanup step: discard hand and
// play area, draw a fresh hand, reset actions/buys/coins, and hand the
// turn to the next player. End conditions are polled afterwards.
func (e *Engine) CleanupPhase(roomID, playerID string) error {
	return e.withLiveRoom(roomID, func(s *gameSession) error {
		if _, err := requireActivePlayer(s, playerID); err != nil {
			return err
		}
		e.finishTurn(s)
		return nil
	})
}

// AdvanceTurn moves the session forward one phase for the active player.
// ACTION advances to BUY; BUY (or a lingering CLEANUP) runs the cleanup
// step and passes the turn. End conditions are polled after every turn
// handover.
func (e *Engine) AdvanceTurn(roomID, playerID string) error {
	return e.withLiveRoom(roomID, func(s *gameSession) error {
		if _, err := requireActivePlayer(s, playerID); err != nil {
			return err
		}
		if s.turns.CurrentPhase() == rules.PhaseAction {
			phase := s.turns.AdvancePhase()
			e.publish(rules.EventPhaseChanged, roomID, playerID, "", 0)
			e.logger.Debug("phase advanced",
				zap.String("room_id", roomID),
				zap.String("phase", phase.String()),
			)
			return nil
		}
		e.finishTurn(s)
		return nil
	})
}

// finishTurn runs cleanup for the active player, rotates the turn, and
// polls the end conditions. Caller holds the room lock.
func (e *Engine) finishTurn(s *gameSession) {
	deck := s.activeDeck()
	deck.cleanup(s.settings.HandSize, s.rng)

	next, turn := s.turns.EndTurn()
	event := rules.NewEvent(rules.EventTurnAdvanced, s.roomID, next, "")
	event.ID = uuid.New().String()
	event.Amount = turn
	event.Timestamp = e.now()
	e.bus.Publish(event)

	e.logger.Debug("turn advanced",
		zap.String("room_id", s.roomID),
		zap.String("active_player", next),
		zap.Int("turn", turn),
	)

	if result := evaluateEndConditions(s, e.now()); result.IsGameEnd {
		e.endSession(s, result)
	}
}

// CheckEndConditions evaluates the three termination triggers without
// side effects. For an ended session it reports the frozen result.
func (e *Engine) CheckEndConditions(roomID string) (EndCheckResult, error) {
	var result EndCheckResult
	err := e.withRoom(roomID, func(s *gameSession) error {
		if s.ended {
			result = EndCheckResult{
				IsGameEnd: true,
				Reason:    s.endReason,
				Satisfied: append([]EndReason(nil), s.endStatus...),
			}
			return nil
		}
		result = evaluateEndConditions(s, e.now())
		return nil
	})
	return result, err
}

// TriggerGameEnd freezes the session with the given reason, snapshots
// duration and turn count, and computes the final scores. Used both by
// the evaluator-driven path and for operator-forced termination.
func (e *Engine) TriggerGameEnd(roomID string, reason EndReason) error {
	return e.withLiveRoom(roomID, func(s *gameSession) error {
		result := evaluateEndConditions(s, e.now())
		result.IsGameEnd = true
		result.Reason = reason
		found := false
		for _, r := range result.Satisfied {
			if r == reason {
				found = true
				break
			}
		}
		if !found {
			result.Satisfied = append([]EndReason{reason}, result.Satisfied...)
		}
		e.endSession(s, result)
		return nil
	})
}

// endSession freezes the session. Caller holds the room lock.
func (e *Engine) endSession(s *gameSession, result EndCheckResult) {
	s.ended = true
	s.endReason = result.Reason
	s.endStatus = result.Satisfied
	s.endedAt = e.now()
	s.finalTurns = s.turns.TurnNumber()
	s.finalScores = computeScores(s, e.usage.RoomUsage(s.roomID))
	close(s.done)

	event := rules.NewEvent(rules.EventGameEnded, s.roomID, "", "")
	event.ID = uuid.New().String()
	event.Timestamp = e.now()
	event.Metadata["reason"] = string(result.Reason)
	event.Description = fmt.Sprintf("game ended after %d turns", s.finalTurns)
	e.bus.Publish(event)

	e.logger.Info("game ended",
		zap.String("room_id", s.roomID),
		zap.String("reason", string(result.Reason)),
		zap.Int("turns", s.finalTurns),
		zap.Duration("duration", s.endedAt.Sub(s.startTime)),
	)
}

// Done returns a channel closed when the room's session ends, so
// simulated thinking delays can abandon their results.
func (e *Engine) Done(roomID string) (<-chan struct{}, error) {
	s, err := e.session(roomID)
	if err != nil {
		return nil, err
	}
	return s.done, nil
}

// GetPlayerDeckState projects targetID's deck state for requesterID.
// Opponents see only zone sizes; hand and play-area contents are
// revealed exclusively to their owner.
func (e *Engine) GetPlayerDeckState(roomID, requesterID, targetID string) (PlayerDeckView, error) {
	var view PlayerDeckView
	err := e.withRoom(roomID, func(s *gameSession) error {
		if _, err := requirePlayer(s, requesterID); err != nil {
			return err
		}
		deck, err := requirePlayer(s, targetID)
		if err != nil {
			return err
		}
		view = buildDeckView(deck, requesterID)
		return nil
	})
	return view, err
}

// GetSupplyState returns the public supply piles in definition order.
func (e *Engine) GetSupplyState(roomID string) ([]SupplyPileView, error) {
	var views []SupplyPileView
	err := e.withRoom(roomID, func(s *gameSession) error {
		views = buildSupplyView(s)
		return nil
	})
	return views, err
}

// GetGameStats returns the session summary. Status queries evaluate end
// conditions lazily, so a room whose time limit lapsed while idle is
// ended here rather than lingering forever.
func (e *Engine) GetGameStats(roomID string) (GameStatsView, error) {
	var stats GameStatsView
	err := e.withRoom(roomID, func(s *gameSession) error {
		if !s.ended {
			if result := evaluateEndConditions(s, e.now()); result.IsGameEnd {
				e.endSession(s, result)
			}
		}

		now := e.now()
		duration := now.Sub(s.startTime)
		if s.ended {
			duration = s.endedAt.Sub(s.startTime)
		}
		players := make([]PlayerStatsView, 0, len(s.order))
		for _, playerID := range s.order {
			deck := s.players[playerID]
			players = append(players, PlayerStatsView{
				PlayerID:      playerID,
				VictoryPoints: deck.victoryPoints(),
				TotalCards:    deck.totalCards(),
			})
		}
		stats = GameStatsView{
			RoomID:       s.roomID,
			TurnNumber:   s.turns.TurnNumber(),
			Phase:        s.turns.CurrentPhase().String(),
			ActivePlayer: s.turns.ActivePlayer(),
			Players:      players,
			StartedAt:    s.startTime,
			Duration:     duration,
			Ended:        s.ended,
			EndReason:    s.endReason,
			EndStatus:    append([]EndReason(nil), s.endStatus...),
			TopCards:     e.usage.TopCards(roomID, 5),
			TotalActions: len(e.usage.Records(roomID)),
		}
		return nil
	})
	return stats, err
}

// CalculateFinalRankings returns the scoring breakdown with strict,
// gapless ranks. Ended sessions return the frozen final scores; live
// sessions return current standings.
func (e *Engine) CalculateFinalRankings(roomID string) ([]ScoreEntry, error) {
	var entries []ScoreEntry
	err := e.withRoom(roomID, func(s *gameSession) error {
		if s.ended {
			entries = append([]ScoreEntry(nil), s.finalScores...)
			return nil
		}
		entries = computeScores(s, e.usage.RoomUsage(roomID))
		return nil
	})
	return entries, err
}

// DestroyRoom removes the room and its usage ledger. The session's done
// channel is closed if the game had not already ended.
func (e *Engine) DestroyRoom(roomID string) error {
	e.mu.Lock()
	s, ok := e.rooms[roomID]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("room %s: %w", roomID, ErrRoomNotFound)
	}
	delete(e.rooms, roomID)
	e.mu.Unlock()

	s.mu.Lock()
	if !s.ended {
		s.ended = true
		close(s.done)
	}
	s.mu.Unlock()

	e.usage.DropRoom(roomID)
	e.publish(rules.EventRoomDestroyed, roomID, "", "", 0)
	e.logger.Info("room destroyed", zap.String("room_id", roomID))
	return nil
}

// RoomIDs returns the registered room IDs, sorted for determinism.
func (e *Engine) RoomIDs() []string {
	e.mu.RLock()
	ids := make([]string, 0, len(e.rooms))
	for roomID := range e.rooms {
		ids = append(ids, roomID)
	}
	e.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// StartSweeper runs the periodic end-condition sweep until ctx is
// cancelled. The sweep exists for idle rooms: time-limit expiry is
// otherwise only evaluated on turn advances and status queries, so a
// room nobody touches would never terminate.
func (e *Engine) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.sweep()
			}
		}
	}()
}

// sweep ends any live room whose end conditions are now satisfied.
func (e *Engine) sweep() {
	for _, roomID := range e.RoomIDs() {
		s, err := e.session(roomID)
		if err != nil {
			continue
		}
		s.mu.Lock()
		if !s.ended {
			if result := evaluateEndConditions(s, e.now()); result.IsGameEnd {
				e.endSession(s, result)
			}
		}
		s.mu.Unlock()
	}
}
