package game

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deckforge/deckforge-server/internal/game/rules"
)

// ActionType classifies a usage event.
type ActionType string

const (
	ActionPlay ActionType = "play"
	ActionBuy  ActionType = "buy"
)

// UsageRecord is one immutable play/buy event. Records are append-only
// and live exactly as long as their room.
type UsageRecord struct {
	ID        string
	RoomID    string
	CardID    string
	PlayerID  string
	Action    ActionType
	Timestamp time.Time
}

// CardUsageStat is the rolling aggregate for one card within one room.
type CardUsageStat struct {
	CardID          string
	Total           int
	DistinctPlayers int
	FirstUsed       time.Time
	PerPlayer       map[string]int
}

// cardUsage is the internal mutable aggregate behind CardUsageStat.
type cardUsage struct {
	cardID    string
	total     int
	perPlayer map[string]int
	firstUsed time.Time
	firstSeq  int // insertion order, breaks equal-timestamp ties deterministically
}

// UsageTracker keeps the append-only usage ledger and per-(room, card)
// aggregates. It has its own lock because scoring and stats queries read
// it outside any single room's critical section.
type UsageTracker struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	records map[string][]UsageRecord
	usage   map[string]map[string]*cardUsage
	nextSeq int
	now     func() time.Time
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker(logger *zap.Logger) *UsageTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsageTracker{
		logger:  logger,
		records: make(map[string][]UsageRecord),
		usage:   make(map[string]map[string]*cardUsage),
		now:     time.Now,
	}
}

// Observe subscribes the tracker to play and buy events on the bus, the
// only way usage data enters the ledger during normal operation.
func (t *UsageTracker) Observe(bus *rules.EventBus) {
	bus.SubscribeTyped(rules.EventCardPlayed, func(event rules.Event) {
		t.recordAt(event.RoomID, event.PlayerID, event.CardID, ActionPlay, event.Timestamp)
	})
	bus.SubscribeTyped(rules.EventCardBought, func(event rules.Event) {
		t.recordAt(event.RoomID, event.PlayerID, event.CardID, ActionBuy, event.Timestamp)
	})
}

// RecordAction appends a usage record and updates the aggregates.
func (t *UsageTracker) RecordAction(roomID, playerID, cardID string, action ActionType) {
	t.recordAt(roomID, playerID, cardID, action, t.now())
}

func (t *UsageTracker) recordAt(roomID, playerID, cardID string, action ActionType, at time.Time) {
	if roomID == "" || cardID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.records[roomID] = append(t.records[roomID], UsageRecord{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		CardID:    cardID,
		PlayerID:  playerID,
		Action:    action,
		Timestamp: at,
	})

	roomUsage, ok := t.usage[roomID]
	if !ok {
		roomUsage = make(map[string]*cardUsage)
		t.usage[roomID] = roomUsage
	}
	agg, ok := roomUsage[cardID]
	if !ok {
		agg = &cardUsage{
			cardID:    cardID,
			perPlayer: make(map[string]int),
			firstUsed: at,
			firstSeq:  t.nextSeq,
		}
		roomUsage[cardID] = agg
	}
	t.nextSeq++
	agg.total++
	agg.perPlayer[playerID]++
}

// RoomUsage returns a snapshot of the aggregates for every card used in
// the room, keyed by card ID.
func (t *UsageTracker) RoomUsage(roomID string) map[string]CardUsageStat {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := make(map[string]CardUsageStat, len(t.usage[roomID]))
	for cardID, agg := range t.usage[roomID] {
		stats[cardID] = agg.snapshot()
	}
	return stats
}

// TopCards returns the n most used cards in the room, ordered by total
// usage descending with ties broken by earliest first use. The ordering
// is stable and deterministic.
func (t *UsageTracker) TopCards(roomID string, n int) []CardUsageStat {
	t.mu.RLock()
	aggregates := make([]*cardUsage, 0, len(t.usage[roomID]))
	for _, agg := range t.usage[roomID] {
		aggregates = append(aggregates, agg)
	}
	t.mu.RUnlock()

	sort.Slice(aggregates, func(i, j int) bool {
		if aggregates[i].total != aggregates[j].total {
			return aggregates[i].total > aggregates[j].total
		}
		if !aggregates[i].firstUsed.Equal(aggregates[j].firstUsed) {
			return aggregates[i].firstUsed.Before(aggregates[j].firstUsed)
		}
		return aggregates[i].firstSeq < aggregates[j].firstSeq
	})

	if n > 0 && n < len(aggregates) {
		aggregates = aggregates[:n]
	}
	stats := make([]CardUsageStat, len(aggregates))
	for i, agg := range aggregates {
		stats[i] = agg.snapshot()
	}
	return stats
}

// Records returns a copy of the room's full ledger in append order.
func (t *UsageTracker) Records(roomID string) []UsageRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	records := make([]UsageRecord, len(t.records[roomID]))
	copy(records, t.records[roomID])
	return records
}

// DropRoom discards the room's ledger and aggregates. Usage data has no
// life beyond its session.
func (t *UsageTracker) DropRoom(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, roomID)
	delete(t.usage, roomID)
}

func (u *cardUsage) snapshot() CardUsageStat {
	perPlayer := make(map[string]int, len(u.perPlayer))
	for playerID, count := range u.perPlayer {
		perPlayer[playerID] = count
	}
	return CardUsageStat{
		CardID:          u.cardID,
		Total:           u.total,
		DistinctPlayers: len(u.perPlayer),
		FirstUsed:       u.firstUsed,
		PerPlayer:       perPlayer,
	}
}
