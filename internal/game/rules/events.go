package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of an engine event.
type EventType string

const (
	// Session lifecycle events
	EventRoomCreated   EventType = "ROOM_CREATED"
	EventRoomDestroyed EventType = "ROOM_DESTROYED"
	EventGameEnded     EventType = "GAME_ENDED"

	// Turn events
	EventPhaseChanged EventType = "PHASE_CHANGED"
	EventTurnAdvanced EventType = "TURN_ADVANCED"

	// Zone events
	EventCardDrawn     EventType = "CARD_DRAWN"
	EventCardPlayed    EventType = "CARD_PLAYED"
	EventCardBought    EventType = "CARD_BOUGHT"
	EventCardDiscarded EventType = "CARD_DISCARDED"
	EventCardTrashed   EventType = "CARD_TRASHED"
)

// Event represents a state change that other subsystems may react to.
// The engine publishes events synchronously while holding the room lock,
// so listeners must not call back into mutating engine operations.
type Event struct {
	Type        EventType
	ID          string // Unique event ID
	RoomID      string
	PlayerID    string
	CardID      string            // Card definition ID, when relevant
	Amount      int               // Numeric value (cards drawn, coins, etc.)
	Timestamp   time.Time         // When the event occurred
	Metadata    map[string]string // Additional metadata
	Description string            // Human-readable description
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with
// type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	listener := TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	}
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], listener)
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered via Subscribe or SubscribeTyped.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}

	if typedListeners, ok := bus.typedListeners[event.Type]; ok {
		for _, listener := range typedListeners {
			listener.Callback(event)
		}
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, roomID, playerID, cardID string) Event {
	return Event{
		Type:      eventType,
		RoomID:    roomID,
		PlayerID:  playerID,
		CardID:    cardID,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}
