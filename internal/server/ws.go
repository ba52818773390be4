package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/deckforge/deckforge-server/internal/config"
	"github.com/deckforge/deckforge-server/internal/game"
	"github.com/deckforge/deckforge-server/internal/game/rules"
)

// Request is one client frame. Op selects the engine call; the
// remaining fields are that call's arguments.
type Request struct {
	Op       string                `json:"op"`
	RoomID   string                `json:"roomId,omitempty"`
	PlayerID string                `json:"playerId,omitempty"`
	TargetID string                `json:"targetId,omitempty"`
	CardID   string                `json:"cardId,omitempty"`
	CardIDs  []string              `json:"cardIds,omitempty"`
	Count    int                   `json:"count,omitempty"`
	Reason   string                `json:"reason,omitempty"`
	Cards    []game.CardDefinition `json:"cards,omitempty"`
	Players  []string              `json:"players,omitempty"`
}

// Response answers a Request. Code carries the machine-readable failure
// taxonomy; presentation is the client's job.
type Response struct {
	Op    string      `json:"op"`
	OK    bool        `json:"ok"`
	Code  string      `json:"code,omitempty"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// Push is an unsolicited event notification for a joined room.
type Push struct {
	Event    string `json:"event"`
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId,omitempty"`
	CardID   string `json:"cardId,omitempty"`
	Amount   int    `json:"amount,omitempty"`
}

// Gateway is the websocket session layer over the game engine. It is a
// thin translator: every frame maps onto exactly one synchronous engine
// call, and engine events are fanned out to clients joined to the room.
type Gateway struct {
	engine   *game.Engine
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]bool
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	roomID string
	mu     sync.Mutex
}

// NewGateway creates a gateway over the engine and subscribes it to the
// engine's event bus for pushes.
func NewGateway(engine *game.Engine, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		engine: engine,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]bool),
	}
	engine.Bus().Subscribe(g.handleEvent)
	return g
}

// handleEvent fans an engine event out to every client joined to its
// room. Sends are non-blocking: a slow client drops pushes rather than
// stalling the engine, which publishes under the room lock.
func (g *Gateway) handleEvent(event rules.Event) {
	if event.RoomID == "" {
		return
	}
	payload, err := json.Marshal(Push{
		Event:    string(event.Type),
		RoomID:   event.RoomID,
		PlayerID: event.PlayerID,
		CardID:   event.CardID,
		Amount:   event.Amount,
	})
	if err != nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for c := range g.clients {
		c.mu.Lock()
		joined := c.roomID == event.RoomID
		c.mu.Unlock()
		if !joined {
			continue
		}
		select {
		case c.send <- payload:
		default:
		}
	}
}

// ServeHTTP upgrades the connection and runs the frame loop.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}
	g.mu.Lock()
	g.clients[c] = true
	g.mu.Unlock()

	go g.writeLoop(c)
	g.readLoop(c)

	g.mu.Lock()
	delete(g.clients, c)
	g.mu.Unlock()
	close(c.send)
	conn.Close()
}

func (g *Gateway) writeLoop(c *client) {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (g *Gateway) readLoop(c *client) {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			g.reply(c, Response{Op: "unknown", Code: "BAD_REQUEST", Error: "malformed frame"})
			continue
		}
		g.reply(c, g.dispatch(c, req))
	}
}

func (g *Gateway) reply(c *client, resp Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// dispatch maps a frame onto the engine API.
func (g *Gateway) dispatch(c *client, req Request) Response {
	switch req.Op {
	case "initialize_deck":
		if err := g.engine.InitializeDeck(req.RoomID, req.Cards, req.Players); err != nil {
			return failure(req.Op, err)
		}
		g.join(c, req.RoomID)
		return success(req.Op, nil)
	case "join_room":
		g.join(c, req.RoomID)
		return success(req.Op, nil)
	case "draw_cards":
		drawn, err := g.engine.DrawCards(req.RoomID, req.PlayerID, req.Count)
		if err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, drawn)
	case "play_card":
		if err := g.engine.PlayCard(req.RoomID, req.PlayerID, req.CardID); err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, nil)
	case "buy_card":
		if err := g.engine.BuyCard(req.RoomID, req.PlayerID, req.CardID); err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, nil)
	case "discard_cards":
		if err := g.engine.DiscardCards(req.RoomID, req.PlayerID, req.CardIDs); err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, nil)
	case "trash_cards":
		if err := g.engine.TrashCards(req.RoomID, req.PlayerID, req.CardIDs); err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, nil)
	case "cleanup_phase":
		if err := g.engine.CleanupPhase(req.RoomID, req.PlayerID); err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, nil)
	case "advance_turn":
		if err := g.engine.AdvanceTurn(req.RoomID, req.PlayerID); err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, nil)
	case "check_end_conditions":
		result, err := g.engine.CheckEndConditions(req.RoomID)
		if err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, result)
	case "trigger_game_end":
		if err := g.engine.TriggerGameEnd(req.RoomID, game.EndReason(req.Reason)); err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, nil)
	case "get_player_deck_state":
		target := req.TargetID
		if target == "" {
			target = req.PlayerID
		}
		view, err := g.engine.GetPlayerDeckState(req.RoomID, req.PlayerID, target)
		if err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, view)
	case "get_supply_state":
		views, err := g.engine.GetSupplyState(req.RoomID)
		if err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, views)
	case "get_game_stats":
		stats, err := g.engine.GetGameStats(req.RoomID)
		if err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, stats)
	case "calculate_final_rankings":
		entries, err := g.engine.CalculateFinalRankings(req.RoomID)
		if err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, entries)
	case "destroy_room":
		if err := g.engine.DestroyRoom(req.RoomID); err != nil {
			return failure(req.Op, err)
		}
		return success(req.Op, nil)
	default:
		return Response{Op: req.Op, Code: "UNKNOWN_OP", Error: "unknown op"}
	}
}

func (g *Gateway) join(c *client, roomID string) {
	c.mu.Lock()
	c.roomID = roomID
	c.mu.Unlock()
}

func success(op string, data interface{}) Response {
	return Response{Op: op, OK: true, Data: data}
}

func failure(op string, err error) Response {
	return Response{Op: op, Code: errorCode(err), Error: err.Error()}
}

// errorCode maps the engine's typed failures to wire codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return "ROOM_NOT_FOUND"
	case errors.Is(err, game.ErrPlayerNotFound):
		return "PLAYER_NOT_FOUND"
	case errors.Is(err, game.ErrCardNotInHand):
		return "CARD_NOT_IN_HAND"
	case errors.Is(err, game.ErrCardUnavailable):
		return "CARD_UNAVAILABLE"
	case errors.Is(err, game.ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, game.ErrNoBuysRemaining):
		return "NO_BUYS_REMAINING"
	case errors.Is(err, game.ErrNoActionsRemaining):
		return "NO_ACTIONS_REMAINING"
	case errors.Is(err, game.ErrInvalidPhaseForAction):
		return "INVALID_PHASE_FOR_ACTION"
	case errors.Is(err, game.ErrGameAlreadyEnded):
		return "GAME_ALREADY_ENDED"
	case errors.Is(err, game.ErrValidation):
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL"
	}
}

// StartWebSocketServer serves the gateway at /ws until the listener
// fails. Blocking; run it in its own goroutine.
func StartWebSocketServer(cfg config.WebSocketConfig, engine *game.Engine, logger *zap.Logger) error {
	gateway := NewGateway(engine, logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", gateway)
	logger.Info("starting websocket server", zap.String("address", cfg.Address))
	return http.ListenAndServe(cfg.Address, mux)
}
