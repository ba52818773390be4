package game

import "errors"

// Engine failures are sentinel values so callers can discriminate with
// errors.Is regardless of the wrapping context added along the way.
// All of them are recoverable, per-request rejections; the engine never
// panics on a bad request.
var (
	// ErrRoomNotFound indicates the room ID is not registered.
	ErrRoomNotFound = errors.New("room not found")

	// ErrPlayerNotFound indicates the player is not part of the room.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrCardNotInHand indicates a play or discard referenced a card that
	// is not in the player's hand.
	ErrCardNotInHand = errors.New("card not in hand")

	// ErrCardUnavailable indicates the supply pile is missing or empty.
	ErrCardUnavailable = errors.New("card unavailable in supply")

	// ErrInsufficientFunds indicates the card costs more than the
	// player's coins.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoBuysRemaining indicates the player has no buys left this turn.
	ErrNoBuysRemaining = errors.New("no buys remaining")

	// ErrNoActionsRemaining indicates the player has no actions left.
	ErrNoActionsRemaining = errors.New("no actions remaining")

	// ErrInvalidPhaseForAction indicates the action is not legal in the
	// current phase, or the player does not have the turn.
	ErrInvalidPhaseForAction = errors.New("action not allowed in current phase")

	// ErrGameAlreadyEnded indicates the session is frozen.
	ErrGameAlreadyEnded = errors.New("game already ended")

	// ErrValidation indicates malformed input (missing required fields,
	// duplicate room, empty player list).
	ErrValidation = errors.New("validation error")
)
