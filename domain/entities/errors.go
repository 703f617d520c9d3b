package entities

import "errors"

// Lottery errors. Messages are shown to Discord users as-is.
var (
	// ErrNotOwner is returned when a non-owner tries to start or reset a lottery
	ErrNotOwner = errors.New("caller is not the owner")

	// ErrInvalidTransition is matched by every lifecycle error below
	ErrInvalidTransition = errors.New("lottery: invalid transition")

	// ErrInvalidPayment is returned when the payment is not exactly the ticket price
	ErrInvalidPayment = errors.New("lottery: invalid ticket price")

	// ErrInvalidLotteryConfig is returned for a non-positive ticket price or capacity
	ErrInvalidLotteryConfig = errors.New("lottery: ticket price and max ticket count must be positive")

	ErrLotteryNotFound     = errors.New("lottery: no lottery exists for this guild")
	ErrLotteryExists       = errors.New("lottery: a lottery already exists for this guild")
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrAlreadyStartedOrEnded error = &TransitionError{Reason: "already started or ended"}
	ErrNotStartedOrEnded     error = &TransitionError{Reason: "not started or ended"}
	ErrNotEnded              error = &TransitionError{Reason: "not ended"}
)

// TransitionError names the lifecycle precondition an operation violated
type TransitionError struct {
	Reason string
}

// Error implements the error interface
func (e *TransitionError) Error() string {
	return "lottery: " + e.Reason
}

// Is reports every TransitionError as an ErrInvalidTransition
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
