package blackjack

import (
	"errors"
	"fmt"
)

// Reason is the machine-readable cause of a rejected request. Callers use it
// to decide whether a retry can succeed.
type Reason string

const (
	ReasonWrongPhase        Reason = "wrong_phase"
	ReasonNotSeated         Reason = "not_seated"
	ReasonAlreadySeated     Reason = "already_seated"
	ReasonSeatTaken         Reason = "seat_taken"
	ReasonInvalidSeat       Reason = "invalid_seat"
	ReasonNotYourTurn       Reason = "not_your_turn"
	ReasonHandFinished      Reason = "hand_finished"
	ReasonAlreadyWagered    Reason = "already_wagered"
	ReasonInvalidWager      Reason = "invalid_wager"
	ReasonInvalidAction     Reason = "invalid_action"
	ReasonInsufficientFunds Reason = "insufficient_funds"
	ReasonBankrollExceeded  Reason = "bankroll_exceeded"
	ReasonHandInRound       Reason = "hand_in_round"
)

// RuleError is a rejected action or request. No table state has been touched
// when one is returned.
type RuleError struct {
	Reason  Reason
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

// NewRuleError builds a rejection with a machine-readable reason.
func NewRuleError(reason Reason, format string, args ...interface{}) *RuleError {
	return &RuleError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func rejected(reason Reason, format string, args ...interface{}) *RuleError {
	return NewRuleError(reason, format, args...)
}

// AsRuleError unwraps err as a RuleError if it is one.
func AsRuleError(err error) (*RuleError, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
