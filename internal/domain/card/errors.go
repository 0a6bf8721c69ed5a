package card

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDeckLocked            = errors.New("deck is locked for the season")
	ErrInvalidCard           = errors.New("invalid card")
	ErrDuplicateCard         = errors.New("duplicate card in deck")
	ErrSlotMismatch          = errors.New("deck slot total mismatch")
	ErrTierLimitExceeded     = errors.New("deck tier limit exceeded")
	ErrCardsUnavailable      = errors.New("cards are not available for this race")
	ErrDeadlinePassed        = errors.New("card deadline has passed")
	ErrNotInDeck             = errors.New("card is not in the active deck")
	ErrAlreadyUsedThisSeason = errors.New("card already used this season")
	ErrTargetRequired        = errors.New("card requires a target")
	ErrNoTransformCandidate  = errors.New("no card available to transform into")
)

// UsageConflictError reports the round that already consumed a card.
type UsageConflictError struct {
	CardID string
	Round  int
}

func (e *UsageConflictError) Error() string {
	if e.Round > 0 {
		return fmt.Sprintf("%s: card=%s round=%d", ErrAlreadyUsedThisSeason, e.CardID, e.Round)
	}
	return fmt.Sprintf("%s: card=%s", ErrAlreadyUsedThisSeason, e.CardID)
}

func (e *UsageConflictError) Is(target error) bool {
	return target == ErrAlreadyUsedThisSeason
}

// DeckViolationError collects every rule a proposed deck breaks.
type DeckViolationError struct {
	Violations []error
}

func (e *DeckViolationError) Error() string {
	if len(e.Violations) == 1 {
		return e.Violations[0].Error()
	}
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Error())
	}
	return fmt.Sprintf("deck has %d violations: %s", len(e.Violations), strings.Join(msgs, "; "))
}

func (e *DeckViolationError) Unwrap() []error {
	return e.Violations
}
