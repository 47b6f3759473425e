package statemachine

import (
	"errors"
	"fmt"
	"time"

	"dinehub/pkg/models"
)

var (
	ErrAlreadyTerminal = errors.New("order is already in a terminal status")
	ErrUnknownStatus   = errors.New("unknown order status")
)

// InvalidTransitionError reports a disallowed move, carrying both ends
// for diagnostics.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from '%s' to '%s'", e.From, e.To)
}

// forwardRank orders the happy-path statuses. A forward move may skip
// intermediate statuses (e.g. pending straight to preparing).
var forwardRank = map[string]int{
	models.StatusPending:   0,
	models.StatusConfirmed: 1,
	models.StatusPreparing: 2,
	models.StatusReady:     3,
	models.StatusServed:    4,
	models.StatusCompleted: 5,
}

// backward lists the operational corrections kitchen staff may make.
var backward = map[string]string{
	models.StatusPreparing: models.StatusPending,
	models.StatusReady:     models.StatusPreparing,
}

// Effects describes the side effects a transition must apply atomically
// with the status write.
type Effects struct {
	Target          string
	SetStartedAt    bool
	SetCompletedAt  bool
	PrepTimeSeconds *int
	Settle          bool
}

func IsTerminal(status string) bool {
	return status == models.StatusCompleted || status == models.StatusCancelled
}

func known(status string) bool {
	if status == models.StatusCancelled {
		return true
	}
	_, ok := forwardRank[status]
	return ok
}

// CanTransition reports whether target is reachable from current.
func CanTransition(current, target string) bool {
	if target == models.StatusCancelled {
		return !IsTerminal(current)
	}
	if backward[current] == target {
		return true
	}
	from, okFrom := forwardRank[current]
	to, okTo := forwardRank[target]
	return okFrom && okTo && to > from
}

// Apply validates the transition and derives its side effects. The order
// is not mutated; the caller persists the effects together with the
// status write.
func Apply(order *models.Order, target string, now time.Time) (Effects, error) {
	if !known(target) {
		return Effects{}, fmt.Errorf("%w: %q", ErrUnknownStatus, target)
	}
	if IsTerminal(order.Status) {
		return Effects{}, ErrAlreadyTerminal
	}
	if !CanTransition(order.Status, target) {
		return Effects{}, &InvalidTransitionError{From: order.Status, To: target}
	}

	eff := Effects{Target: target}
	switch target {
	case models.StatusPreparing:
		// started_at is recorded once, on the first entry into preparing
		if order.StartedAt == nil {
			eff.SetStartedAt = true
		}
	case models.StatusReady:
		// completed_at and prep_time_seconds are recorded together on
		// the first entry into ready, so the pair stays consistent
		// across later corrections
		if order.CompletedAt == nil {
			eff.SetCompletedAt = true
			if order.StartedAt != nil && order.PrepTimeSeconds == nil {
				secs := int(now.Sub(*order.StartedAt).Seconds())
				eff.PrepTimeSeconds = &secs
			}
		}
	case models.StatusCompleted:
		eff.Settle = true
	}
	return eff, nil
}
