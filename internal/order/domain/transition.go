package domain

import "github.com/dmehra2102/pos-backend/pkg/apperr"

// TransitionPolicy decides whether an order may move from one status to another.
type TransitionPolicy interface {
	Allow(from, to Status) error
}

// StrictTransitions enforces the order lifecycle. PENDING may go straight to
// COMPLETED for counter sales that are paid and handed over at once.
type StrictTransitions struct{}

var allowed = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCompleted, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func (StrictTransitions) Allow(from, to Status) error {
	for _, s := range allowed[from] {
		if s == to {
			return nil
		}
	}
	return apperr.InvalidArgument("cannot change order status from %s to %s", from, to)
}

// PermissiveTransitions lets any status become any other.
type PermissiveTransitions struct{}

func (PermissiveTransitions) Allow(Status, Status) error { return nil }

func NewTransitionPolicy(strict bool) TransitionPolicy {
	if strict {
		return StrictTransitions{}
	}
	return PermissiveTransitions{}
}

// RestoresStock reports whether moving from -> to must put the items back on
// the shelf. Only the edge into CANCELLED does.
func RestoresStock(from, to Status) bool {
	return to == StatusCancelled && from != StatusCancelled
}
