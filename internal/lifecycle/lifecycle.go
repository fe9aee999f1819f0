// Package lifecycle holds the status transition tables for routes, cargo and
// offers.
package lifecycle

import (
	"fmt"
	"time"

	"freight-pricing-service/internal/model"
)

type InvalidStatusTransitionError struct {
	Kind      model.EntityKind
	Current   string
	Requested string
	Allowed   []string
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition from %q to %q", e.Kind, e.Current, e.Requested)
}

// Machine is a from-state to allowed-next-states table for one entity kind.
type Machine[S ~string] struct {
	kind    model.EntityKind
	allowed map[S][]S
}

func newMachine[S ~string](kind model.EntityKind, allowed map[S][]S) Machine[S] {
	return Machine[S]{kind: kind, allowed: allowed}
}

// Known reports whether s is a state of this machine.
func (m Machine[S]) Known(s S) bool {
	_, ok := m.allowed[s]
	return ok
}

func (m Machine[S]) Can(from, to S) bool {
	for _, next := range m.allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next returns the states reachable from s in one step.
func (m Machine[S]) Next(s S) []S {
	return append([]S(nil), m.allowed[s]...)
}

// Transition validates current -> requested and returns the history entry to
// append. Nothing is recorded when the transition is rejected.
func (m Machine[S]) Transition(current, requested S, comment string, at time.Time) (model.StatusHistoryEntry, error) {
	if !m.Can(current, requested) {
		next := m.Next(current)
		allowed := make([]string, 0, len(next))
		for _, s := range next {
			allowed = append(allowed, string(s))
		}
		return model.StatusHistoryEntry{}, &InvalidStatusTransitionError{
			Kind:      m.kind,
			Current:   string(current),
			Requested: string(requested),
			Allowed:   allowed,
		}
	}
	return model.StatusHistoryEntry{
		EntityKind:     m.kind,
		PreviousStatus: string(current),
		Status:         string(requested),
		Comment:        comment,
		Timestamp:      at.UTC(),
	}, nil
}

var Route = newMachine(model.KindRoute, map[model.RouteStatus][]model.RouteStatus{
	model.RouteDraft:      {model.RoutePlanned, model.RouteCancelled},
	model.RoutePlanned:    {model.RouteInProgress, model.RouteCancelled},
	model.RouteInProgress: {model.RouteCompleted, model.RouteCancelled},
	model.RouteCompleted:  {},
	model.RouteCancelled:  {},
})

var Cargo = newMachine(model.KindCargo, map[model.CargoStatus][]model.CargoStatus{
	model.CargoPending:   {model.CargoInTransit, model.CargoCancelled},
	model.CargoInTransit: {model.CargoDelivered, model.CargoCancelled},
	model.CargoDelivered: {},
	model.CargoCancelled: {},
})

var Offer = newMachine(model.KindOffer, map[model.OfferStatus][]model.OfferStatus{
	model.OfferDraft:     {model.OfferFinalized},
	model.OfferFinalized: {},
})

// TransitionStatus dispatches on kind for callers holding plain strings.
func TransitionStatus(kind model.EntityKind, current, requested, comment string) (string, model.StatusHistoryEntry, error) {
	now := time.Now()

	var (
		entry model.StatusHistoryEntry
		err   error
	)
	switch kind {
	case model.KindRoute:
		entry, err = Route.Transition(model.RouteStatus(current), model.RouteStatus(requested), comment, now)
	case model.KindCargo:
		entry, err = Cargo.Transition(model.CargoStatus(current), model.CargoStatus(requested), comment, now)
	case model.KindOffer:
		entry, err = Offer.Transition(model.OfferStatus(current), model.OfferStatus(requested), comment, now)
	default:
		return "", model.StatusHistoryEntry{}, fmt.Errorf("unknown entity kind %q", kind)
	}
	if err != nil {
		return "", model.StatusHistoryEntry{}, err
	}
	return entry.Status, entry, nil
}
