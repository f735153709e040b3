package statemachine

import (
	"fmt"
	"slices"
	"strings"

	"campus-food-api/models"
)

// Actors that may change an order's status
const (
	ActorCustomer = "customer" // the user who placed the order
	ActorOwner    = "owner"    // the owner of the ordered restaurant
	ActorAdmin    = "admin"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor string             `json:"actor"`
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Restaurant hands the order over
	{From: models.StatusProcessing, To: models.StatusCompleted, Actor: ActorOwner},
	{From: models.StatusProcessing, To: models.StatusCompleted, Actor: ActorAdmin},
	// Anyone involved can cancel while it is still processing
	{From: models.StatusProcessing, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusProcessing, To: models.StatusCancelled, Actor: ActorOwner},
	{From: models.StatusProcessing, To: models.StatusCancelled, Actor: ActorAdmin},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

var statuses = []models.OrderStatus{models.StatusProcessing, models.StatusCompleted, models.StatusCancelled}

// Known reports whether status is one of the defined order states
func Known(status models.OrderStatus) bool {
	return slices.Contains(statuses, status)
}

// TerminalStates lists the states with no way out
func TerminalStates() []models.OrderStatus {
	var out []models.OrderStatus
	for _, s := range statuses {
		if len(ValidTransitionsFrom(s)) == 0 {
			out = append(out, s)
		}
	}
	return out
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if any of the actors can move from one state to another
func CanTransition(from, to models.OrderStatus, actors ...string) error {
	for _, a := range actors {
		if transitionMap[transitionKey{From: from, To: to, Actor: a}] {
			return nil
		}
	}
	return fmt.Errorf("invalid transition: %s -> %s is not allowed for %s; valid transitions from %s are: %s",
		from, to, strings.Join(actors, "/"), from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
