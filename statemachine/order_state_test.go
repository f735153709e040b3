package statemachine

import (
	"testing"

	"campus-food-api/models"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	require.NoError(t, CanTransition(models.StatusProcessing, models.StatusCompleted, ActorOwner))
	require.NoError(t, CanTransition(models.StatusProcessing, models.StatusCompleted, ActorCustomer, ActorAdmin))
	require.NoError(t, CanTransition(models.StatusProcessing, models.StatusCancelled, ActorCustomer))

	err := CanTransition(models.StatusProcessing, models.StatusCompleted, ActorCustomer)
	require.ErrorContains(t, err, "processing -> completed")

	err = CanTransition(models.StatusCompleted, models.StatusCancelled, ActorAdmin)
	require.ErrorContains(t, err, "terminal state")
}

func TestValidTransitionsFrom(t *testing.T) {
	require.Equal(t,
		[]models.OrderStatus{models.StatusCompleted, models.StatusCancelled},
		ValidTransitionsFrom(models.StatusProcessing))
	require.Empty(t, ValidTransitionsFrom(models.StatusCancelled))
}

func TestKnown(t *testing.T) {
	require.True(t, Known(models.StatusCompleted))
	require.False(t, Known("delivered"))
}

func TestTerminalStates(t *testing.T) {
	require.Equal(t,
		[]models.OrderStatus{models.StatusCompleted, models.StatusCancelled},
		TerminalStates())
}
