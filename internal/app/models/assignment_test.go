package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentFSMStartFromPending(t *testing.T) {
	machine := NewAssignmentFSM(AssignmentPending)

	require.NoError(t, machine.Event(context.Background(), AssignmentEventStart))
	assert.Equal(t, string(AssignmentInProgress), machine.Current())
}

func TestAssignmentFSMFinalizeFromPendingAndInProgress(t *testing.T) {
	machine := NewAssignmentFSM(AssignmentPending)
	require.NoError(t, machine.Event(context.Background(), AssignmentEventFinalize))
	assert.Equal(t, string(AssignmentCompleted), machine.Current())

	machine = NewAssignmentFSM(AssignmentInProgress)
	require.NoError(t, machine.Event(context.Background(), AssignmentEventFinalize))
	assert.Equal(t, string(AssignmentCompleted), machine.Current())
}

func TestAssignmentFSMCompletedIsTerminal(t *testing.T) {
	machine := NewAssignmentFSM(AssignmentCompleted)

	assert.Error(t, machine.Event(context.Background(), AssignmentEventStart))
	assert.Error(t, machine.Event(context.Background(), AssignmentEventFinalize))
	assert.Equal(t, string(AssignmentCompleted), machine.Current())
}

func TestAssignmentFSMStartFromInProgressRejected(t *testing.T) {
	machine := NewAssignmentFSM(AssignmentInProgress)

	assert.Error(t, machine.Event(context.Background(), AssignmentEventStart))
}
