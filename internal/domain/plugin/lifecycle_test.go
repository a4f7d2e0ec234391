package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle_HappyPath(t *testing.T) {
	t.Parallel()

	lc, err := NewLifecycle("install", "foo")
	require.NoError(t, err)
	defer lc.Stop()

	assert.Equal(t, PhasePending, lc.Phase())
	assert.False(t, lc.Done())

	assert.Equal(t, PhaseTransferring, lc.Advance(EventBegin))
	assert.Equal(t, PhaseRecording, lc.Advance(EventTransferred))
	assert.Equal(t, PhaseReloading, lc.Advance(EventRecorded))
	assert.Equal(t, PhaseCompleted, lc.Advance(EventReloaded))

	assert.True(t, lc.Done())
	assert.NoError(t, lc.Err())
	assert.Equal(t, []Phase{PhasePending, PhaseTransferring, PhaseRecording, PhaseReloading, PhaseCompleted}, lc.History())
}

func TestLifecycle_FailRecordsError(t *testing.T) {
	t.Parallel()

	lc, err := NewLifecycle("remove", "foo")
	require.NoError(t, err)
	defer lc.Stop()

	lc.Advance(EventBegin)
	cause := errors.New("git clone failed")
	assert.Equal(t, PhaseFailed, lc.Fail(cause))

	assert.True(t, lc.Done())
	assert.Equal(t, cause, lc.Err())
	assert.Equal(t, []Phase{PhasePending, PhaseTransferring, PhaseFailed}, lc.History())
}

func TestLifecycle_IgnoresOutOfOrderEvents(t *testing.T) {
	t.Parallel()

	lc, err := NewLifecycle("install", "foo")
	require.NoError(t, err)
	defer lc.Stop()

	assert.Equal(t, PhasePending, lc.Advance(EventRecorded))
	assert.Equal(t, PhasePending, lc.Advance("UNKNOWN"))
	assert.Equal(t, []Phase{PhasePending}, lc.History())
}

func TestLifecycle_ResetClearsError(t *testing.T) {
	t.Parallel()

	lc, err := NewLifecycle("install", "foo")
	require.NoError(t, err)
	defer lc.Stop()

	lc.Fail(errors.New("boom"))
	require.Error(t, lc.Err())

	assert.Equal(t, PhasePending, lc.Advance(EventReset))
	assert.NoError(t, lc.Err())
	assert.False(t, lc.Done())
}
