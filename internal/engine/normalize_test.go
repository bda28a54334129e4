package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmoravec/pastiche/internal/hist"
	"github.com/tmoravec/pastiche/internal/testutil"
)

func stagedAt(row int, op string, instance int, label string) hist.StagingEntry {
	return hist.StagingEntry{
		Row:           row,
		Operation:     op,
		Instance:      instance,
		InstanceLabel: label,
		Enabled:       true,
	}
}

func TestNormalizeInstances_RepairsGaps(t *testing.T) {
	// User copied the 1st and 3rd of three blur instances.
	staging := []hist.StagingEntry{
		stagedAt(1, "blur", 0, "0"),
		stagedAt(2, "blur", 2, "outer"),
	}

	changed := normalizeInstances(staging, testutil.Catalog())

	require.True(t, changed)
	assert.Equal(t, 0, staging[0].Instance)
	assert.Equal(t, 1, staging[1].Instance, "instance 2 renumbered into the gap")
}

func TestNormalizeInstances_AppliesToWholeFamily(t *testing.T) {
	// Two staged edits of the same (operation, instance) pair both move.
	staging := []hist.StagingEntry{
		stagedAt(1, "blur", 3, "x"),
		stagedAt(2, "blur", 3, "x"),
	}

	changed := normalizeInstances(staging, testutil.Catalog())

	require.True(t, changed)
	assert.Equal(t, 0, staging[0].Instance)
	assert.Equal(t, 0, staging[1].Instance)
}

func TestNormalizeInstances_SkipsSingleInstanceOperations(t *testing.T) {
	staging := []hist.StagingEntry{
		stagedAt(1, "exposure", 0, "0"),
		stagedAt(2, "blur", 1, "0"),
	}

	changed := normalizeInstances(staging, testutil.Catalog())

	require.True(t, changed)
	assert.Equal(t, 0, staging[0].Instance, "single-instance operation never renumbered")
	assert.Equal(t, 0, staging[1].Instance)
}

func TestNormalizeInstances_Idempotent(t *testing.T) {
	staging := []hist.StagingEntry{
		stagedAt(1, "blur", 0, "0"),
		stagedAt(2, "blur", 2, "a"),
		stagedAt(3, "sharpen", 1, "b"),
	}

	require.True(t, normalizeInstances(staging, testutil.Catalog()))

	// Second run must be a no-op.
	assert.False(t, normalizeInstances(staging, testutil.Catalog()))
	assert.Equal(t, 0, staging[0].Instance)
	assert.Equal(t, 1, staging[1].Instance)
	assert.Equal(t, 0, staging[2].Instance)
}

func TestNormalizeInstances_AlreadyContiguousNoChange(t *testing.T) {
	staging := []hist.StagingEntry{
		stagedAt(1, "blur", 0, "0"),
		stagedAt(2, "blur", 1, "a"),
	}

	assert.False(t, normalizeInstances(staging, testutil.Catalog()))
}

func TestNormalizeInstances_IndependentPerOperation(t *testing.T) {
	staging := []hist.StagingEntry{
		stagedAt(1, "blur", 5, "0"),
		stagedAt(2, "sharpen", 2, "0"),
		stagedAt(3, "sharpen", 4, "0"),
	}

	require.True(t, normalizeInstances(staging, testutil.Catalog()))

	assert.Equal(t, 0, staging[0].Instance)
	assert.Equal(t, 0, staging[1].Instance)
	assert.Equal(t, 1, staging[2].Instance)
}
