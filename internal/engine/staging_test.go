package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmoravec/pastiche/internal/hist"
	"github.com/tmoravec/pastiche/internal/testutil"
)

func TestBuildStaging_CollapseKeepsOnlyLiveEntries(t *testing.T) {
	// blur instance 0 edited twice; only the later edit is live.
	src := []hist.Entry{
		testutil.Entry(0, "exposure", 0, true),
		testutil.Entry(1, "blur", 0, true),
		testutil.Entry(2, "blur", 0, false),
	}

	staged := buildStaging(src, nil, true)

	require.Len(t, staged, 2)
	assert.Equal(t, "exposure", staged[0].Operation)
	assert.Equal(t, "blur", staged[1].Operation)
	assert.False(t, staged[1].Enabled, "live entry is the most recent edit")
}

func TestBuildStaging_SelectionPicksExactSeqs(t *testing.T) {
	src := []hist.Entry{
		testutil.Entry(0, "exposure", 0, true),
		testutil.Entry(1, "blur", 0, true),
		testutil.Entry(2, "blur", 0, false),
	}

	staged := buildStaging(src, []int{0, 2}, false)

	require.Len(t, staged, 2)
	assert.Equal(t, 0, staged[0].Seq)
	assert.Equal(t, 2, staged[1].Seq)
}

func TestBuildStaging_SelectionIgnoresUnknownSeqs(t *testing.T) {
	src := []hist.Entry{
		testutil.Entry(0, "exposure", 0, true),
	}

	staged := buildStaging(src, []int{0, 7, 99}, false)

	require.Len(t, staged, 1)
	assert.Equal(t, 0, staged[0].Seq)
}

func TestBuildStaging_DefaultTakesEverything(t *testing.T) {
	src := []hist.Entry{
		testutil.Entry(0, "blur", 0, true),
		testutil.Entry(1, "blur", 0, false),
	}

	staged := buildStaging(src, nil, false)

	require.Len(t, staged, 2, "full copy keeps superseded edits")
}

func TestBuildStaging_RowsAreOneBased(t *testing.T) {
	src := []hist.Entry{
		testutil.Entry(0, "blur", 0, true),
		testutil.Entry(1, "sharpen", 0, true),
	}

	staged := buildStaging(src, nil, false)

	require.Len(t, staged, 2)
	assert.Equal(t, 1, staged[0].Row)
	assert.Equal(t, 2, staged[1].Row)
}

func TestBuildStaging_EmptySource(t *testing.T) {
	assert.Empty(t, buildStaging(nil, nil, true))
	assert.Empty(t, buildStaging(nil, []int{1}, false))
}
