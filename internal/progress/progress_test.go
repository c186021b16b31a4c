package progress

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommonPatternsExtractPercent(t *testing.T) {
	t.Parallel()

	value, ok := Match("45%", CommonPatterns())
	require.True(t, ok)
	require.InDelta(t, 45.0, value, 0.001)
}

func TestCommonPatternsExtractFraction(t *testing.T) {
	t.Parallel()

	value, ok := Match("123/456", CommonPatterns())
	require.True(t, ok)
	require.InDelta(t, 26.97, value, 0.01)
}

func TestFrameCounterReportsRawCount(t *testing.T) {
	t.Parallel()

	value, ok := Match("frame=  813 fps= 25 q=28.0", CommonPatterns())
	require.True(t, ok)
	require.InDelta(t, 813.0, value, 0.001)
}

func TestNoMatchYieldsNothing(t *testing.T) {
	t.Parallel()

	_, ok := Match("encoding started", CommonPatterns())
	require.False(t, ok)
}

func TestPatternOrderDeterminesWinner(t *testing.T) {
	t.Parallel()

	first := MustPattern("first", `(\d+)`, func(groups []string) (float64, error) {
		return 1, nil
	})
	second := MustPattern("second", `(\d+)`, func(groups []string) (float64, error) {
		return 2, nil
	})

	value, ok := Match("step 7", []Pattern{first, second})
	require.True(t, ok)
	require.Equal(t, 1.0, value)

	value, ok = Match("step 7", []Pattern{second, first})
	require.True(t, ok)
	require.Equal(t, 2.0, value)
}

func TestExtractionFailureSkipsLine(t *testing.T) {
	t.Parallel()

	failing := MustPattern("failing", `(\d+)%`, func(groups []string) (float64, error) {
		return 0, fmt.Errorf("bad scale")
	})

	_, ok := Match("45%", []Pattern{failing})
	require.False(t, ok)

	// The first structural match owns the line: a later pattern that could
	// have extracted a value never gets the chance.
	_, ok = Match("45%", []Pattern{failing, Percent()})
	require.False(t, ok)
}

func TestValuesAreNotClamped(t *testing.T) {
	t.Parallel()

	value, ok := Match("150%", CommonPatterns())
	require.True(t, ok)
	require.InDelta(t, 150.0, value, 0.001)
}

func TestFractionWithZeroTotalIsDiscarded(t *testing.T) {
	t.Parallel()

	_, ok := Match("3/0", []Pattern{Fraction()})
	require.False(t, ok)
}

func TestPresetLookup(t *testing.T) {
	t.Parallel()

	patterns, ok := Preset("common")
	require.True(t, ok)
	require.Len(t, patterns, 3)

	patterns, ok = Preset("ffmpeg-frame")
	require.True(t, ok)
	require.Len(t, patterns, 1)
	require.Equal(t, "ffmpeg-frame", patterns[0].Name)

	_, ok = Preset("unknown")
	require.False(t, ok)
}

func TestNewPatternRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := NewPattern("broken", `([`, func(groups []string) (float64, error) { return 0, nil })
	require.Error(t, err)

	_, err = NewPattern("nilextract", `(\d+)`, nil)
	require.Error(t, err)
}
