package screening

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesiliance/screening-cli/internal/model"
)

func sanctions(names ...string) []model.Sanction {
	out := make([]model.Sanction, len(names))
	for i, n := range names {
		out[i] = model.Sanction{ID: int64(i + 1), Name: n}
	}
	return out
}

func TestScreen_EndToEnd(t *testing.T) {
	candidates := []model.Sanction{
		{ID: 1, Name: "Vladimir V. Putin", Country: "RU", Source: "OFAC"},
		{ID: 2, Name: "John Smith"},
	}

	got, err := Screen(context.Background(),
		Request{QueryName: "Vladimir Putin", Threshold: 80, Limit: 5}, candidates)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].SanctionID)
	assert.Equal(t, "Vladimir V. Putin", got[0].Name)
	assert.Equal(t, "RU", got[0].Country)
	assert.Equal(t, "OFAC", got[0].Source)
	assert.GreaterOrEqual(t, got[0].Score, 80.0)
}

func TestScreen_ThresholdHundredKeepsOnlyExact(t *testing.T) {
	candidates := sanctions("John Smith", "Smith John", "Jon Smith", "Someone Else")

	got, err := Screen(context.Background(),
		Request{QueryName: "John Smith", Threshold: 100, Limit: 10}, candidates)
	require.NoError(t, err)

	require.Len(t, got, 2)
	for _, m := range got {
		assert.InDelta(t, 100.0, m.Score, 1e-9)
	}
}

func TestScreen_LimitTruncatesRankedPrefix(t *testing.T) {
	candidates := sanctions("acme corp", "acme corp.", "acme", "acme co", "acme corporation")

	unbounded, err := Screen(context.Background(),
		Request{QueryName: "acme corp", Threshold: 0, Limit: 100}, candidates)
	require.NoError(t, err)
	require.Len(t, unbounded, len(candidates))

	limited, err := Screen(context.Background(),
		Request{QueryName: "acme corp", Threshold: 0, Limit: 3}, candidates)
	require.NoError(t, err)
	require.Len(t, limited, 3)
	assert.Equal(t, unbounded[:3], limited)
}

func TestScreen_StableTieBreak(t *testing.T) {
	// Identical names score identically; input order must survive.
	candidates := []model.Sanction{
		{ID: 10, Name: "Ivan Petrov"},
		{ID: 20, Name: "Ivan Petrov"},
		{ID: 30, Name: "Ivan Petrov"},
	}

	got, err := Screen(context.Background(),
		Request{QueryName: "Ivan Petrov", Threshold: 50, Limit: 10}, candidates)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(10), got[0].SanctionID)
	assert.Equal(t, int64(20), got[1].SanctionID)
	assert.Equal(t, int64(30), got[2].SanctionID)
}

func TestScreen_SortedDescending(t *testing.T) {
	candidates := sanctions("Vladimir V. Putin", "Vladimir Putin", "Vladimir Putinov", "Smith")

	got, err := Screen(context.Background(),
		Request{QueryName: "Vladimir Putin", Threshold: 0, Limit: 10}, candidates)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestScreen_InvalidThreshold(t *testing.T) {
	for _, th := range []int{-1, 101, 1000} {
		_, err := Screen(context.Background(),
			Request{QueryName: "x", Threshold: th, Limit: 5}, sanctions("y"))
		var ipe *InvalidParameterError
		require.ErrorAs(t, err, &ipe, "threshold %d", th)
		assert.Equal(t, "threshold", ipe.Param)
	}
}

func TestScreen_InvalidLimit(t *testing.T) {
	for _, lim := range []int{0, -5} {
		_, err := Screen(context.Background(),
			Request{QueryName: "x", Threshold: 80, Limit: lim}, sanctions("y"))
		var ipe *InvalidParameterError
		require.ErrorAs(t, err, &ipe, "limit %d", lim)
		assert.Equal(t, "limit", ipe.Param)
	}
}

func TestScreen_EmptyCandidates(t *testing.T) {
	got, err := Screen(context.Background(),
		Request{QueryName: "x", Threshold: 80, Limit: 5}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScreen_EmptyQueryMatchesNothingNonEmpty(t *testing.T) {
	got, err := Screen(context.Background(),
		Request{QueryName: "", Threshold: 1, Limit: 5}, sanctions("John Smith"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScreen_ParallelMatchesSerial(t *testing.T) {
	var names []string
	for i := range 1000 {
		names = append(names, fmt.Sprintf("Candidate Number %d Trading Ltd", i))
	}
	names[17] = "Vladimir V. Putin"
	names[617] = "Vladimir Putin"
	candidates := sanctions(names...)

	serial, err := Screen(context.Background(),
		Request{QueryName: "Vladimir Putin", Threshold: 40, Limit: 50}, candidates)
	require.NoError(t, err)

	parallel, err := Screen(context.Background(),
		Request{QueryName: "Vladimir Putin", Threshold: 40, Limit: 50, Workers: 8}, candidates)
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestScreen_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Screen(ctx,
		Request{QueryName: "x", Threshold: 80, Limit: 5}, sanctions("a", "b"))
	require.Error(t, err)
}
