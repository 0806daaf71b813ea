package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camportal/internal/model"
)

func TestAnalyzeArchiveEmpty(t *testing.T) {
	a := AnalyzeArchive(nil, time.Now())

	assert.Equal(t, 0, a.TotalFragments)
	assert.Equal(t, 0.0, a.DepthDays)
	assert.Equal(t, 0.0, a.CoveragePct)
	assert.Equal(t, int64(0), a.MaxGap)
	assert.Empty(t, a.Daily)
}

func TestAnalyzeArchiveCoverageAndGaps(t *testing.T) {
	// One day in UTC, three fragments with two gaps (only one above threshold).
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	base := day.Unix()
	now := day.Add(24 * time.Hour)

	fragments := []model.Fragment{
		{Since: base, Till: base + 3600},                // 1h
		{Since: base + 3630, Till: base + 7200},         // 30s pause: continuous
		{Since: base + 10800, Till: base + 14400},       // 1h gap before this one
	}

	a := AnalyzeArchive(fragments, now)

	assert.Equal(t, 3, a.TotalFragments)
	assert.Equal(t, int64(3600+3570+3600), a.TotalRecorded)
	assert.Equal(t, int64(14400), a.TotalSpan)
	assert.Equal(t, 1, a.GapsCount)
	assert.Equal(t, int64(3600), a.MaxGap)
	assert.Equal(t, int64(3600), a.TotalGapTime)
	assert.Equal(t, 1.0, a.DepthDays)
	assert.InDelta(t, 74.8, a.CoveragePct, 0.1)

	require.Len(t, a.Daily, 1)
	d := a.Daily[0]
	assert.Equal(t, "2025-03-10", d.Date)
	assert.Equal(t, 3, d.Fragments)
	assert.Equal(t, 1, d.GapsCount)
	assert.Equal(t, int64(3600), d.MaxGap)
	require.Len(t, d.Timeline, 3)
	assert.Equal(t, 0.0, d.Timeline[0].Left)
	assert.InDelta(t, 4.17, d.Timeline[0].Width, 0.01)
}

func TestAnalyzeArchiveSortsFragments(t *testing.T) {
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC).Unix()
	now := time.Unix(base+86400, 0).UTC()

	fragments := []model.Fragment{
		{Since: base + 7200, Till: base + 10800},
		{Since: base, Till: base + 3600},
	}

	a := AnalyzeArchive(fragments, now)

	assert.Equal(t, int64(10800), a.TotalSpan)
	assert.Equal(t, 1, a.GapsCount)
	assert.Equal(t, int64(3600), a.MaxGap)
}

func TestAnalyzeArchiveSpansDays(t *testing.T) {
	// A fragment crossing midnight is clipped into both day timelines but its
	// recorded time is attributed to its starting day.
	d1 := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	fragments := []model.Fragment{
		{Since: d1.Unix(), Till: d1.Add(2 * time.Hour).Unix()},
		{Since: d1.Add(5 * time.Hour).Unix(), Till: d1.Add(6 * time.Hour).Unix()},
	}

	a := AnalyzeArchive(fragments, now)

	require.Len(t, a.Daily, 2)
	assert.Equal(t, "2025-03-10", a.Daily[0].Date)
	assert.Equal(t, "2025-03-11", a.Daily[1].Date)

	// Day one holds the full crossing fragment's recorded seconds.
	assert.Equal(t, int64(7200), a.Daily[0].Recorded)
	// Its timeline segment is clipped at midnight: 23:00-24:00.
	require.Len(t, a.Daily[0].Timeline, 1)
	assert.InDelta(t, 95.83, a.Daily[0].Timeline[0].Left, 0.01)
	assert.InDelta(t, 4.17, a.Daily[0].Timeline[0].Width, 0.01)
}

func TestAnalyzeArchiveCurrentDayProrated(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	now := day.Add(6 * time.Hour) // quarter of the day elapsed

	fragments := []model.Fragment{
		{Since: day.Unix(), Till: day.Add(3 * time.Hour).Unix()},
	}

	a := AnalyzeArchive(fragments, now)

	require.Len(t, a.Daily, 1)
	// 3h recorded out of 6h elapsed.
	assert.Equal(t, 50.0, a.Daily[0].CoveragePct)
}

func TestAnalyzeArchiveMinimumSegmentWidth(t *testing.T) {
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := day.Add(12 * time.Hour)

	// A 10 second clip would render at ~0.01% width; it is floored to 0.3.
	fragments := []model.Fragment{
		{Since: day.Unix(), Till: day.Unix() + 10},
	}

	a := AnalyzeArchive(fragments, now)
	require.Len(t, a.Daily, 1)
	require.Len(t, a.Daily[0].Timeline, 1)
	assert.Equal(t, 0.3, a.Daily[0].Timeline[0].Width)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{45, "45 sec"},
		{180, "3 min"},
		{3660, "1 h 1 min"},
		{7800, "2 h 10 min"},
		{90000, "1 d 1 h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds))
	}
}
