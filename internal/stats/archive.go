package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"camportal/internal/model"
)

// GapThreshold is the minimum silence between consecutive fragments that
// counts as a recording gap. Shorter pauses are treated as continuous.
const GapThreshold = 60 * time.Second

// TimelineSegment is one recorded interval of a day, expressed as percentages
// of a 24h bar for rendering.
type TimelineSegment struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
	Title string  `json:"title"`
}

// DayStats is the per-day breakdown of an archive analysis.
type DayStats struct {
	Date        string            `json:"date"`
	Fragments   int               `json:"fragments"`
	Recorded    int64             `json:"recorded"`
	RecordedH   float64           `json:"recorded_h"`
	CoveragePct float64           `json:"coverage_pct"`
	GapsCount   int               `json:"gaps_count"`
	MaxGap      int64             `json:"max_gap"`
	Timeline    []TimelineSegment `json:"timeline"`
}

// Analysis summarizes archive integrity for one camera over a period.
// Durations are in seconds.
type Analysis struct {
	TotalFragments int        `json:"total_fragments"`
	DepthDays      float64    `json:"depth_days"`
	TotalRecorded  int64      `json:"total_recorded"`
	TotalSpan      int64      `json:"total_span"`
	CoveragePct    float64    `json:"coverage_pct"`
	AvgFragment    float64    `json:"avg_fragment"`
	GapsCount      int        `json:"gaps_count"`
	MaxGap         int64      `json:"max_gap"`
	TotalGapTime   int64      `json:"total_gap_time"`
	Daily          []DayStats `json:"daily"`
}

type dayBucket struct {
	recorded int64
	gaps     []int64
	frags    []model.Fragment
}

// AnalyzeArchive computes the integrity analysis for a fragment set.
// An empty set yields a zeroed analysis, never an error: cameras without a
// cloud archive are a normal condition the callers classify separately.
func AnalyzeArchive(fragments []model.Fragment, now time.Time) *Analysis {
	if len(fragments) == 0 {
		return &Analysis{Daily: []DayStats{}}
	}

	sorted := make([]model.Fragment, len(fragments))
	copy(sorted, fragments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Since < sorted[j].Since })

	earliest := sorted[0].Since
	latest := sorted[len(sorted)-1].Till
	totalSpan := latest - earliest

	var totalRecorded int64
	for _, f := range sorted {
		totalRecorded += f.Duration()
	}
	depthDays := (float64(now.Unix()) - float64(earliest)) / 86400

	gapSec := int64(GapThreshold.Seconds())
	var gaps []int64
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Since - sorted[i-1].Till
		if gap > gapSec {
			gaps = append(gaps, gap)
		}
	}

	buckets := make(map[string]*dayBucket)
	bucket := func(day string) *dayBucket {
		b := buckets[day]
		if b == nil {
			b = &dayBucket{}
			buckets[day] = b
		}
		return b
	}

	loc := now.Location()
	dayKey := func(ts int64) string {
		return time.Unix(ts, 0).In(loc).Format("2006-01-02")
	}

	for _, f := range sorted {
		b := bucket(dayKey(f.Since))
		b.recorded += f.Duration()
		b.frags = append(b.frags, f)
	}
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Since - sorted[i-1].Till
		if gap > gapSec {
			bucket(dayKey(sorted[i].Since)).gaps = append(bucket(dayKey(sorted[i].Since)).gaps, gap)
		}
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	daily := make([]DayStats, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		dayTime, _ := time.ParseInLocation("2006-01-02", day, loc)
		dayStart := dayTime.Unix()
		dayEnd := dayStart + 86400
		actualEnd := dayEnd
		if nowUnix := now.Unix(); nowUnix < actualEnd {
			actualEnd = nowUnix
		}
		daySpan := actualEnd - dayStart

		timeline := make([]TimelineSegment, 0, len(b.frags))
		for _, f := range b.frags {
			segStart := max64(f.Since, dayStart)
			segEnd := min64(f.Till, dayEnd)
			if segEnd <= segStart {
				continue
			}
			leftPct := float64(segStart-dayStart) / 86400 * 100
			widthPct := float64(segEnd-segStart) / 86400 * 100
			from := time.Unix(segStart, 0).In(loc).Format("15:04:05")
			to := time.Unix(segEnd, 0).In(loc).Format("15:04:05")
			timeline = append(timeline, TimelineSegment{
				Left:  round2(leftPct),
				Width: round2(math.Max(widthPct, 0.3)),
				Title: fmt.Sprintf("%s - %s (%s)", from, to, FormatDuration(float64(segEnd-segStart))),
			})
		}

		var coverage float64
		if daySpan > 0 {
			coverage = float64(b.recorded) / float64(daySpan) * 100
		}

		daily = append(daily, DayStats{
			Date:        day,
			Fragments:   len(b.frags),
			Recorded:    b.recorded,
			RecordedH:   round1(float64(b.recorded) / 3600),
			CoveragePct: round1(coverage),
			GapsCount:   len(b.gaps),
			MaxGap:      maxOf(b.gaps),
			Timeline:    timeline,
		})
	}

	a := &Analysis{
		TotalFragments: len(sorted),
		DepthDays:      round1(depthDays),
		TotalRecorded:  totalRecorded,
		TotalSpan:      totalSpan,
		AvgFragment:    float64(totalRecorded) / float64(len(sorted)),
		GapsCount:      len(gaps),
		MaxGap:         maxOf(gaps),
		TotalGapTime:   sumOf(gaps),
		Daily:          daily,
	}
	if totalSpan > 0 {
		a.CoveragePct = round1(float64(totalRecorded) / float64(totalSpan) * 100)
	}
	return a
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxOf(xs []int64) int64 {
	var m int64
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}

func sumOf(xs []int64) int64 {
	var s int64
	for _, x := range xs {
		s += x
	}
	return s
}
