package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camportal/internal/model"
)

func cam(uid, vendor, mod, dc string, online bool) model.Camera {
	c := model.Camera{UID: uid, Vendor: vendor, Model: mod, IsOnline: online}
	if dc != "" {
		c.DataCenter = &model.DataCenter{Name: dc}
	}
	return c
}

func TestComputeSummaryCounts(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cameras := []model.Camera{
		cam("a", "Hikvision", "DS-1", "msk", true),
		cam("b", "Hikvision", "DS-2", "msk", false),
		cam("c", "Dahua", "IPC-1", "spb", true),
		cam("d", "", "", "", true),
	}

	s := ComputeSummary(cameras, now)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Online)
	assert.Equal(t, 1, s.Offline)
	assert.Equal(t, 75.0, s.OnlinePct)
	assert.Equal(t, 25.0, s.OfflinePct)

	require.Contains(t, s.ByVendor, "Hikvision")
	assert.Equal(t, &StatusCount{Total: 2, Online: 1, Offline: 1}, s.ByVendor["Hikvision"])
	assert.Equal(t, &StatusCount{Total: 1, Online: 1}, s.ByVendor["Unknown"])
	assert.Equal(t, &StatusCount{Total: 2, Online: 1, Offline: 1}, s.ByDC["msk"])
	assert.Equal(t, &StatusCount{Total: 1, Online: 1}, s.ByDC["Unknown"])

	require.NotEmpty(t, s.TopVendors)
	assert.Equal(t, "Hikvision", s.TopVendors[0].Vendor)
	assert.Equal(t, 2, s.TopVendors[0].Total)
}

func TestComputeSummaryEmptyFleet(t *testing.T) {
	s := ComputeSummary(nil, time.Now())
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.OnlinePct)
	assert.Empty(t, s.LongOffline)
	assert.Empty(t, s.MemoryIssues)
}

func TestComputeSummaryMemoryIssues(t *testing.T) {
	mk := func(uid, state string) model.Camera {
		return model.Camera{UID: uid, IsOnline: true, MemoryCardState: &model.MemoryCardState{State: state}}
	}
	cameras := []model.Camera{
		mk("ok", "CardOK"),
		mk("missing", "CardNotFound"),
		mk("unknown", "Unknown"),
		mk("blank", ""),
		mk("bad", "CardError"),
		mk("full", "CardFull"),
	}

	s := ComputeSummary(cameras, time.Now())

	require.Len(t, s.MemoryIssues, 2)
	assert.Equal(t, "bad", s.MemoryIssues[0].UID)
	assert.Equal(t, "full", s.MemoryIssues[1].UID)
}

func TestComputeSummaryLongOffline(t *testing.T) {
	now := time.Unix(100_000, 0)
	cameras := []model.Camera{
		{UID: "recent", OfflineSince: now.Unix() - 600},           // 10 min, below threshold
		{UID: "old", OfflineSince: now.Unix() - 7200},             // 2h
		{UID: "older", OfflineSince: now.Unix() - 10*3600},        // 10h
		{UID: "online", IsOnline: true, OfflineSince: now.Unix()}, // online, ignored
		{UID: "no-ts"}, // offline but no timestamp
	}

	s := ComputeSummary(cameras, now)

	require.Len(t, s.LongOffline, 2)
	assert.Equal(t, "older", s.LongOffline[0].Camera.UID)
	assert.Equal(t, "old", s.LongOffline[1].Camera.UID)
	assert.Equal(t, float64(10*3600), s.LongOffline[0].Duration)
}

func TestComputeSummaryTopVendorsCapped(t *testing.T) {
	var cameras []model.Camera
	for i := 0; i < 12; i++ {
		cameras = append(cameras, cam("u", string(rune('A'+i)), "m", "dc", true))
	}
	s := ComputeSummary(cameras, time.Now())
	assert.Len(t, s.TopVendors, 10)
}
