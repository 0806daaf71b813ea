package stats

import (
	"sort"
	"time"

	"camportal/internal/model"
)

// Package stats computes fleet-level summaries and per-camera archive
// integrity analyses from provider data.

// LongOfflineThreshold is how long a camera must be offline before it is
// listed in the summary's long-offline section.
const LongOfflineThreshold = time.Hour

// StatusCount is an online/offline breakdown for one grouping key.
type StatusCount struct {
	Total   int `json:"total"`
	Online  int `json:"online"`
	Offline int `json:"offline"`
}

// VendorCount pairs a vendor name with its status breakdown, used for the
// ordered top-vendors list.
type VendorCount struct {
	Vendor string `json:"vendor"`
	StatusCount
}

// OfflineCamera is a camera together with how long it has been offline.
type OfflineCamera struct {
	Camera   model.Camera `json:"camera"`
	Duration float64      `json:"duration"`
}

// Summary is the dashboard fleet overview.
type Summary struct {
	Total        int                     `json:"total"`
	Online       int                     `json:"online"`
	Offline      int                     `json:"offline"`
	OnlinePct    float64                 `json:"online_pct"`
	OfflinePct   float64                 `json:"offline_pct"`
	ByVendor     map[string]*StatusCount `json:"by_vendor"`
	TopVendors   []VendorCount           `json:"top_vendors"`
	ByModel      map[string]*StatusCount `json:"by_model"`
	ByDC         map[string]*StatusCount `json:"by_dc"`
	MemoryIssues []model.Camera          `json:"memory_issues"`
	LongOffline  []OfflineCamera         `json:"long_offline"`
}

func bump(m map[string]*StatusCount, key string, online bool) {
	sc := m[key]
	if sc == nil {
		sc = &StatusCount{}
		m[key] = sc
	}
	sc.Total++
	if online {
		sc.Online++
	} else {
		sc.Offline++
	}
}

// ComputeSummary builds the fleet overview for the given cameras.
// MemoryIssues is capped at 20 entries, LongOffline at 10 (sorted by offline
// duration, longest first), TopVendors at 10 (largest fleets first).
func ComputeSummary(cameras []model.Camera, now time.Time) *Summary {
	s := &Summary{
		Total:        len(cameras),
		ByVendor:     make(map[string]*StatusCount),
		ByModel:      make(map[string]*StatusCount),
		ByDC:         make(map[string]*StatusCount),
		MemoryIssues: []model.Camera{},
		LongOffline:  []OfflineCamera{},
	}

	nowUnix := float64(now.Unix())
	var longOffline []OfflineCamera

	for i := range cameras {
		cam := &cameras[i]
		online := cam.IsOnline
		if online {
			s.Online++
		}

		bump(s.ByVendor, cam.VendorName(), online)
		bump(s.ByModel, cam.ModelName(), online)
		bump(s.ByDC, cam.DataCenterName(), online)

		if cam.HasMemoryCardIssue() {
			s.MemoryIssues = append(s.MemoryIssues, *cam)
		}

		if !online && cam.OfflineSince > 0 {
			duration := nowUnix - float64(cam.OfflineSince)
			if duration > LongOfflineThreshold.Seconds() {
				longOffline = append(longOffline, OfflineCamera{Camera: *cam, Duration: duration})
			}
		}
	}

	s.Offline = s.Total - s.Online
	if s.Total > 0 {
		s.OnlinePct = round1(float64(s.Online) / float64(s.Total) * 100)
		s.OfflinePct = round1(float64(s.Offline) / float64(s.Total) * 100)
	}

	sort.Slice(longOffline, func(i, j int) bool {
		return longOffline[i].Duration > longOffline[j].Duration
	})
	if len(longOffline) > 10 {
		longOffline = longOffline[:10]
	}
	s.LongOffline = append(s.LongOffline, longOffline...)

	if len(s.MemoryIssues) > 20 {
		s.MemoryIssues = s.MemoryIssues[:20]
	}

	top := make([]VendorCount, 0, len(s.ByVendor))
	for vendor, sc := range s.ByVendor {
		top = append(top, VendorCount{Vendor: vendor, StatusCount: *sc})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Total != top[j].Total {
			return top[i].Total > top[j].Total
		}
		return top[i].Vendor < top[j].Vendor
	})
	if len(top) > 10 {
		top = top[:10]
	}
	s.TopVendors = top

	return s
}
