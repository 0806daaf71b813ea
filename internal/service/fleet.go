package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"camportal/internal/cache"
	"camportal/internal/config"
	"camportal/internal/metrics"
	"camportal/internal/model"
	"camportal/internal/rtcam"
	"camportal/internal/stats"
)

// ErrCameraNotFound is returned for detail requests with an unknown uid.
var ErrCameraNotFound = errors.New("camera not found")

// CamerasPerPage is the camera list page size.
const CamerasPerPage = 50

// DetailArchiveDays is how far back the camera detail archive analysis looks.
const DetailArchiveDays = 90

// CameraListQuery holds camera list filters. Q matches name, address, serial
// and uid case-insensitively; Status is "online" or "offline"; Vendor and DC
// are exact matches.
type CameraListQuery struct {
	Q      string
	Status string
	Vendor string
	DC     string
	Page   int
}

// CameraListResult is one page of filtered cameras plus the distinct filter
// values for the whole fleet.
type CameraListResult struct {
	Cameras    []model.Camera `json:"cameras"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Total      int            `json:"total"`
	Vendors    []string       `json:"vendors"`
	DCs        []string       `json:"dcs"`
}

// CameraDetail is one camera plus its recent archive analysis.
type CameraDetail struct {
	Camera  model.Camera    `json:"camera"`
	Archive *stats.Analysis `json:"archive"`
}

// Dashboard is the portal landing payload.
type Dashboard struct {
	Summary *stats.Summary `json:"summary"`
	Health  *rtcam.Health  `json:"health"`
	Now     int64          `json:"now"`
}

// FleetService exposes camera fleet views backed by TTL caches over the
// provider API.
type FleetService interface {
	// Dashboard returns the cached fleet summary and provider health.
	Dashboard(ctx context.Context) (*Dashboard, error)

	// RefreshDashboard drops the camera and summary caches and recomputes.
	RefreshDashboard(ctx context.Context) (*Dashboard, error)

	// ListCameras returns a filtered page of the fleet.
	ListCameras(ctx context.Context, q CameraListQuery) (*CameraListResult, error)

	// CameraDetail returns one camera with its last 90 days archive analysis.
	// A fragment fetch failure degrades to an empty analysis.
	CameraDetail(ctx context.Context, uid string) (*CameraDetail, error)

	// Close releases cache resources.
	Close()
}

type fleetService struct {
	api     rtcam.API
	metrics *metrics.Fleet

	cameras   *cache.Loader[[]model.Camera]
	summary   *cache.Loader[*stats.Summary]
	health    *cache.Loader[*rtcam.Health]
	fragments *cache.Loader[[]model.Fragment]
}

// NewFleetService constructs a FleetService. metrics may be nil.
func NewFleetService(api rtcam.API, cfg config.CacheConfig, m *metrics.Fleet) FleetService {
	return &fleetService{
		api:       api,
		metrics:   m,
		cameras:   cache.NewLoader[[]model.Camera](cfg.CamerasTTL, 2),
		summary:   cache.NewLoader[*stats.Summary](cfg.StatsTTL, 2),
		health:    cache.NewLoader[*rtcam.Health](cfg.HealthTTL, 2),
		fragments: cache.NewLoader[[]model.Fragment](cfg.FragmentsTTL, 256),
	}
}

func (s *fleetService) Close() {
	s.cameras.Stop()
	s.summary.Stop()
	s.health.Stop()
	s.fragments.Stop()
}

func (s *fleetService) allCameras(ctx context.Context) ([]model.Camera, error) {
	return s.cameras.Get(ctx, "all", s.api.AllCameras)
}

func (s *fleetService) fleetSummary(ctx context.Context) (*stats.Summary, error) {
	return s.summary.Get(ctx, "summary", func(ctx context.Context) (*stats.Summary, error) {
		cameras, err := s.allCameras(ctx)
		if err != nil {
			return nil, err
		}
		sum := stats.ComputeSummary(cameras, time.Now())
		if s.metrics != nil {
			s.metrics.CamerasTotal.Set(float64(sum.Total))
			s.metrics.CamerasOnline.Set(float64(sum.Online))
		}
		return sum, nil
	})
}

// providerHealth caches the probe result. Probe failures are cached as an
// error status for the health TTL so a flapping upstream is not hammered.
func (s *fleetService) providerHealth(ctx context.Context) *rtcam.Health {
	h, err := s.health.Get(ctx, "health", func(ctx context.Context) (*rtcam.Health, error) {
		h, err := s.api.Health(ctx)
		if err != nil {
			return &rtcam.Health{Status: "error"}, nil
		}
		return h, nil
	})
	if err != nil {
		return &rtcam.Health{Status: "error"}
	}
	return h
}

func (s *fleetService) Dashboard(ctx context.Context) (*Dashboard, error) {
	sum, err := s.fleetSummary(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Summary: sum,
		Health:  s.providerHealth(ctx),
		Now:     time.Now().Unix(),
	}, nil
}

func (s *fleetService) RefreshDashboard(ctx context.Context) (*Dashboard, error) {
	s.cameras.Purge()
	s.summary.Purge()
	return s.Dashboard(ctx)
}

func matchesQuery(c *model.Camera, q string) bool {
	for _, field := range []string{c.Name, c.Address, c.SN, c.UID} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (s *fleetService) ListCameras(ctx context.Context, q CameraListQuery) (*CameraListResult, error) {
	cameras, err := s.allCameras(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(q.Q))
	filtered := make([]model.Camera, 0, len(cameras))
	for i := range cameras {
		c := &cameras[i]
		if needle != "" && !matchesQuery(c, needle) {
			continue
		}
		if q.Status == "online" && !c.IsOnline {
			continue
		}
		if q.Status == "offline" && c.IsOnline {
			continue
		}
		if q.Vendor != "" && c.Vendor != q.Vendor {
			continue
		}
		if q.DC != "" && c.DataCenterName() != q.DC {
			continue
		}
		filtered = append(filtered, *c)
	}

	vendorSet := map[string]struct{}{}
	dcSet := map[string]struct{}{}
	for i := range cameras {
		vendorSet[cameras[i].VendorName()] = struct{}{}
		dcSet[cameras[i].DataCenterName()] = struct{}{}
	}

	total := len(filtered)
	totalPages := (total + CamerasPerPage - 1) / CamerasPerPage
	if totalPages < 1 {
		totalPages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * CamerasPerPage
	end := start + CamerasPerPage
	if end > total {
		end = total
	}

	return &CameraListResult{
		Cameras:    filtered[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		Vendors:    sortedKeys(vendorSet),
		DCs:        sortedKeys(dcSet),
	}, nil
}

func (s *fleetService) CameraDetail(ctx context.Context, uid string) (*CameraDetail, error) {
	cameras, err := s.allCameras(ctx)
	if err != nil {
		return nil, err
	}

	var camera *model.Camera
	for i := range cameras {
		if cameras[i].UID == uid {
			camera = &cameras[i]
			break
		}
	}
	if camera == nil {
		return nil, ErrCameraNotFound
	}

	now := time.Now()
	since := now.Unix() - DetailArchiveDays*86400

	fragments, err := s.fragments.Get(ctx, uid, func(ctx context.Context) ([]model.Fragment, error) {
		return s.api.CameraFragments(ctx, uid, since, now.Unix())
	})
	if err != nil {
		// The detail page is still useful without archive data.
		fragments = nil
	}

	return &CameraDetail{
		Camera:  *camera,
		Archive: stats.AnalyzeArchive(fragments, now),
	}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
