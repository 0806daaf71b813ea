package service

import (
	"context"
	"fmt"
	"strings"

	"camportal/internal/cache"
	"camportal/internal/config"
	"camportal/internal/model"
	"camportal/internal/rtcam"
)

// ArchivesPerPage is the baked archive list page size.
const ArchivesPerPage = 50

// ArchiveListResult is one page of baked archive exports.
type ArchiveListResult struct {
	Archives     []model.BakedArchive `json:"archives"`
	Page         int                  `json:"page"`
	HasNext      bool                 `json:"has_next"`
	StatusFilter string               `json:"status_filter,omitempty"`
}

// ArchiveService lists server-side archive exports with page caching.
type ArchiveService interface {
	// List returns a page of baked archives, optionally filtered by status
	// label (NEW/ENQUEUED/ERROR/DONE). Unknown labels are ignored.
	List(ctx context.Context, page int, statusLabel string) (*ArchiveListResult, error)

	// Close releases cache resources.
	Close()
}

type archiveService struct {
	api   rtcam.API
	pages *cache.Loader[[]model.BakedArchive]
}

// NewArchiveService constructs an ArchiveService.
func NewArchiveService(api rtcam.API, cfg config.CacheConfig) ArchiveService {
	return &archiveService{
		api:   api,
		pages: cache.NewLoader[[]model.BakedArchive](cfg.ArchivesTTL, 20),
	}
}

func (s *archiveService) Close() {
	s.pages.Stop()
}

func (s *archiveService) List(ctx context.Context, page int, statusLabel string) (*ArchiveListResult, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * ArchivesPerPage

	key := fmt.Sprintf("archives:%d", offset)
	archives, err := s.pages.Get(ctx, key, func(ctx context.Context) ([]model.BakedArchive, error) {
		return s.api.BakedArchives(ctx, rtcam.ArchiveQuery{Offset: offset, Limit: ArchivesPerPage})
	})
	if err != nil {
		return nil, err
	}

	statusLabel = strings.ToUpper(strings.TrimSpace(statusLabel))
	if statusLabel != "" {
		if status, ok := model.BakedArchiveStatusFromLabel(statusLabel); ok {
			filtered := make([]model.BakedArchive, 0, len(archives))
			for _, a := range archives {
				if a.Status == status {
					filtered = append(filtered, a)
				}
			}
			archives = filtered
		}
	}

	if archives == nil {
		archives = []model.BakedArchive{}
	}
	return &ArchiveListResult{
		Archives:     archives,
		Page:         page,
		HasNext:      len(archives) == ArchivesPerPage,
		StatusFilter: statusLabel,
	}, nil
}
