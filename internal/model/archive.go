package model

// Baked archive statuses as reported by the provider API.
const (
	BakedArchiveStatusNew      = 0
	BakedArchiveStatusEnqueued = 1
	BakedArchiveStatusError    = 2
	BakedArchiveStatusDone     = 3
)

// BakedArchiveStatusLabels maps wire statuses to their display labels.
var BakedArchiveStatusLabels = map[int]string{
	BakedArchiveStatusNew:      "NEW",
	BakedArchiveStatusEnqueued: "ENQUEUED",
	BakedArchiveStatusError:    "ERROR",
	BakedArchiveStatusDone:     "DONE",
}

// BakedArchiveStatusFromLabel resolves a label back to its wire status.
// The second return value is false for unknown labels.
func BakedArchiveStatusFromLabel(label string) (int, bool) {
	for status, l := range BakedArchiveStatusLabels {
		if l == label {
			return status, true
		}
	}
	return 0, false
}

// BakedArchive is a server-side archive export job prepared by the provider.
type BakedArchive struct {
	ID        int64  `json:"id"`
	CameraUID string `json:"camera_uid"`
	Name      string `json:"name"`
	Since     int64  `json:"since"`
	Till      int64  `json:"till"`
	Size      int64  `json:"size"`
	Status    int    `json:"status"`
	URL       string `json:"url,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// StatusLabel returns the display label for the archive's status.
func (a *BakedArchive) StatusLabel() string {
	if l, ok := BakedArchiveStatusLabels[a.Status]; ok {
		return l
	}
	return "UNKNOWN"
}
