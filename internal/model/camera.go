package model

// Package model contains domain models/data structures shared across layers.
// JSON tags follow the provider camera API wire format so the same structs
// decode upstream responses and encode portal responses.

// DataCenter is the provider data center a camera streams to.
type DataCenter struct {
	Name string `json:"name"`
}

// MemoryCardState describes the on-camera SD card status as reported by the
// provider. States other than CardOK/CardNotFound/Unknown indicate a problem.
type MemoryCardState struct {
	State string `json:"state"`
}

// Camera is a single camera in the fleet.
type Camera struct {
	UID             string           `json:"uid"`
	Name            string           `json:"name"`
	SN              string           `json:"sn"`
	Vendor          string           `json:"vendor"`
	Model           string           `json:"model"`
	Address         string           `json:"address"`
	IsOnline        bool             `json:"is_online"`
	OfflineSince    int64            `json:"offline_since,omitempty"`
	MemoryCardState *MemoryCardState `json:"memory_card_state,omitempty"`
	DataCenter      *DataCenter      `json:"data_center,omitempty"`
}

// DataCenterName returns the camera's data center name or "Unknown".
func (c *Camera) DataCenterName() string {
	if c.DataCenter == nil || c.DataCenter.Name == "" {
		return "Unknown"
	}
	return c.DataCenter.Name
}

// VendorName returns the camera's vendor or "Unknown".
func (c *Camera) VendorName() string {
	if c.Vendor == "" {
		return "Unknown"
	}
	return c.Vendor
}

// ModelName returns the camera's model or "Unknown".
func (c *Camera) ModelName() string {
	if c.Model == "" {
		return "Unknown"
	}
	return c.Model
}

// DisplayName returns the camera name, falling back to a UID prefix.
func (c *Camera) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.UID) > 12 {
		return c.UID[:12]
	}
	return c.UID
}

// HasMemoryCardIssue reports whether the memory card state is a known problem
// state. Empty and sentinel states are not issues.
func (c *Camera) HasMemoryCardIssue() bool {
	if c.MemoryCardState == nil {
		return false
	}
	switch c.MemoryCardState.State {
	case "", "CardOK", "CardNotFound", "Unknown":
		return false
	}
	return true
}

// Fragment is a contiguous recorded interval in a camera's cloud archive.
// Since and Till are unix seconds.
type Fragment struct {
	Since int64 `json:"since"`
	Till  int64 `json:"till"`
}

// Duration returns the fragment length in seconds.
func (f Fragment) Duration() int64 {
	return f.Till - f.Since
}
