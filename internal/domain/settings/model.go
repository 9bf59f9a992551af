package settings

// Settings is the single process-wide preference record. There is no id
// list; it lives under one well-known key in every store.
//
// PreferOffline is advisory: the storage layer logs it but still attempts
// the remote store, so a stale preference can never strand a reachable
// client in offline mode.
type Settings struct {
	PreferOffline bool   `json:"preferOffline"`
	Theme         string `json:"theme,omitempty"`
	CurrentTeamID string `json:"currentTeamId,omitempty"`
	UpdatedAt     int64  `json:"updatedAt"`
}

// Default returns the settings used before a client has saved any.
func Default() Settings {
	return Settings{Theme: "system"}
}
