package types

import "time"

// SyncState tracks, per user and per ingest source, which external
// identifiers have already been processed so the scheduler can resume.
type SyncState struct {
	UserID          string          `json:"user_id"`
	Source          string          `json:"source"`
	Processed       map[string]bool `json:"processed"`
	LastProcessedAt time.Time       `json:"last_processed_at"`
}

// NewSyncState returns an empty SyncState for the given user/source.
func NewSyncState(userID, source string) *SyncState {
	return &SyncState{
		UserID:    userID,
		Source:    source,
		Processed: make(map[string]bool),
	}
}
