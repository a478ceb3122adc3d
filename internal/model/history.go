package model

import "encoding/json"

// HistoryEntry is one recorded collection replace.
// Seq is assigned by the store and strictly increases across collections.
type HistoryEntry struct {
	Seq         int64           `json:"seq"`
	Collection  Collection      `json:"collection"`
	Data        json.RawMessage `json:"data"`
	Fingerprint string          `json:"fingerprint"`
}
