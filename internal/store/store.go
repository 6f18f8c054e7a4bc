package store

import (
	"time"

	"github.com/dragonsmp/dragonsmp/internal/mcstatus"
)

// StatusRecord is the stored view of the latest poll, shaped for JSON (used
// by the REST API and SSE).
type StatusRecord struct {
	// Seq is the sequence number of the poll that produced this record.
	Seq uint64 `json:"seq"`

	// Status is the last successfully fetched status. A failed poll keeps
	// the previous value; nil until the first success.
	Status *mcstatus.Status `json:"status"`

	// CheckedAt is when the latest poll completed, successful or not.
	CheckedAt time.Time `json:"checked_at"`

	// UpdatedAt is when Status was last replaced.
	UpdatedAt time.Time `json:"updated_at"`

	// ResponseTimeMs is the latency of the latest poll in milliseconds.
	ResponseTimeMs int64 `json:"response_time_ms"`

	// Error is the latest poll's failure, nil if it succeeded.
	Error *string `json:"error"`
}

// Store keeps the latest status record and fans updates out to subscribers.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Update merges a poll outcome into the record. Outcomes whose Seq is
	// not newer than the stored one are rejected; Update reports whether
	// the outcome was applied.
	Update(rec StatusRecord) bool

	// Get returns the current record.
	Get() StatusRecord

	// Subscribe returns a channel that receives every applied record.
	// Slow consumers may miss updates. Caller must call Unsubscribe.
	Subscribe() <-chan StatusRecord

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan StatusRecord)
}
