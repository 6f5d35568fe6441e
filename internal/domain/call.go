package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CallID string

// Call holds the immutable meta of one call session. Membership and
// the active flag live in core, which owns their mutation.
type Call struct {
	ID          CallID    `json:"callId"`
	AdminUserID UserID    `json:"adminUserId"`
	AdminName   string    `json:"adminName"`
	StartedAt   time.Time `json:"startTime"`
	WithAudio   bool      `json:"withAudio"`
}

// NewCallID is unique under concurrent creation and sorts by start
// time.
func NewCallID(now time.Time) CallID {
	return CallID(fmt.Sprintf("call-%d-%s", now.UnixMilli(), uuid.NewString()[:8]))
}
