// Package ids generates the deterministic and opaque identifiers the
// reconciler needs: deterministic update-batch request ids (for logging
// and dedup within a single process run) and opaque arena/root
// identifiers, adapted from Temporal server's common/scheduler
// deterministic-id-generation idiom.
package ids

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UpdateRequestIDParams names the inputs that determine a deterministic
// update-request id, mirroring common/scheduler.RequestIDParams.
type UpdateRequestIDParams struct {
	IdentifierPrefix string
	RootKey          string
	Lane             uint32
	SubmittedAt      time.Time
}

// GenerateUpdateRequestID produces a deterministic id for a single
// update_container call, so the same (root, lane, timestamp) tuple always
// yields the same id — useful for log correlation and for de-duplicating
// a batched update replayed by a retrying host adapter.
func GenerateUpdateRequestID(p UpdateRequestIDParams) string {
	prefix := p.IdentifierPrefix
	if prefix == "" {
		prefix = "fk"
	}
	return fmt.Sprintf(
		"%s-update-%s-%d-%d",
		prefix,
		p.RootKey,
		p.Lane,
		p.SubmittedAt.UnixNano(),
	)
}

// RootKeyParams names the inputs to a FiberRoot's identity string.
type RootKeyParams struct {
	IdentifierPrefix string
	Ordinal          uint64
}

// GenerateRootKey produces a stable identity string for a FiberRoot,
// used purely for logging/metrics labels — never for persistence or
// wire addressing (§1 is explicit that there is no persisted state).
func GenerateRootKey(p RootKeyParams) string {
	prefix := p.IdentifierPrefix
	if prefix == "" {
		prefix = "root"
	}
	return fmt.Sprintf("%s-%d", prefix, p.Ordinal)
}

// NewArenaToken returns an opaque, process-unique token used to tag a
// fiber allocation for debugging (e.g. correlating a fiber with the
// suspense continuation that will eventually resume it). Unlike the
// FiberID (an arena index, reused after deletion), this token is never
// reused within a process.
func NewArenaToken() string {
	return uuid.NewString()
}
