// Package tag provides typed constructors for structured logging fields
// used across the reconciler, mirroring Temporal server's common/log/tag
// package: every field name is defined exactly once here instead of being
// inlined as string literals at each log call site.
package tag

import (
	"go.uber.org/zap"

	"go.fiberkit.dev/reconciler/internal/log"
)

type field zap.Field

func (f field) Field() zap.Field { return zap.Field(f) }

// FiberID identifies a fiber by its arena index.
func FiberID(id uint64) log.Tag { return field(zap.Uint64("fiber-id", id)) }

// FiberTag names a fiber's tag discriminator (§3).
func FiberTag(tag string) log.Tag { return field(zap.String("fiber-tag", tag)) }

// RootKey identifies a FiberRoot's container/root identity.
func RootKey(key string) log.Tag { return field(zap.String("root-key", key)) }

// Lanes stringifies a lane.Set for logging.
func Lanes(s fmtStringer) log.Tag { return field(zap.Stringer("lanes", s)) }

// Priority names a lane.PriorityClass.
func Priority(class fmtStringer) log.Tag { return field(zap.Stringer("priority", class)) }

// Error wraps an error for logging.
func Error(err error) log.Tag { return field(zap.Error(err)) }

// Phase names a commit sub-phase (BeforeMutation/Mutation/Layout/Passive).
func Phase(name string) log.Tag { return field(zap.String("commit-phase", name)) }

// Duration records an elapsed time.
func Duration(name string, nanos int64) log.Tag {
	return field(zap.Int64(name+"-ns", nanos))
}

// Count records an integer count under name.
func Count(name string, n int) log.Tag { return field(zap.Int(name, n)) }

// RequestID identifies a single update_container call for correlation.
func RequestID(id string) log.Tag { return field(zap.String("request-id", id)) }

// fmtStringer is satisfied by fmt.Stringer without importing fmt just for
// the interface name.
type fmtStringer interface {
	String() string
}
