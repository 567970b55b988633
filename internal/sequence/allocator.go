// Package sequence produces the globally unique, human-readable RFQ numbers.
// One counter covers every site; numbers from different sites interleave.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// DefaultPrefix heads every RFQ number.
const DefaultPrefix = "GP"

// ErrConflict marks a transient allocation failure (two writers collided on
// the counter or the unique number index). Callers retry instead of surfacing
// it to the user.
var ErrConflict = errors.New("allocation conflict")

// Allocator yields the next RFQ number for a site. The returned number has
// never been returned before, for any site, in the system's lifetime.
type Allocator interface {
	Allocate(ctx context.Context, siteCode string) (string, error)
}

// Format renders "PREFIX-SITE-NNN". The numeric suffix is zero-padded to at
// least three digits and simply widens past 999.
func Format(prefix, siteCode string, value int64) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, siteCode, value)
}

// Memory is an in-process allocator backed by an atomic counter. It serves
// tests and single-node development; production allocation goes through the
// rfq_sequence row inside the creation transaction.
type Memory struct {
	prefix string
	last   atomic.Int64
}

func NewMemory(prefix string, start int64) *Memory {
	m := &Memory{prefix: prefix}
	m.last.Store(start)
	return m
}

func (m *Memory) Allocate(_ context.Context, siteCode string) (string, error) {
	next := m.last.Add(1)
	return Format(m.prefix, siteCode, next), nil
}
