package release

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// runIDSource hands out ULIDs for generation runs. Ids from one source are
// strictly increasing even when two runs start in the same millisecond,
// which keeps watch-mode runs ordered.
type runIDSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newRunIDSource(r io.Reader) *runIDSource {
	return &runIDSource{entropy: ulid.Monotonic(r, 0)}
}

var defaultRunIDs = newRunIDSource(rand.Reader)

func (s *runIDSource) next(now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(now.UTC()), s.entropy)
	switch {
	case err == nil:
		return id.String(), nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "", fmt.Errorf("generate run id: entropy source exhausted")
	default:
		return "", fmt.Errorf("generate run id: %w", err)
	}
}

// NewRunID returns a time-ordered identifier for one generation run.
func NewRunID(now time.Time) (string, error) {
	return defaultRunIDs.next(now)
}

// RunTime recovers the start time encoded in a run id.
func RunTime(runID string) (time.Time, bool) {
	id, err := ulid.ParseStrict(runID)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(id.Time()).UTC(), true
}
