package drbg

import "time"

// reseedReason says why the reseed policy demanded a reseed.
type reseedReason int

const (
	reseedNotRequired reseedReason = iota
	reseedFork
	reseedInterval
	reseedTimeInterval
	reseedParent
)

func (r reseedReason) String() string {
	switch r {
	case reseedNotRequired:
		return "NotRequired"
	case reseedFork:
		return "Fork"
	case reseedInterval:
		return "Interval"
	case reseedTimeInterval:
		return "TimeInterval"
	case reseedParent:
		return "Parent"
	default:
		return "Unknown"
	}
}

// reseedSnapshot is the instance bookkeeping the reseed policy consumes. It
// is a plain value so the policy stays a pure, separately testable predicate.
type reseedSnapshot struct {
	genCounter     uint64
	interval       uint64        // 0 disables the generate-count condition
	lastReseed     time.Time     // zero time disables the time condition
	timeInterval   time.Duration // 0 disables the time condition
	forkCount      uint64        // fork generation at last reseed
	forkGeneration uint64        // current process fork generation
	hasParent      bool
	parentProp     uint64 // parent's live propagation counter
	nextProp       uint64 // parent propagation counter at last sync
}

// reseedRequired decides whether a reseed must happen before the next
// generate call may produce output. The fork condition is checked first and
// is never skipped: fork safety is a correctness property, not a tunable.
func reseedRequired(s reseedSnapshot, now time.Time) reseedReason {
	if s.forkCount != s.forkGeneration {
		return reseedFork
	}
	if s.interval != 0 && s.genCounter > s.interval {
		return reseedInterval
	}
	if s.timeInterval != 0 && !s.lastReseed.IsZero() && now.Sub(s.lastReseed) > s.timeInterval {
		return reseedTimeInterval
	}
	// Strictly monotonic comparison so a concurrently advancing parent
	// counter is never missed.
	if s.hasParent && s.parentProp > s.nextProp {
		return reseedParent
	}
	return reseedNotRequired
}
