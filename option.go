package drbg

import (
	"log"
	"time"

	"github.com/alaingilbert/drbg/internal/utils"
	"github.com/jonboulle/clockwork"
)

type config struct {
	clock              clockwork.Clock
	logger             *log.Logger
	parent             *DRBG
	getEntropy         GetEntropyFn
	cleanupEntropy     CleanupEntropyFn
	getNonce           GetNonceFn
	cleanupNonce       CleanupNonceFn
	noNonce            bool
	reseedInterval     *uint64
	reseedTimeInterval *time.Duration
	enableLocking      bool
}

// Option represents a modification to the default behavior of a DRBG.
type Option func(*config)

// WithClock ...
func WithClock(clock clockwork.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger ...
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithParent makes the new instance a child of parent: it pulls its seed
// material from the parent's output instead of polling the entropy source,
// and reseeds whenever the parent received fresh entropy. The relation is a
// weak handle, the parent's lifetime stays independent.
func WithParent(parent *DRBG) Option {
	return func(c *config) {
		c.parent = parent
	}
}

// WithEntropySource overrides the entropy source collaborator.
func WithEntropySource(get GetEntropyFn, cleanup CleanupEntropyFn) Option {
	return func(c *config) {
		c.getEntropy = get
		c.cleanupEntropy = cleanup
	}
}

// WithNonceSource overrides the nonce source collaborator.
func WithNonceSource(get GetNonceFn, cleanup CleanupNonceFn) Option {
	return func(c *config) {
		c.getNonce = get
		c.cleanupNonce = cleanup
	}
}

// WithoutNonceSource drops the nonce source: the extra uniqueness burden is
// shifted onto the entropy source.
func WithoutNonceSource() Option {
	return func(c *config) {
		c.noNonce = true
	}
}

// WithReseedInterval overrides the default max number of generate calls
// between reseeds. Zero disables the condition.
func WithReseedInterval(interval uint64) Option {
	return func(c *config) {
		c.reseedInterval = utils.Ptr(interval)
	}
}

// WithReseedTimeInterval overrides the default max time between reseeds.
// Zero disables the condition.
func WithReseedTimeInterval(interval time.Duration) Option {
	return func(c *config) {
		c.reseedTimeInterval = utils.Ptr(interval)
	}
}

// WithLocking enables per-instance locking from the start, for instances
// that will be shared between goroutines.
func WithLocking() Option {
	return func(c *config) {
		c.enableLocking = true
	}
}
