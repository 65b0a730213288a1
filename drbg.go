package drbg

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alaingilbert/drbg/internal/core"
	"github.com/alaingilbert/drbg/internal/syncx"
	"github.com/alaingilbert/drbg/internal/utils"
	"github.com/alaingilbert/drbg/trace"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Hard limits and defaults, per SP 800-90A with the input lengths lowered to
// 2 gigabytes.
const (
	maxInputLength        = math.MaxInt32
	defaultMaxRequest     = 1 << 16
	maxReseedInterval     = 1 << 24
	maxReseedTimeInterval = (1 << 20) * time.Second // approx. 12 days

	masterReseedInterval     = 1 << 8
	childReseedInterval      = 1 << 16
	masterReseedTimeInterval = time.Hour
	childReseedTimeInterval  = 7 * time.Minute
)

// ErrUnknownType ...
var ErrUnknownType = errors.New("unknown drbg type")

// ErrAlreadyInstantiated ...
var ErrAlreadyInstantiated = errors.New("drbg already instantiated")

// ErrNotInstantiated is returned when generate/reseed is called on an
// instance that is not instantiated.
var ErrNotInstantiated = errors.New("drbg not instantiated")

// ErrInErrorState is returned when generate/reseed is called on an instance
// that hit an internal failure; only a fresh Instantiate clears it.
var ErrInErrorState = errors.New("drbg in error state")

// ErrRequestTooLarge ...
var ErrRequestTooLarge = errors.New("requested output length too large")

// ErrPersonalizationTooLong ...
var ErrPersonalizationTooLong = errors.New("personalization string too long")

// ErrAdditionalInputTooLong ...
var ErrAdditionalInputTooLong = errors.New("additional input too long")

// ErrEntropySource ...
var ErrEntropySource = errors.New("entropy source failure")

// ErrInsufficientEntropy ...
var ErrInsufficientEntropy = errors.New("insufficient entropy")

// ErrParentNotLocked is returned when locking is enabled on a child whose
// parent is not itself lockable.
var ErrParentNotLocked = errors.New("parent drbg has no locking enabled")

// Status is the lifecycle state of a DRBG instance.
type Status int

const (
	StatusUninitialised Status = iota
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUninitialised:
		return "Uninitialised"
	case StatusReady:
		return "Ready"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// instances is the process-wide registry. A child only ever keeps its
// parent's ID and resolves it here before use, so a freed parent simply stops
// resolving instead of dangling.
var instances syncx.Map[uuid.UUID, *DRBG]

// DRBG is a deterministic random bit generator instance: one generation
// algorithm plus all the lifecycle bookkeeping around it (status, reseed
// counters and timers, fork stamp, optional lock, optional parent link).
//
// An instance is created uninstantiated, becomes ready on a successful
// Instantiate, and refuses to produce output in any other state. Instances
// shared between goroutines must have locking enabled before being shared.
type DRBG struct {
	id       uuid.UUID
	typ      Type
	meth     method
	strength int // security strength in bits
	seedLen  int

	mu *sync.Mutex // non-nil only when the instance may be shared

	hasParent bool
	parentID  uuid.UUID

	status Status

	maxRequest                   int
	minEntropyLen, maxEntropyLen int
	minNonceLen, maxNonceLen     int
	maxPersLen, maxAdinLen       int

	// Generate calls since the last reseed, starts at 1 (the
	// reseed_counter of SP 800-90Ar1).
	reseedGenCounter uint64
	// Max generate calls before a forced reseed, 0 disables.
	reseedInterval uint64
	reseedTime     time.Time
	// Max time between reseeds, 0 disables.
	reseedTimeInterval time.Duration
	// Bumped every time fresh entropy enters this instance; children
	// compare it against their own snapshot to pick up master reseeds.
	reseedPropCounter atomic.Uint64
	// Parent propagation counter as of our last sync with it.
	reseedNextCounter uint64
	// Process fork generation as of the last reseed.
	forkCount uint64

	// Randomness stashed by AddEntropy, consumed by the next entropy
	// gathering.
	pool *Pool

	getEntropy     GetEntropyFn
	cleanupEntropy CleanupEntropyFn
	getNonce       GetNonceFn
	cleanupNonce   CleanupNonceFn

	clock  clockwork.Clock
	logger *log.Logger
}

// New creates an uninstantiated DRBG instance of the given type.
func New(t Type, opts ...Option) (*DRBG, error) {
	cfg := utils.BuildConfig(opts)
	meth, strength, seedLen, err := newMethod(t)
	if err != nil {
		return nil, err
	}
	d := &DRBG{
		id:             uuid.New(),
		typ:            t,
		meth:           meth,
		strength:       strength,
		seedLen:        seedLen,
		status:         StatusUninitialised,
		maxRequest:     defaultMaxRequest,
		minEntropyLen:  strength / 8,
		maxEntropyLen:  maxInputLength,
		maxNonceLen:    maxInputLength,
		maxPersLen:     maxInputLength,
		maxAdinLen:     maxInputLength,
		getEntropy:     cfg.getEntropy,
		cleanupEntropy: cfg.cleanupEntropy,
		clock:          utils.Or[clockwork.Clock](cfg.clock, clockwork.NewRealClock()),
		logger:         utils.Or(cfg.logger, log.New(os.Stderr, "drbg", log.LstdFlags)),
	}
	d.minNonceLen = d.minEntropyLen / 2
	if d.getEntropy == nil {
		d.getEntropy = defaultGetEntropy
	}
	if d.cleanupEntropy == nil {
		d.cleanupEntropy = defaultCleanupEntropy
	}
	if !cfg.noNonce {
		d.getNonce, d.cleanupNonce = cfg.getNonce, cfg.cleanupNonce
		if d.getNonce == nil {
			d.getNonce = defaultGetNonce
		}
		if d.cleanupNonce == nil {
			d.cleanupNonce = defaultCleanupNonce
		}
	}
	if cfg.parent != nil {
		d.hasParent = true
		d.parentID = cfg.parent.id
	}
	if err = d.SetReseedInterval(utils.Default(cfg.reseedInterval,
		utils.Ternary[uint64](d.hasParent, childReseedInterval, masterReseedInterval))); err != nil {
		return nil, err
	}
	if err = d.SetReseedTimeInterval(utils.Default(cfg.reseedTimeInterval,
		utils.Ternary(d.hasParent, childReseedTimeInterval, masterReseedTimeInterval))); err != nil {
		return nil, err
	}
	if cfg.enableLocking {
		if err = d.EnableLocking(); err != nil {
			return nil, err
		}
	}
	instances.Store(d.id, d)
	trace.Msgf(trace.Init, "drbg %s: created type %s", d.id, d.typ)
	return d, nil
}

// ID returns the instance handle, usable to resolve the instance while it has
// not been freed.
func (d *DRBG) ID() uuid.UUID { return d.id }

// Type returns the generation algorithm backing this instance.
func (d *DRBG) Type() Type { return d.typ }

// Strength returns the security strength in bits.
func (d *DRBG) Strength() int { return d.strength }

// MaxRequest returns the maximum number of bytes a single Generate call may
// request.
func (d *DRBG) MaxRequest() int { return d.maxRequest }

// Status returns the lifecycle state of the instance.
func (d *DRBG) Status() Status {
	d.lock()
	defer d.unlock()
	return d.status
}

// ReseedCounter returns the number of generate calls since the last reseed.
func (d *DRBG) ReseedCounter() uint64 {
	d.lock()
	defer d.unlock()
	return d.reseedGenCounter
}

// LastReseed returns the time of the last (re)seeding.
func (d *DRBG) LastReseed() time.Time {
	d.lock()
	defer d.unlock()
	return d.reseedTime
}

// EnableLocking turns on per-instance locking so the instance can be shared
// between goroutines. It must be called before the instance is shared. A
// child can only be lockable if its parent is, otherwise the child could pull
// seed material from an unserialized parent.
func (d *DRBG) EnableLocking() error {
	if d.mu != nil {
		return nil
	}
	if parent := d.parentRef(); parent != nil && parent.mu == nil {
		return ErrParentNotLocked
	}
	d.mu = &sync.Mutex{}
	return nil
}

// SetReseedInterval sets the max number of generate calls between reseeds.
// Zero disables the condition.
func (d *DRBG) SetReseedInterval(interval uint64) error {
	if interval > maxReseedInterval {
		return fmt.Errorf("reseed interval %d out of range", interval)
	}
	d.lock()
	defer d.unlock()
	d.reseedInterval = interval
	return nil
}

// SetReseedTimeInterval sets the max time between reseeds. Zero disables the
// condition.
func (d *DRBG) SetReseedTimeInterval(interval time.Duration) error {
	if interval < 0 || interval > maxReseedTimeInterval {
		return fmt.Errorf("reseed time interval %v out of range", interval)
	}
	d.lock()
	defer d.unlock()
	d.reseedTimeInterval = interval
	return nil
}

// Instantiate seeds the instance from the entropy and nonce sources and makes
// it ready for generation.
func (d *DRBG) Instantiate(personalization []byte) error {
	d.lock()
	defer d.unlock()
	return d.instantiate(personalization)
}

// Reseed mixes fresh entropy, and the optional additional input, into the
// instance state.
func (d *DRBG) Reseed(additional []byte) error {
	d.lock()
	defer d.unlock()
	return d.reseed(additional)
}

// Generate fills out with pseudorandom bytes, transparently reseeding first
// when the reseed policy demands it. On failure no output is produced.
func (d *DRBG) Generate(out, additional []byte) error {
	d.lock()
	defer d.unlock()
	return d.generate(out, additional)
}

// Uninstantiate wipes all secret working state and returns the instance to
// the uninstantiated state. The instance is reusable via a new Instantiate.
func (d *DRBG) Uninstantiate() error {
	d.lock()
	defer d.unlock()
	d.uninstantiate()
	return nil
}

// AddEntropy injects caller randomness, credited with entropyBits bits of
// entropy, and immediately reseeds from it so the new material has an
// immediate effect on subsequent output (and on children, via the
// propagation counter).
func (d *DRBG) AddEntropy(data []byte, entropyBits int) error {
	d.lock()
	defer d.unlock()
	return d.addEntropy(data, entropyBits)
}

// Free uninstantiates the instance and removes it from the process registry:
// children holding its handle will fall back to polling the entropy source.
func (d *DRBG) Free() {
	d.lock()
	d.uninstantiate()
	d.pool.Release()
	d.pool = nil
	d.unlock()
	instances.Delete(d.id)
}

//-----------------------------------------------------------------------------

func (d *DRBG) lock() {
	if d.mu != nil {
		d.mu.Lock()
	}
}

func (d *DRBG) unlock() {
	if d.mu != nil {
		d.mu.Unlock()
	}
}

// parentRef resolves the weak parent handle, returning nil when there is no
// parent or the parent has been freed.
func (d *DRBG) parentRef() *DRBG {
	if !d.hasParent {
		return nil
	}
	parent, _ := instances.Load(d.parentID)
	return parent
}

func (d *DRBG) parentPropCounter() uint64 {
	if parent := d.parentRef(); parent != nil {
		return parent.reseedPropCounter.Load()
	}
	return 0
}

func (d *DRBG) fail(op string, err error) error {
	d.status = StatusError
	d.logger.Printf("drbg %s: %s: entering error state: %v", d.id, op, err)
	return err
}

func (d *DRBG) instantiate(personalization []byte) error {
	if d.status == StatusReady {
		return ErrAlreadyInstantiated
	}
	if len(personalization) > d.maxPersLen {
		return ErrPersonalizationTooLong
	}
	minEntropyBits := d.strength
	var nonce []byte
	if d.getNonce != nil {
		var err error
		if nonce, err = d.getNonce(d.minNonceLen, d.maxNonceLen); err != nil {
			return fmt.Errorf("%w: nonce: %v", ErrEntropySource, err)
		}
		defer d.cleanupNonce(nonce)
	} else if d.minNonceLen > 0 {
		// No nonce source: shift the uniqueness burden onto the entropy
		// source by requesting half again as much entropy.
		minEntropyBits += d.strength / 2
	}
	// The sync point is captured before the seed material is pulled: a
	// parent counter bump landing mid-pull then costs one extra reseed
	// instead of a missed one.
	parentProp := d.parentPropCounter()
	ent, cleanup, err := d.gatherSeed(minEntropyBits)
	if err != nil {
		return err
	}
	defer cleanup()
	if err = d.meth.instantiate(ent, nonce, personalization); err != nil {
		return d.fail("instantiate", err)
	}
	d.status = StatusReady
	d.seeded(parentProp)
	trace.Msgf(trace.Rand, "drbg %s: instantiated type %s strength %d", d.id, d.typ, d.strength)
	return nil
}

func (d *DRBG) reseed(additional []byte) error {
	switch d.status {
	case StatusError:
		return ErrInErrorState
	case StatusUninitialised:
		return ErrNotInstantiated
	}
	if len(additional) > d.maxAdinLen {
		return ErrAdditionalInputTooLong
	}
	parentProp := d.parentPropCounter()
	ent, cleanup, err := d.gatherSeed(d.strength)
	if err != nil {
		return err
	}
	defer cleanup()
	if err = d.meth.reseed(ent, additional); err != nil {
		return d.fail("reseed", err)
	}
	d.seeded(parentProp)
	trace.Msgf(trace.Rand, "drbg %s: reseeded", d.id)
	return nil
}

// seeded resets the reseed bookkeeping after fresh entropy entered the state.
// parentProp is the parent's propagation counter as loaded before the seed
// material was gathered, so the sync point can never run ahead of the state.
func (d *DRBG) seeded(parentProp uint64) {
	d.reseedGenCounter = 1
	d.reseedTime = d.clock.Now()
	d.forkCount = core.ForkGeneration()
	d.reseedPropCounter.Add(1)
	if d.hasParent {
		d.reseedNextCounter = parentProp
	}
}

func (d *DRBG) generate(out, additional []byte) error {
	switch d.status {
	case StatusError:
		return ErrInErrorState
	case StatusUninitialised:
		return ErrNotInstantiated
	}
	if len(out) > d.maxRequest {
		return ErrRequestTooLarge
	}
	if len(additional) > d.maxAdinLen {
		return ErrAdditionalInputTooLong
	}
	if reason := reseedRequired(d.snapshot(), d.clock.Now()); reason != reseedNotRequired {
		trace.Msgf(trace.Rand, "drbg %s: reseed forced (%s)", d.id, reason)
		if err := d.reseed(additional); err != nil {
			return fmt.Errorf("forced reseed (%s): %w", reason, err)
		}
		// Consumed by the reseed.
		additional = nil
	}
	if err := d.meth.generate(out, additional); err != nil {
		wipe(out)
		return d.fail("generate", err)
	}
	d.reseedGenCounter++
	return nil
}

// snapshot captures the bookkeeping the reseed policy consumes.
func (d *DRBG) snapshot() reseedSnapshot {
	s := reseedSnapshot{
		genCounter:     d.reseedGenCounter,
		interval:       d.reseedInterval,
		lastReseed:     d.reseedTime,
		timeInterval:   d.reseedTimeInterval,
		forkCount:      d.forkCount,
		forkGeneration: core.ForkGeneration(),
		nextProp:       d.reseedNextCounter,
	}
	if parent := d.parentRef(); parent != nil {
		s.hasParent = true
		s.parentProp = parent.reseedPropCounter.Load()
	}
	return s
}

func (d *DRBG) uninstantiate() {
	d.meth.uninstantiate()
	d.status = StatusUninitialised
	d.reseedGenCounter = 0
	d.reseedTime = time.Time{}
	d.reseedNextCounter = 0
	trace.Msgf(trace.Rand, "drbg %s: uninstantiated", d.id)
}

func (d *DRBG) addEntropy(data []byte, entropyBits int) error {
	if len(data) > d.maxEntropyLen {
		return ErrPoolOverflow
	}
	pool, err := NewPool(len(data), len(data))
	if err != nil {
		return err
	}
	if err = pool.Add(data, min(entropyBits, 8*len(data))); err != nil {
		pool.Release()
		return err
	}
	d.pool.Release()
	d.pool = pool
	if d.status == StatusReady {
		return d.reseed(nil)
	}
	// Not ready yet: the stash will be consumed by the next instantiate.
	return nil
}

// gatherSeed collects at least minEntropyBits bits of entropy. Instances with
// a live parent pull full-entropy seed material from the parent's output
// instead of polling the entropy source; freed parents fall back to the
// source. The returned cleanup wipes the buffer.
func (d *DRBG) gatherSeed(minEntropyBits int) ([]byte, func(), error) {
	if parent := d.parentRef(); parent != nil {
		buf := make([]byte, (minEntropyBits+7)/8)
		if err := parent.Generate(buf, nil); err != nil {
			return nil, nil, fmt.Errorf("%w: parent: %v", ErrEntropySource, err)
		}
		if d.pool != nil {
			// Randomness stashed by AddEntropy rides along with the parent
			// seed material instead of being dropped.
			buf = append(buf, d.pool.Buffer()...)
			d.pool.Release()
			d.pool = nil
		}
		return buf, func() { wipe(buf) }, nil
	}
	pool, err := NewPool(d.minEntropyLen, d.maxEntropyLen)
	if err != nil {
		return nil, nil, err
	}
	pool.SetEntropyRequested(minEntropyBits)
	if d.pool != nil {
		// Randomness stashed by AddEntropy is consumed first.
		if err = pool.Add(d.pool.Buffer(), d.pool.Entropy()); err != nil {
			pool.Release()
			return nil, nil, err
		}
		d.pool.Release()
		d.pool = nil
	}
	if pool.EntropyNeeded() > 0 || pool.Len() < d.minEntropyLen {
		fresh, err := d.getEntropy(pool.EntropyNeeded(), max(0, d.minEntropyLen-pool.Len()), pool.BytesRemaining())
		if err != nil {
			pool.Release()
			return nil, nil, fmt.Errorf("%w: %v", ErrEntropySource, err)
		}
		err = pool.Add(fresh.Buffer(), fresh.Entropy())
		d.cleanupEntropy(fresh)
		if err != nil {
			pool.Release()
			return nil, nil, err
		}
	}
	if pool.Entropy() < minEntropyBits {
		pool.Release()
		return nil, nil, ErrInsufficientEntropy
	}
	trace.Msgf(trace.Entropy, "drbg %s: gathered %d bytes (%d bits credited)", d.id, pool.Len(), pool.Entropy())
	return pool.Buffer(), func() { pool.Release() }, nil
}

// OnFork must be called in the child process after a fork, before any
// generator call. Every instance then reseeds on its next use, so a process
// and its child never share generator state.
func OnFork() {
	core.BumpForkGeneration()
}
