// Package harness provides an instrumented queue.Allocator that can refuse
// reservations at a configured rate and reports blocks left unreleased.
package harness

import (
	"math/rand"

	"github.com/zeebo/errs"

	"github.com/Philanthropists/strqueue/internal/queue"
)

var (
	// ErrLeak is returned by Leaks when reserved blocks remain.
	ErrLeak = errs.Class("leak")
	// ErrFault describes misuse such as releasing more than was reserved.
	ErrFault = errs.Class("allocator fault")
)

// Stats is a snapshot of the allocator counters.
type Stats struct {
	LiveBlocks int
	LiveBytes  int
	PeakBytes  int
	Reserves   int
	Releases   int
	Refusals   int
}

// Allocator accounts reservations and injects failures. It is not safe for
// concurrent use; each queue under test gets its own.
type Allocator struct {
	failPercent int
	disabled    bool
	rng         *rand.Rand

	stats  Stats
	faults []error
}

var _ queue.Allocator = (*Allocator)(nil)

// NewAllocator returns an allocator that refuses failPercent of all
// reservations, drawing from a source seeded with seed.
func NewAllocator(failPercent int, seed int64) (*Allocator, error) {
	a := &Allocator{
		rng: rand.New(rand.NewSource(seed)),
	}
	if err := a.SetFailPercent(failPercent); err != nil {
		return nil, err
	}
	return a, nil
}

// SetFailPercent changes the refusal rate.
func (a *Allocator) SetFailPercent(p int) error {
	if p < 0 || p > 100 {
		return errs.New("fail percent %d out of range [0, 100]", p)
	}
	a.failPercent = p
	return nil
}

// FailPercent returns the refusal rate.
func (a *Allocator) FailPercent() int {
	return a.failPercent
}

// Disable suspends failure injection until Enable is called.
func (a *Allocator) Disable() { a.disabled = true }

// Enable resumes failure injection.
func (a *Allocator) Enable() { a.disabled = false }

func (a *Allocator) shouldFail() bool {
	if a.disabled || a.failPercent == 0 {
		return false
	}
	return a.rng.Intn(100) < a.failPercent
}

// Reserve accounts a block of size bytes unless the injected failure fires.
func (a *Allocator) Reserve(size int) bool {
	if size < 0 {
		a.faults = append(a.faults, ErrFault.New("reserve of negative size %d", size))
		return false
	}

	if a.shouldFail() {
		a.stats.Refusals++
		return false
	}

	a.stats.Reserves++
	a.stats.LiveBlocks++
	a.stats.LiveBytes += size
	if a.stats.LiveBytes > a.stats.PeakBytes {
		a.stats.PeakBytes = a.stats.LiveBytes
	}

	return true
}

// Release returns a block of size bytes.
func (a *Allocator) Release(size int) {
	if a.stats.LiveBlocks == 0 || size < 0 || size > a.stats.LiveBytes {
		a.faults = append(a.faults, ErrFault.New(
			"release of %d bytes with %d blocks (%d bytes) live",
			size, a.stats.LiveBlocks, a.stats.LiveBytes))
		return
	}

	a.stats.Releases++
	a.stats.LiveBlocks--
	a.stats.LiveBytes -= size
}

// Stats returns the current counters.
func (a *Allocator) Stats() Stats {
	return a.stats
}

// Leaks reports blocks that are still reserved.
func (a *Allocator) Leaks() error {
	if a.stats.LiveBlocks == 0 && a.stats.LiveBytes == 0 {
		return nil
	}
	return ErrLeak.New("%d blocks (%d bytes) still reserved",
		a.stats.LiveBlocks, a.stats.LiveBytes)
}

// Faults combines every misuse recorded so far, nil if there was none.
func (a *Allocator) Faults() error {
	return errs.Combine(a.faults...)
}
