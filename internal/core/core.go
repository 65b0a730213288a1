package core

import "sync/atomic"

// forkGeneration is a "generation count" of forks. It is incremented in the
// child process after a fork, before any generator call is made. Since it is
// increment-only and only ever written while the child is still
// single-threaded, plain atomic loads are enough for readers.
var forkGeneration atomic.Uint64

// ForkGeneration returns the current process fork generation.
func ForkGeneration() uint64 {
	return forkGeneration.Load()
}

// BumpForkGeneration records that the process has forked and returns the new
// generation.
func BumpForkGeneration() uint64 {
	return forkGeneration.Add(1)
}
