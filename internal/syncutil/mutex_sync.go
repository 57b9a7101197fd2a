//go:build !deadlock

// Package syncutil provides the mutex type guarding simulator state. By
// default it is a plain sync.Mutex with zero overhead; building with
// -tags=deadlock swaps in github.com/sasha-s/go-deadlock for lock order and
// hold time diagnostics.
package syncutil

import "sync"

// Mutex wraps sync.Mutex. Build with -tags=deadlock for deadlock detection.
type Mutex struct {
	sync.Mutex
}
