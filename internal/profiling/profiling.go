package profiling

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Per-frame CPU timing buckets. The loop resets them at frame start and
// reads them back when a frame runs long.

type bucket struct {
	total time.Duration
	calls int
}

var (
	mu      sync.Mutex
	buckets = make(map[string]bucket)
)

// Track returns a stop function that adds the elapsed time to the named
// bucket.
//
//	defer profiling.Track("renderer.shadow")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		b := buckets[name]
		b.total += d
		b.calls++
		buckets[name] = b
		mu.Unlock()
	}
}

// ResetFrame clears all buckets.
func ResetFrame() {
	mu.Lock()
	clear(buckets)
	mu.Unlock()
}

// Snapshot returns the accumulated time per bucket.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(buckets))
	for k, b := range buckets {
		out[k] = b.total
	}
	return out
}

// Calls returns how many times the named bucket was stopped this frame.
func Calls(name string) int {
	mu.Lock()
	defer mu.Unlock()
	return buckets[name].calls
}

type entry struct {
	name string
	dur  time.Duration
}

// TopN formats the n slowest buckets, slowest first, as
// "renderer.color:4.2ms, scene.update:0.3ms".
func TopN(n int) string {
	ss := Snapshot()
	list := make([]entry, 0, len(ss))
	for k, v := range ss {
		list = append(list, entry{k, v})
	}
	slices.SortFunc(list, func(a, b entry) int {
		if c := cmp.Compare(b.dur, a.dur); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	n = min(n, len(list))

	parts := make([]string, 0, n)
	for _, e := range list[:n] {
		parts = append(parts, e.name+":"+formatMs(e.dur))
	}
	return strings.Join(parts, ", ")
}

// formatMs prints d in milliseconds with one decimal, dropping a trailing
// ".0".
func formatMs(d time.Duration) string {
	tenths := d.Microseconds() / 100
	s := strconv.FormatInt(tenths/10, 10)
	if frac := tenths % 10; frac != 0 {
		s += "." + strconv.FormatInt(frac, 10)
	}
	return s + "ms"
}
