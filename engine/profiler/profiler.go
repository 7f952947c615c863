// Package profiler reports frame-rate, frame-skip, and memory statistics to
// the log at a fixed interval.
package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler counts presented and skipped frames and samples the Go heap.
// Not safe for concurrent use; drive it from the render loop only.
type Profiler struct {
	frameCount     int
	skipCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
}

// NewProfiler creates a profiler that logs once per second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Frame records one presented frame.
func (p *Profiler) Frame() {
	p.frameCount++
}

// Skip records one frame that was aborted instead of presented.
func (p *Profiler) Skip() {
	p.skipCount++
}

// Tick checks the interval and logs statistics when it has elapsed. Call once
// per render-loop iteration after Frame or Skip.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	log.Printf("[profiler] fps: %.2f | skipped: %d | heap: %.2f MB | alloc rate: %.2f MB/s | gc: %d",
		fps, p.skipCount, heapMB, allocRateMB, p.memStats.NumGC)

	p.frameCount = 0
	p.skipCount = 0
	p.lastTime = now
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
