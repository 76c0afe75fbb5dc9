// Package metrics supplies the process resource readings merged into server
// stats. CPU is intentionally synthetic: the dashboard this server feeds was
// built against a placeholder value in a fixed band, and real OS sampling is
// explicitly out of scope, so the fake stays a documented policy behind the
// Source interface rather than a hidden hack.
package metrics

import (
	"math/rand"
	"runtime"
)

// Source reports the resource usage numbers published through server stats.
type Source interface {
	// CPUPercent returns the CPU load percentage to report.
	CPUPercent() float64
	// Memory returns used and total heap bytes.
	Memory() (used, total uint64)
}

// Runtime is the production Source: heap numbers from the Go runtime and a
// synthetic CPU reading uniformly distributed in [10, 40).
type Runtime struct{}

func (Runtime) CPUPercent() float64 {
	return float64(10 + rand.Intn(30))
}

func (Runtime) Memory() (uint64, uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapInuse, m.HeapSys
}

// Static is a fixed Source for tests.
type Static struct {
	CPU   float64
	Used  uint64
	Total uint64
}

func (s Static) CPUPercent() float64 {
	return s.CPU
}

func (s Static) Memory() (uint64, uint64) {
	return s.Used, s.Total
}
