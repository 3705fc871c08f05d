// Package device resolves the compute device a training run binds to.
package device

import "fmt"
import "runtime"
import "strings"

import "github.com/klauspost/cpuid/v2"

// Device describes the compute device the run is bound to. All math in
// this module is pure Go, so the device is informational: it shows up in
// the run log and decides the default worker count.
type Device struct {
	Kind    string // "cpu"
	Brand   string
	Threads int
	Vector  string // widest vector extension available
}

func (d Device) String() string {
	return fmt.Sprintf("%s (%s, %d threads, %s)", d.Kind, d.Brand, d.Threads, d.Vector)
}

// Select resolves a device preference. Accelerator preferences ("cuda",
// "gpu", "cuda:0", ...) fall back to the CPU: the caller is expected to
// log the resolved device so the fallback is visible.
func Select(pref string) Device {
	pref = strings.ToLower(strings.TrimSpace(pref))
	switch {
	case pref == "" || pref == "auto" || pref == "cpu":
	default:
		// no accelerator backend wired in; fall through to cpu
	}
	brand := cpuid.CPU.BrandName
	if brand == "" {
		brand = runtime.GOARCH
	}
	return Device{
		Kind:    "cpu",
		Brand:   brand,
		Threads: runtime.NumCPU(),
		Vector:  vectorExtension(),
	}
}

func vectorExtension() string {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return "avx512"
	case cpuid.CPU.Supports(cpuid.AVX2):
		return "avx2"
	case cpuid.CPU.Supports(cpuid.AVX):
		return "avx"
	case cpuid.CPU.Supports(cpuid.SSE42):
		return "sse4.2"
	default:
		return "scalar"
	}
}
