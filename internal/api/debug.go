package api

import (
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/phrazzld/trendfinder-api/internal/config"
	"github.com/phrazzld/trendfinder-api/internal/query"
)

// debugKeyParam is the normalized name of the debug credential, accepted as
// either a header or a query parameter.
const debugKeyParam = "x-debug-key"

// DebugGate decides whether a request has presented a valid debug key and
// how many rows a debug response may carry. An empty key set means the gate
// never opens.
type DebugGate struct {
	keys    map[string]struct{}
	maxRows int
}

// NewDebugGate builds a gate from configuration. Blank entries in the key
// list are ignored after trimming.
func NewDebugGate(cfg config.DebugConfig) *DebugGate {
	keys := make(map[string]struct{}, len(cfg.Keys))
	for _, k := range cfg.Keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		keys[k] = struct{}{}
	}
	return &DebugGate{keys: keys, maxRows: cfg.MaxRows}
}

// Enabled reports whether the request carries a configured debug key. The
// header is consulted first, then the query parameter; the match is exact.
func (g *DebugGate) Enabled(headers, params query.Params) bool {
	if len(g.keys) == 0 {
		return false
	}
	if key := headers[debugKeyParam]; key != "" {
		if _, ok := g.keys[key]; ok {
			return true
		}
	}
	if key := params[debugKeyParam]; key != "" {
		if _, ok := g.keys[key]; ok {
			return true
		}
	}
	return false
}

// MaxRows returns the cap applied to the data array of a debug response.
func (g *DebugGate) MaxRows() int {
	return g.maxRows
}

// collectRuntime gathers host diagnostics for the debug block. Probes are
// best effort: a field that cannot be read is left at its zero value rather
// than failing the request.
func collectRuntime() DebugRuntime {
	rt := DebugRuntime{
		PID:       os.Getpid(),
		GoVersion: runtime.Version(),
	}
	if host, err := os.Hostname(); err == nil {
		rt.Hostname = host
	}
	if proc, err := process.NewProcess(int32(rt.PID)); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
			rt.MemoryMB = int(mem.RSS / (1024 * 1024))
		}
	}
	return rt
}
