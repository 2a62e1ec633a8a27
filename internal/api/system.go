package api

import (
	"context"
	"net/http"
	"runtime"
	"time"
)

// componentCheckTimeout bounds each component health check in /api/v1/system.
const componentCheckTimeout = 2 * time.Second

// SystemStatus is the /api/v1/system response.
type SystemStatus struct {
	Timestamp     string            `json:"timestamp"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Runtime       RuntimeMetrics    `json:"runtime"`
	Cache         string            `json:"cache"`
	Components    map[string]string `json:"components"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// handleSystemStatus reports runtime statistics and the health of the cache
// backend and every optional component. It always answers 200; the health
// endpoint is the one load balancers should use.
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := SystemStatus{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Cache:      s.check(r.Context(), s.devices),
		Components: make(map[string]string, len(s.components)),
	}

	for name, hc := range s.components {
		status.Components[name] = s.check(r.Context(), hc)
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) check(ctx context.Context, hc HealthChecker) string {
	ctx, cancel := context.WithTimeout(ctx, componentCheckTimeout)
	defer cancel()
	if err := hc.HealthCheck(ctx); err != nil {
		return "error"
	}
	return "ok"
}
