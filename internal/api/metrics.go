package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/mqtt"
)

// SystemMetrics is the response of GET /metrics.
type SystemMetrics struct {
	Timestamp     string            `json:"timestamp"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Runtime       RuntimeMetrics    `json:"runtime"`
	WebSocket     WSMetrics         `json:"websocket"`
	MQTT          mqtt.Stats        `json:"mqtt"`
	Controller    ControllerMetrics `json:"controller"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int    `json:"connected_clients"`
	DroppedEvents    uint64 `json:"dropped_events"`
}

// ControllerMetrics contains the dispatch loop counters.
type ControllerMetrics struct {
	QueueLength    int            `json:"queue_length"`
	RootBatches    int            `json:"root_batches"`
	PendingHandles int            `json:"pending_handles"`
	Forwarded      uint64         `json:"forwarded"`
	ForwardErrors  uint64         `json:"forward_errors"`
	Elements       map[string]int `json:"elements"`
}

// handleMetrics returns process and controller metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
	}
	if s.hub != nil {
		metrics.WebSocket.ConnectedClients = s.hub.ClientCount()
		metrics.WebSocket.DroppedEvents = s.hub.Dropped()
	}
	if s.broker != nil {
		metrics.MQTT = s.broker.Stats()
	}

	ok := s.call(w, r, func() {
		st := s.core.Status()
		metrics.Controller = ControllerMetrics{
			QueueLength:    st.QueueLength,
			RootBatches:    st.RootBatches,
			PendingHandles: len(st.PendingHandles),
			Forwarded:      st.Forwarded,
			ForwardErrors:  st.ForwardErrors,
			Elements:       st.Elements,
		}
	})
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}
