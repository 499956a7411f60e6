package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-insights/internal/model"
	"github.com/stemsi/exstem-insights/internal/repository"
	"github.com/stemsi/exstem-insights/internal/response"
)

// SnapshotInspector reads the state of the student snapshot cache.
type SnapshotInspector interface {
	Cached(ctx context.Context) ([]model.Student, error)
	TTL(ctx context.Context) (time.Duration, error)
}

// SystemHandler reports process and snapshot cache status.
type SystemHandler struct {
	snapshot  SnapshotInspector
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. snapshot may be nil when the
// cache is disabled.
func NewSystemHandler(snapshot SnapshotInspector) *SystemHandler {
	return &SystemHandler{snapshot: snapshot, startTime: time.Now()}
}

type snapshotStatus struct {
	Enabled    bool    `json:"enabled"`
	Cached     bool    `json:"cached"`
	Students   int     `json:"students"`
	TTLSeconds float64 `json:"ttl_seconds"`
	Error      string  `json:"error,omitempty"`
}

type systemStatus struct {
	Timestamp  int64          `json:"timestamp"`
	Uptime     string         `json:"uptime"`
	GoVersion  string         `json:"go_version"`
	NumCPU     int            `json:"num_cpu"`
	Goroutines int            `json:"goroutines"`
	HeapAlloc  uint64         `json:"heap_alloc"`
	HeapSys    uint64         `json:"heap_sys"`
	NumGC      uint32         `json:"num_gc"`
	Snapshot   snapshotStatus `json:"snapshot"`
}

// GetStatus godoc
// GET /api/v1/analytics/system
func (h *SystemHandler) GetStatus(c *gin.Context) {
	s := systemStatus{
		Timestamp:  time.Now().Unix(),
		Uptime:     formatDuration(time.Since(h.startTime)),
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapAlloc = ms.HeapAlloc
	s.HeapSys = ms.Sys
	s.NumGC = ms.NumGC

	s.Snapshot = h.snapshotStatus(c.Request.Context())

	response.Success(c, http.StatusOK, s)
}

func (h *SystemHandler) snapshotStatus(ctx context.Context) snapshotStatus {
	if h.snapshot == nil {
		return snapshotStatus{}
	}
	st := snapshotStatus{Enabled: true}

	students, err := h.snapshot.Cached(ctx)
	switch {
	case errors.Is(err, repository.ErrSnapshotMiss):
		return st
	case err != nil:
		st.Error = err.Error()
		return st
	}
	st.Cached = true
	st.Students = len(students)

	if ttl, err := h.snapshot.TTL(ctx); err == nil {
		st.TTLSeconds = ttl.Seconds()
	}
	return st
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
