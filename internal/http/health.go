package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DeviceCounter reports the number of active devices.
type DeviceCounter interface {
	Len() int
}

// EvictionStatus reports the state of the idle-device eviction job.
type EvictionStatus interface {
	IsRunning() bool
	GetNextRunTime() *time.Time
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Devices int               `json:"devices"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db       Pinger
	devices  DeviceCounter
	eviction EvictionStatus
	version  string
}

func NewHealthController(db Pinger, devices DeviceCounter, version string) *HealthController {
	return &HealthController{
		db:      db,
		devices: devices,
		version: version,
	}
}

// WithEviction adds the eviction job to the reported checks. A stopped job
// is reported but does not make the service unhealthy.
func (h *HealthController) WithEviction(eviction EvictionStatus) *HealthController {
	h.eviction = eviction
	return h
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Check database connectivity
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.eviction != nil {
		if next := h.eviction.GetNextRunTime(); h.eviction.IsRunning() && next != nil {
			checks["eviction"] = "next run " + next.Format(time.RFC3339)
		} else {
			checks["eviction"] = "stopped"
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}
	if h.devices != nil {
		health.Devices = h.devices.Len()
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
