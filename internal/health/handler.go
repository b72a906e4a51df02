package health

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentStatus struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type RuntimeStats struct {
	Goroutines         int    `json:"goroutines"`
	MemoryAllocMB      uint64 `json:"memory_alloc_mb"`
	MemoryTotalAllocMB uint64 `json:"memory_total_alloc_mb"`
	MemorySysMB        uint64 `json:"memory_sys_mb"`
	NumGC              uint32 `json:"num_gc"`
}

type RequestStats struct {
	TotalRequests     uint64 `json:"total_requests"`
	ActiveConnections int64  `json:"active_connections"`
}

type AlertStats struct {
	Subscribers int `json:"subscribers"`
}

type Stats struct {
	Requests RequestStats `json:"requests"`
	Alerts   AlertStats   `json:"alerts"`
	Runtime  RuntimeStats `json:"runtime"`
}

type HealthResponse struct {
	Status        Status                     `json:"status"`
	Timestamp     time.Time                  `json:"timestamp"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Stats         Stats                      `json:"stats"`
	Components    map[string]ComponentStatus `json:"components"`
}

// Prober is satisfied by the model sidecar clients.
type Prober interface {
	IsAvailable(ctx context.Context) bool
}

type SubscriberCounter interface {
	ClientCount() int
}

type Dependencies struct {
	Detector    Prober
	OCR         Prober
	Redis       *redis.Client
	Subscribers SubscriberCounter
	FFmpeg      func() bool
}

type Handler struct {
	deps      Dependencies
	version   string
	startTime time.Time

	totalRequests     uint64
	activeConnections int64
}

func NewHandler(deps Dependencies, version string) *Handler {
	return &Handler{
		deps:      deps,
		version:   version,
		startTime: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Liveness)
	e.GET("/health/ready", h.Readiness)
}

func (h *Handler) IncrementRequests() {
	atomic.AddUint64(&h.totalRequests, 1)
}

func (h *Handler) IncrementConnections() {
	atomic.AddInt64(&h.activeConnections, 1)
}

func (h *Handler) DecrementConnections() {
	atomic.AddInt64(&h.activeConnections, -1)
}

// Middleware counts requests and in-flight connections.
func (h *Handler) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h.IncrementRequests()
			h.IncrementConnections()
			defer h.DecrementConnections()
			return next(c)
		}
	}
}

// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// @Summary      Readiness probe
// @Description  Checks the detector and OCR sidecars, Redis and ffmpeg
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health/ready [get]
func (h *Handler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	components := h.CheckComponents(ctx)
	overallStatus := h.computeOverallStatus(components)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	subscribers := 0
	if h.deps.Subscribers != nil {
		subscribers = h.deps.Subscribers.ClientCount()
	}

	resp := HealthResponse{
		Status:        overallStatus,
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Stats: Stats{
			Requests: RequestStats{
				TotalRequests:     atomic.LoadUint64(&h.totalRequests),
				ActiveConnections: atomic.LoadInt64(&h.activeConnections),
			},
			Alerts: AlertStats{Subscribers: subscribers},
			Runtime: RuntimeStats{
				Goroutines:         runtime.NumGoroutine(),
				MemoryAllocMB:      memStats.Alloc / 1024 / 1024,
				MemoryTotalAllocMB: memStats.TotalAlloc / 1024 / 1024,
				MemorySysMB:        memStats.Sys / 1024 / 1024,
				NumGC:              memStats.NumGC,
			},
		},
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, resp)
}

// Ready reports whether the components the request path depends on are up.
func (h *Handler) Ready(ctx context.Context) bool {
	return h.computeOverallStatus(h.CheckComponents(ctx)) != StatusUnhealthy
}

func (h *Handler) CheckComponents(ctx context.Context) map[string]ComponentStatus {
	components := make(map[string]ComponentStatus)
	var mu sync.Mutex
	var wg sync.WaitGroup

	checks := []struct {
		name  string
		check func(context.Context) ComponentStatus
	}{
		{"detector", h.checkDetector},
		{"ocr", h.checkOCR},
		{"redis", h.checkRedis},
		{"ffmpeg", h.checkFFmpeg},
	}

	wg.Add(len(checks))
	for _, check := range checks {
		go func(name string, fn func(context.Context) ComponentStatus) {
			defer wg.Done()
			status := fn(ctx)
			mu.Lock()
			components[name] = status
			mu.Unlock()
		}(check.name, check.check)
	}
	wg.Wait()

	return components
}

func (h *Handler) checkDetector(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.deps.Detector == nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "detector not configured",
		}
	}

	if !h.deps.Detector.IsAvailable(ctx) {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "detector unreachable",
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

// Local OCR backends have nothing to probe and report healthy.
func (h *Handler) checkOCR(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.deps.OCR == nil {
		return ComponentStatus{
			Status:    StatusHealthy,
			LatencyMs: time.Since(start).Milliseconds(),
		}
	}

	if !h.deps.OCR.IsAvailable(ctx) {
		return ComponentStatus{
			Status:    StatusDegraded,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "ocr unreachable",
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func (h *Handler) checkRedis(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.deps.Redis == nil {
		return ComponentStatus{
			Status:    StatusHealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "alert limiting disabled",
		}
	}

	if err := h.deps.Redis.Ping(ctx).Err(); err != nil {
		return ComponentStatus{
			Status:    StatusDegraded,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "ping failed",
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func (h *Handler) checkFFmpeg(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.deps.FFmpeg == nil || !h.deps.FFmpeg() {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "ffmpeg not found in PATH",
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func (h *Handler) computeOverallStatus(components map[string]ComponentStatus) Status {
	criticalComponents := []string{"detector", "ffmpeg"}

	for _, name := range criticalComponents {
		if status, ok := components[name]; ok && status.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
	}

	hasDegraded := false
	for _, status := range components {
		if status.Status != StatusHealthy {
			hasDegraded = true
		}
	}

	if hasDegraded {
		return StatusDegraded
	}

	return StatusHealthy
}
